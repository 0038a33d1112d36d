// ABOUTME: Send modes: which pipeline runs and which endpoint it calls
// ABOUTME: ModeFor maps the loose client option flags onto exactly one Mode

package send

import (
	"fmt"

	"github.com/2389/coven-chat/internal/store"
)

// Mode selects a pipeline and an endpoint.
type Mode int

const (
	StreamOpenSearch Mode = iota + 1
	StreamAttachment
	StreamPlain
	SyncImage
	SyncAttachment
	SyncPlain
)

func (m Mode) String() string {
	switch m {
	case StreamOpenSearch:
		return "stream/open-search"
	case StreamAttachment:
		return "stream/attachment"
	case StreamPlain:
		return "stream/plain"
	case SyncImage:
		return "sync/image"
	case SyncAttachment:
		return "sync/attachment"
	case SyncPlain:
		return "sync/plain"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Streaming reports whether m is handled by the streaming pipeline.
func (m Mode) Streaming() bool {
	return m == StreamOpenSearch || m == StreamAttachment || m == StreamPlain
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	return m >= StreamOpenSearch && m <= SyncPlain
}

// Options are the send flags a UI collects next to the message text.
type Options struct {
	UseStreaming bool
	Attachment   bool // answer against the attached document graph
	Image        bool // ask for a generated image; synchronous only
}

// ModeFor resolves options into a Mode. Streaming open search is taken from
// msg.IsOpenChat; Image is ignored when streaming.
func ModeFor(msg store.Message, opts Options) Mode {
	if opts.UseStreaming {
		switch {
		case msg.IsOpenChat:
			return StreamOpenSearch
		case opts.Attachment:
			return StreamAttachment
		default:
			return StreamPlain
		}
	}

	switch {
	case opts.Image:
		return SyncImage
	case opts.Attachment:
		return SyncAttachment
	default:
		return SyncPlain
	}
}
