// ABOUTME: Streaming pipeline: placeholder, optional metadata seed, chunked reply patched in place
// ABOUTME: Failing responses are drained and classified into the error field or the fault log

package send

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/2389/coven-chat/internal/api"
	"github.com/2389/coven-chat/internal/faults"
	"github.com/2389/coven-chat/internal/prompt"
	"github.com/2389/coven-chat/internal/reconcile"
	"github.com/2389/coven-chat/internal/store"
)

// readBufferSize bounds a single chunk read from the reply stream.
const readBufferSize = 32 * 1024

// Stream sends messages whose reply arrives as a byte stream.
type Stream struct {
	pipeline
}

// NewStream creates the streaming pipeline.
func NewStream(deps Deps) *Stream {
	return &Stream{pipeline: newPipeline(deps, "send.stream")}
}

// Send runs one streamed exchange for msg in the active conversation.
func (p *Stream) Send(ctx context.Context, msg store.Message, mode Mode) Result {
	o := p.start(mode)
	defer p.clearLoading()

	conv, msg, ok := p.begin(o, msg, true)
	if !ok {
		return o.res
	}

	placeholder := store.Message{
		ID:          newID(),
		Role:        store.RolePending,
		ShowLoading: true,
	}
	p.rec.Append(msg)
	p.rec.Append(placeholder)
	o.res.PlaceholderID = placeholder.ID

	if mode == StreamOpenSearch {
		o.advance(StateMetadataFetch)
		if err := p.seedMetadata(ctx, conv.ID, msg, placeholder.ID); err != nil {
			p.fail(o, err)
			return o.res
		}
	}

	path, body := p.request(conv.ID, msg, mode)
	o.advance(StateRequestSent)
	resp, err := p.transport.Stream(ctx, path, body)
	if err != nil {
		p.fail(o, err)
		return o.res
	}
	defer resp.Body.Close()

	if mode == StreamPlain {
		p.store.ResetActivePrompt()
	}

	if resp.StatusCode >= 400 {
		p.classify(o, resp)
		return o.res
	}

	o.advance(StateStreaming)
	if err := p.readReply(resp.Body, placeholder.ID); err != nil {
		p.fail(o, err)
		return o.res
	}

	o.advance(StateDone)
	return o.res
}

func (p *Stream) seedMetadata(ctx context.Context, conversationID string, msg store.Message, placeholderID string) error {
	data, err := p.transport.PostRaw(ctx, api.MetadataPath(conversationID), api.SearchRequest{
		Input:              msg.Content,
		IsConfluenceSearch: msg.IsConfluenceSearch,
	})
	// A failing status still carries a body worth seeding; only transport
	// faults and non-JSON bodies stop the send.
	var statusErr *api.StatusError
	switch {
	case errors.As(err, &statusErr):
		p.logger.Warn("metadata request failed", "status", statusErr.Status)
		data = []byte(statusErr.Body)
	case err != nil:
		return fmt.Errorf("failed to fetch metadata: %w", err)
	}

	meta, err := DecodeMetadata(data)
	if err != nil {
		return err
	}
	p.rec.Seed(placeholderID, meta)
	return nil
}

func (p *Stream) request(conversationID string, msg store.Message, mode Mode) (string, any) {
	switch mode {
	case StreamOpenSearch:
		return api.OpenStreamPath(conversationID), api.SearchRequest{
			Input:              msg.Content,
			IsConfluenceSearch: msg.IsConfluenceSearch,
		}
	case StreamAttachment:
		return api.GraphPath(conversationID), api.InputRequest{Input: msg.Content}
	default:
		st := p.store.Read()
		docs := st.DocIDList
		if docs == nil {
			docs = []string{}
		}
		return api.MessagesPath(conversationID, true), api.MessageRequest{
			Input:    msg.Content,
			Template: prompt.Template(st.ActivePrompt),
			DocList:  docs,
		}
	}
}

// readReply patches each decoded chunk into the placeholder in arrival order.
func (p *Stream) readReply(body io.Reader, placeholderID string) error {
	var dec chunkDecoder
	buf := make([]byte, readBufferSize)

	for {
		n, err := body.Read(buf)
		if n > 0 {
			if text := dec.decode(buf[:n]); text != "" {
				p.rec.Patch(placeholderID, text, reconcile.Metadata{})
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read stream: %w", err)
		}
	}

	if rest := dec.flush(); rest != "" {
		p.rec.Patch(placeholderID, rest, reconcile.Metadata{})
	}
	return nil
}

// classify drains a failing response. Server-class bodies become faults and
// leave the error field alone; anything else becomes the error message.
func (p *Stream) classify(o *op, resp *http.Response) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		p.fail(o, fmt.Errorf("failed to read error response: %w", err))
		return
	}
	text := strings.ToValidUTF8(string(data), string(utf8.RuneError))
	statusErr := &api.StatusError{Status: resp.StatusCode, Body: text}

	if resp.StatusCode >= 500 {
		f := p.faults.Add(faults.Fault{
			Status:      resp.StatusCode,
			Message:     text,
			ContentType: faults.ContentTypeOf(text),
		})
		o.res.Fault = &f
		o.res.Err = statusErr
		o.advance(StateErrored)
		return
	}

	msg, _ := api.MessageFromBody(text)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	p.store.Merge(store.Partial{Error: &msg})
	o.res.Err = statusErr
	o.advance(StateErrored)
	o.logger.Warn("send rejected", "status", resp.StatusCode, "error", msg)
}
