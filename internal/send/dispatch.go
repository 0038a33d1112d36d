// ABOUTME: Dispatcher routes a send to the streaming or synchronous pipeline by Mode
// ABOUTME: It holds no state and adds no behavior of its own

package send

import (
	"context"

	"github.com/2389/coven-chat/internal/store"
)

// Sender runs one send operation.
type Sender interface {
	Send(ctx context.Context, msg store.Message, mode Mode) Result
}

// Dispatcher picks the pipeline for a Mode.
type Dispatcher struct {
	stream Sender
	sync   Sender
}

// NewDispatcher wires explicit pipelines, mainly for tests.
func NewDispatcher(stream, sync Sender) *Dispatcher {
	return &Dispatcher{stream: stream, sync: sync}
}

// New builds both pipelines over deps and a Dispatcher for them.
func New(deps Deps) *Dispatcher {
	return NewDispatcher(NewStream(deps), NewSync(deps))
}

// Send invokes the streaming pipeline for streaming modes, the synchronous one otherwise.
func (d *Dispatcher) Send(ctx context.Context, msg store.Message, mode Mode) Result {
	if mode.Streaming() {
		return d.stream.Send(ctx, msg, mode)
	}
	return d.sync.Send(ctx, msg, mode)
}
