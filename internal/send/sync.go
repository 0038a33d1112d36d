// ABOUTME: Synchronous pipeline: one request, one complete reply inserted next to a placeholder
// ABOUTME: On failure the "..." placeholder stays in the conversation alongside the error

package send

import (
	"context"

	"github.com/2389/coven-chat/internal/api"
	"github.com/2389/coven-chat/internal/store"
)

// PendingContent is the text of a synchronous placeholder.
const PendingContent = "..."

// Sync sends messages whose reply arrives in one piece.
type Sync struct {
	pipeline
}

// NewSync creates the synchronous pipeline.
func NewSync(deps Deps) *Sync {
	return &Sync{pipeline: newPipeline(deps, "send.sync")}
}

// Send runs one synchronous exchange for msg in the active conversation.
func (p *Sync) Send(ctx context.Context, msg store.Message, mode Mode) Result {
	o := p.start(mode)
	defer p.clearLoading()

	conv, msg, ok := p.begin(o, msg, false)
	if !ok {
		return o.res
	}

	pendingID := newID()
	p.rec.Append(msg)
	p.rec.Append(store.Message{ID: pendingID, Role: store.RolePending, Content: PendingContent})
	o.res.PlaceholderID = pendingID

	o.advance(StateRequestSent)
	var reply store.Message
	if err := p.transport.Post(ctx, p.path(conv.ID, mode), api.InputRequest{Input: msg.Content}, &reply); err != nil {
		p.fail(o, err)
		return o.res
	}

	if reply.ID == "" || p.rec.Contains(reply.ID) {
		reply.ID = newID()
	}
	if reply.Role == "" {
		reply.Role = store.RoleAssistant
	}
	p.rec.Append(reply)
	p.rec.Remove(pendingID)

	p.store.ResetError()
	o.advance(StateDone)
	return o.res
}

func (p *Sync) path(conversationID string, mode Mode) string {
	switch mode {
	case SyncImage:
		return api.ImagePath(conversationID)
	case SyncAttachment:
		return api.GraphPath(conversationID)
	default:
		return api.MessagesPath(conversationID, false)
	}
}
