// ABOUTME: Pieces shared by both send pipelines: dependencies, results and state tracking
// ABOUTME: A pipeline's outcome is always a state update plus a Result, never an error

package send

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/2389/coven-chat/internal/api"
	"github.com/2389/coven-chat/internal/faults"
	"github.com/2389/coven-chat/internal/reconcile"
	"github.com/2389/coven-chat/internal/store"
)

// ErrUnsupportedMode is reported when a pipeline is handed a mode it does not serve.
var ErrUnsupportedMode = errors.New("unsupported send mode")

// Transport is the part of api.Client the pipelines use.
type Transport interface {
	Post(ctx context.Context, path string, body, result any) error
	PostRaw(ctx context.Context, path string, body any) ([]byte, error)
	Stream(ctx context.Context, path string, body any) (*http.Response, error)
}

// State is a step of one send operation.
type State int

const (
	StateIdle State = iota
	StateMetadataFetch
	StateRequestSent
	StateStreaming
	StateDone
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMetadataFetch:
		return "metadata_fetch"
	case StateRequestSent:
		return "request_sent"
	case StateStreaming:
		return "streaming"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result describes how a send ended.
type Result struct {
	Mode          Mode
	State         State  // StateDone or StateErrored
	PlaceholderID string // empty when nothing was appended
	Err           error
	Fault         *faults.Fault // set when the failure went to the fault log
}

// Deps are the collaborators a pipeline needs.
type Deps struct {
	Store     *store.Store
	Transport Transport
	Faults    *faults.Log
	Logger    *slog.Logger
}

type pipeline struct {
	store     *store.Store
	rec       *reconcile.Reconciler
	transport Transport
	faults    *faults.Log
	logger    *slog.Logger
}

func newPipeline(deps Deps, component string) pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fl := deps.Faults
	if fl == nil {
		fl = faults.New(0, 100, logger)
	}
	return pipeline{
		store:     deps.Store,
		rec:       reconcile.New(deps.Store, logger),
		transport: deps.Transport,
		faults:    fl,
		logger:    logger.With("component", component),
	}
}

// op tracks one send operation.
type op struct {
	res    Result
	logger *slog.Logger
}

func (p *pipeline) start(mode Mode) *op {
	o := &op{
		res:    Result{Mode: mode, State: StateIdle},
		logger: p.logger.With("mode", mode.String()),
	}
	o.logger.Debug("send started")
	return o
}

func (o *op) advance(s State) {
	o.res.State = s
	o.logger.Debug("send state", "state", s.String(), "placeholder_id", o.res.PlaceholderID)
}

// fail records err as the conversational error.
func (p *pipeline) fail(o *op, err error) {
	msg := api.ErrorMessage(err)
	p.store.Merge(store.Partial{Error: &msg})
	o.res.Err = err
	o.advance(StateErrored)
	o.logger.Warn("send failed", "error", err)
}

// begin sets loading, resolves the active conversation and prepares msg.
// streaming names which family of modes the calling pipeline serves.
func (p *pipeline) begin(o *op, msg store.Message, streaming bool) (store.Conversation, store.Message, bool) {
	p.store.Merge(store.Partial{Loading: store.Ptr(true)})

	if mode := o.res.Mode; !mode.Valid() || mode.Streaming() != streaming {
		p.fail(o, fmt.Errorf("%w: %s", ErrUnsupportedMode, o.res.Mode))
		return store.Conversation{}, msg, false
	}

	conv, ok := p.store.Read().ActiveConversation()
	if !ok {
		p.fail(o, api.ErrNoConversation)
		return store.Conversation{}, msg, false
	}

	if msg.ID == "" {
		msg.ID = newID()
	}
	if msg.Role == "" {
		msg.Role = store.RoleUser
	}
	return conv, msg, true
}

func (p *pipeline) clearLoading() {
	p.store.Merge(store.Partial{Loading: store.Ptr(false)})
}

func newID() string {
	return uuid.New().String()
}
