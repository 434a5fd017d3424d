// Package relay implements the wallet-action relay: it accepts requests
// from in-process callers and from the external page boundary, surfaces
// them to approval surfaces, and delivers exactly one terminal outcome
// per request, correlated by an opaque request id.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/fee-less/feeless-wallet/core"
	"github.com/google/uuid"
)

type Config struct {
	// RespondTimeout bounds how long the external boundary waits for
	// an approval surface before answering with the timeout error.
	RespondTimeout time.Duration `valid:"required"`

	// SubscriberBuffer is the per-surface broadcast channel depth.
	SubscriberBuffer int
}

func New(session core.Session, logger *slog.Logger, cfg Config) core.ActionRelay {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	if cfg.SubscriberBuffer <= 0 {
		cfg.SubscriberBuffer = 4
	}

	return &relay{
		session: session,
		logger:  logger.With("service", "relay"),
		cfg:     cfg,
		subs:    map[uint64]chan *core.PanelRequest{},
	}
}

type relay struct {
	session core.Session
	logger  *slog.Logger
	cfg     Config

	mu      sync.Mutex
	pending *pendingRequest
	subs    map[uint64]chan *core.PanelRequest
	nextSub uint64
}

// pendingRequest pairs the visible record with its single-shot outcome
// channel. The buffered channel plus clearing r.pending under the lock
// is what makes "one outcome per request" hold.
type pendingRequest struct {
	core.PendingRequest
	outcome chan outcome
}

type outcome struct {
	result json.RawMessage
	err    error
}

var aliveResult = json.RawMessage(`{"status":"alive"}`)

func (r *relay) Request(ctx context.Context, action *core.Action) (json.RawMessage, error) {
	if action.Kind == core.ActionAlive {
		return aliveResult, nil
	}

	if err := validate(action.Kind, action.Payload); err != nil {
		return nil, err
	}

	pending, err := r.submit(action, false)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("in-process request presented", "request", pending.RequestID, "method", action.Kind)

	// No relay-level timeout here; the approval countdown bounds it.
	select {
	case out := <-pending.outcome:
		return out.result, out.err
	case <-ctx.Done():
		r.expire(pending.RequestID)
		return nil, ctx.Err()
	}
}

func (r *relay) Dispatch(ctx context.Context, req *core.BridgeRequest) *core.BridgeResponse {
	kind, ok := core.ParseKind(req.Method)
	if !ok {
		return errResponse(req, fmt.Sprintf("Unsupported method: %s", req.Method))
	}

	// alive bypasses approval entirely; it is the liveness probe
	// between the embedding page and the wallet surface.
	if kind == core.ActionAlive {
		return resultResponse(req, aliveResult)
	}

	if err := validate(kind, req.Payload); err != nil {
		return errResponse(req, err.Error())
	}

	// Without a wallet the request is never surfaced to any approval
	// panel, so an unauthenticated page cannot tell a locked wallet
	// from an unreachable one. The fallback still answers.
	if _, ok := r.session.Current(); !ok {
		r.logger.Debug("request dropped, no wallet", "method", req.Method, "id", req.ID)

		select {
		case <-ctx.Done():
		case <-time.After(r.cfg.RespondTimeout):
		}

		return errResponse(req, core.ErrRespondTimeout.Error())
	}

	pending, err := r.submit(&core.Action{Kind: kind, Payload: req.Payload}, true)
	if err != nil {
		return errResponse(req, err.Error())
	}

	r.logger.Debug("external request presented", "request", pending.RequestID, "method", req.Method, "id", req.ID)

	select {
	case out := <-pending.outcome:
		if out.err != nil {
			return errResponse(req, out.err.Error())
		}

		return resultResponse(req, out.result)
	case <-time.After(r.cfg.RespondTimeout):
		r.expire(pending.RequestID)
		return errResponse(req, core.ErrRespondTimeout.Error())
	case <-ctx.Done():
		r.expire(pending.RequestID)
		return errResponse(req, core.ErrRespondTimeout.Error())
	}
}

func (r *relay) Subscribe() (<-chan *core.PanelRequest, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSub
	r.nextSub++

	ch := make(chan *core.PanelRequest, r.cfg.SubscriberBuffer)
	r.subs[id] = ch

	// Surfaces attaching mid-request still get to present it.
	if r.pending != nil {
		ch <- panelRequest(r.pending)
	}

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		if _, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(ch)
		}
	}

	return ch, cancel
}

func (r *relay) Respond(resp *core.PanelResponse) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := r.pending
	if pending == nil || pending.RequestID != resp.RequestID {
		return false
	}

	r.pending = nil

	if resp.Error != "" {
		pending.outcome <- outcome{err: errors.New(resp.Error)}
	} else {
		pending.outcome <- outcome{result: resp.Result}
	}

	return true
}

// Claim takes the pending slot for the request matching requestID and
// hands back a single-use settle function. Once claimed, Respond and
// further Claim calls for the id report false, so whoever claims first
// is the only party that can produce the outcome.
func (r *relay) Claim(requestID string) (func(resp *core.PanelResponse), bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := r.pending
	if pending == nil || pending.RequestID != requestID {
		return nil, false
	}

	r.pending = nil

	var once sync.Once
	settle := func(resp *core.PanelResponse) {
		once.Do(func() {
			if resp.Error != "" {
				pending.outcome <- outcome{err: errors.New(resp.Error)}
			} else {
				pending.outcome <- outcome{result: resp.Result}
			}
		})
	}

	return settle, true
}

func (r *relay) Pending() *core.PanelRequest {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil {
		return nil
	}

	return panelRequest(r.pending)
}

// submit registers the single pending slot. A request arriving while
// one is pending is rejected, never queued and never overwritten.
func (r *relay) submit(action *core.Action, external bool) (*pendingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending != nil {
		return nil, core.ErrRelayBusy
	}

	pending := &pendingRequest{
		PendingRequest: core.PendingRequest{
			RequestID: uuid.NewString(),
			Action:    action,
			External:  external,
			CreatedAt: time.Now(),
		},
		outcome: make(chan outcome, 1),
	}

	r.pending = pending

	req := panelRequest(pending)
	for id, ch := range r.subs {
		select {
		case ch <- req:
		default:
			r.logger.Warn("surface broadcast dropped", "subscriber", id, "request", pending.RequestID)
		}
	}

	return pending, nil
}

// expire clears the pending slot without producing an outcome; the
// caller already answered. Late responses become no-ops.
func (r *relay) expire(requestID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending != nil && r.pending.RequestID == requestID {
		r.pending = nil
	}
}

func validate(kind core.ActionKind, payload json.RawMessage) error {
	if kind != core.ActionSignIn {
		return nil
	}

	var p struct {
		Nonce json.Number `json:"nonce"`
	}

	if err := json.Unmarshal(payload, &p); err != nil {
		return core.ErrNonceNotInteger
	}

	if _, err := strconv.ParseInt(p.Nonce.String(), 10, 64); err != nil {
		return core.ErrNonceNotInteger
	}

	return nil
}

func panelRequest(pending *pendingRequest) *core.PanelRequest {
	return &core.PanelRequest{
		Type:      core.MessagePanelRequest,
		Method:    pending.Action.Kind.String(),
		Payload:   pending.Action.Payload,
		RequestID: pending.RequestID,
	}
}

func errResponse(req *core.BridgeRequest, msg string) *core.BridgeResponse {
	return &core.BridgeResponse{
		Type:   core.MessagePageResponse,
		Method: req.Method,
		ID:     req.ID,
		Error:  msg,
	}
}

func resultResponse(req *core.BridgeRequest, result json.RawMessage) *core.BridgeResponse {
	return &core.BridgeResponse{
		Type:   core.MessagePageResponse,
		Method: req.Method,
		ID:     req.ID,
		Result: result,
	}
}
