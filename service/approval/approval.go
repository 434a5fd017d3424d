// Package approval implements the user-approval step as an explicit
// finite-state machine: idle -> presenting -> approved | rejected |
// expired -> idle, with a user-visible countdown that auto-rejects.
package approval

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/fee-less/feeless-wallet/core"
)

type State uint8

const (
	StateIdle State = iota
	StatePresenting
	StateApproved
	StateRejected
	StateExpired
)

type event uint8

const (
	eventPresent event = iota
	eventApprove
	eventReject
	eventExpire
	eventFinish
)

type Config struct {
	// CountdownTicks is the number of countdown steps before
	// auto-reject. The page-facing default is 10.
	CountdownTicks int `valid:"required"`

	// TickInterval is the duration of one countdown step. The
	// page-facing default is one second.
	TickInterval time.Duration `valid:"required"`
}

func New(
	actions core.ActionRelay,
	session core.Session,
	history core.HistoryStore,
	logger *slog.Logger,
	cfg Config,
) *Approver {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Approver{
		actions: actions,
		session: session,
		history: history,
		logger:  logger.With("service", "approval"),
		cfg:     cfg,
	}
}

type Approver struct {
	actions core.ActionRelay
	session core.Session
	history core.HistoryStore
	logger  *slog.Logger
	cfg     Config

	mu        sync.Mutex
	state     State
	current   *core.PanelRequest
	remaining int
	done      chan struct{}
	backlog   *core.PanelRequest
}

// Run subscribes to the relay and presents broadcast requests until ctx
// is cancelled. It is the in-process approval surface.
func (a *Approver) Run(ctx context.Context) error {
	a.logger.Info("approval surface start")

	sub, cancel := a.actions.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok := <-sub:
			if !ok {
				return nil
			}

			a.present(req)
		}
	}
}

// transition is the single state-transition function. Every terminal
// outcome passes through it exactly once per presentation, which is
// what makes the one-outcome-per-request invariant checkable.
func (a *Approver) transition(ev event) bool {
	switch {
	case a.state == StateIdle && ev == eventPresent:
		a.state = StatePresenting
	case a.state == StatePresenting && ev == eventApprove:
		a.state = StateApproved
	case a.state == StatePresenting && ev == eventReject:
		a.state = StateRejected
	case a.state == StatePresenting && ev == eventExpire:
		a.state = StateExpired
	case a.state >= StateApproved && ev == eventFinish:
		a.state = StateIdle
	default:
		return false
	}

	return true
}

// Current returns the request being presented and the remaining
// countdown ticks, or nil when idle.
func (a *Approver) Current() (*core.PanelRequest, int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StatePresenting {
		return nil, 0
	}

	return a.current, a.remaining
}

// Approve executes the presented action against the wallet client and
// delivers the result, or a structured error outcome when execution
// fails, back through the relay. The request is claimed from the relay
// before anything executes: if another surface already settled it, the
// stale presentation is dropped and nothing touches the wallet.
func (a *Approver) Approve(ctx context.Context) error {
	a.mu.Lock()
	if a.state != StatePresenting || a.current == nil {
		a.mu.Unlock()
		return core.ErrNoPendingRequest
	}

	req := a.current

	settle, ok := a.actions.Claim(req.RequestID)
	if !ok {
		a.dropStale(req.RequestID)
		return core.ErrNoPendingRequest
	}

	a.transition(eventApprove)
	close(a.done)
	a.mu.Unlock()

	result, err := a.execute(ctx, req)

	resp := &core.PanelResponse{
		Type:      core.MessagePanelResponse,
		RequestID: req.RequestID,
	}

	if err != nil {
		resp.Error = err.Error()
		a.logger.Warn("action failed", "request", req.RequestID, "err", err)
	} else {
		resp.Result = result
	}

	a.finish(req.RequestID)
	settle(resp)

	return err
}

// Reject delivers the user-denied outcome without touching the wallet
// client.
func (a *Approver) Reject(ctx context.Context) error {
	a.mu.Lock()
	if a.state != StatePresenting || a.current == nil {
		a.mu.Unlock()
		return core.ErrNoPendingRequest
	}

	req := a.current

	settle, ok := a.actions.Claim(req.RequestID)
	if !ok {
		a.dropStale(req.RequestID)
		return core.ErrNoPendingRequest
	}

	a.transition(eventReject)
	close(a.done)
	a.mu.Unlock()

	a.finish(req.RequestID)

	settle(&core.PanelResponse{
		Type:      core.MessagePanelResponse,
		RequestID: req.RequestID,
		Error:     core.ErrUserDenied.Error(),
	})

	return nil
}

// dropStale abandons a presentation whose request another surface
// already settled. The caller holds the lock; dropStale releases it.
func (a *Approver) dropStale(requestID string) {
	a.transition(eventExpire)
	close(a.done)
	a.mu.Unlock()

	a.finish(requestID)
	a.logger.Info("request settled elsewhere", "request", requestID)
}

func (a *Approver) present(req *core.PanelRequest) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.presentLocked(req)
}

// presentLocked starts a presentation. The caller holds the lock.
func (a *Approver) presentLocked(req *core.PanelRequest) {
	// re-delivery of the request we are already showing
	if a.current != nil && a.current.RequestID == req.RequestID {
		return
	}

	if !a.transition(eventPresent) {
		// busy with another presentation; finish re-presents the
		// held request once the current one settles
		a.backlog = req
		a.logger.Info("holding request until current settles", "request", req.RequestID)
		return
	}

	a.current = req
	a.remaining = a.cfg.CountdownTicks
	a.done = make(chan struct{})

	a.logger.Info("presenting", "request", req.RequestID, "action", Describe(req))

	go a.countdown(req.RequestID, a.done)
}

// countdown auto-rejects when the user makes no decision. Approve and
// Reject cancel it by closing done; a late tick after settlement is a
// no-op because the state check happens under the lock.
func (a *Approver) countdown(requestID string, done <-chan struct{}) {
	ticker := time.NewTicker(a.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		a.mu.Lock()
		if a.state != StatePresenting || a.current == nil || a.current.RequestID != requestID {
			a.mu.Unlock()
			return
		}

		// the relay no longer owns this request: another surface
		// settled it, or the caller gave up. Drop the stale
		// presentation without emitting an outcome.
		if pending := a.actions.Pending(); pending == nil || pending.RequestID != requestID {
			a.transition(eventExpire)
			a.mu.Unlock()

			a.finish(requestID)
			a.logger.Info("request settled elsewhere", "request", requestID)
			return
		}

		if a.remaining--; a.remaining > 0 {
			a.mu.Unlock()
			continue
		}

		a.transition(eventExpire)
		a.mu.Unlock()

		a.finish(requestID)

		if settle, ok := a.actions.Claim(requestID); ok {
			settle(&core.PanelResponse{
				Type:      core.MessagePanelResponse,
				RequestID: requestID,
				Error:     core.ErrUserDenied.Error(),
			})
		} else {
			a.logger.Debug("expiry outcome dropped", "request", requestID)
		}

		a.logger.Info("request expired", "request", requestID)
		return
	}
}

func (a *Approver) finish(requestID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current == nil || a.current.RequestID != requestID {
		return
	}

	a.transition(eventFinish)
	a.current = nil
	a.remaining = 0

	if next := a.backlog; next != nil {
		a.backlog = nil

		// only requests the relay still owns are worth presenting
		if pending := a.actions.Pending(); pending != nil && pending.RequestID == next.RequestID {
			a.presentLocked(next)
		}
	}
}
