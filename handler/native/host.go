package native

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/fee-less/feeless-wallet/core"
)

// envelope is the union of message shapes crossing the stdio boundary.
type envelope struct {
	Type      string          `json:"type"`
	Method    string          `json:"method,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	ID        string          `json:"id,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func NewHost(actions core.ActionRelay, logger *slog.Logger, in io.Reader, out io.Writer) *Host {
	return &Host{
		actions: actions,
		logger:  logger.With("server", "native"),
		in:      in,
		out:     out,
	}
}

type Host struct {
	actions core.ActionRelay
	logger  *slog.Logger
	in      io.Reader

	mu  sync.Mutex
	out io.Writer
}

// Run pumps messages between the extension and the relay until the
// input stream closes or ctx is cancelled.
func (h *Host) Run(ctx context.Context) error {
	h.logger.Info("native host start")

	done := make(chan struct{})
	defer close(done)

	msgs := make(chan envelope)
	errc := make(chan error, 1)

	go h.readLoop(msgs, errc, done)

	// a read blocked on stdio holds no reference to ctx; closing the
	// input is what releases it
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			if ctx.Err() == nil {
				return
			}
		}

		if c, ok := h.in.(io.Closer); ok {
			_ = c.Close()
		}
	}()

	sub, cancel := h.actions.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			if errors.Is(err, io.EOF) {
				h.logger.Info("input closed")
				return nil
			}

			if ctx.Err() != nil {
				return ctx.Err()
			}

			return err
		case req := <-sub:
			if err := h.write(req); err != nil {
				return err
			}
		case env := <-msgs:
			h.handle(ctx, env)
		}
	}
}

func (h *Host) readLoop(msgs chan<- envelope, errc chan<- error, done <-chan struct{}) {
	for {
		raw, err := ReadMessage(h.in)
		if err != nil {
			select {
			case errc <- err:
			case <-done:
			}

			return
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			h.logger.Warn("malformed message", "err", err)
			continue
		}

		select {
		case msgs <- env:
		case <-done:
			return
		}
	}
}

func (h *Host) handle(ctx context.Context, env envelope) {
	switch env.Type {
	case core.MessagePageRequest:
		req := &core.BridgeRequest{
			Method:  env.Method,
			Payload: env.Payload,
			ID:      env.ID,
		}

		// dispatch suspends until settled; answer from a goroutine
		// so panel responses can keep flowing in
		go func() {
			resp := h.actions.Dispatch(ctx, req)
			if err := h.write(resp); err != nil {
				h.logger.Error("write response", "id", req.ID, "err", err)
			}
		}()
	case core.MessagePanelResponse:
		accepted := h.actions.Respond(&core.PanelResponse{
			Type:      env.Type,
			RequestID: env.RequestID,
			Result:    env.Result,
			Error:     env.Error,
		})

		if !accepted {
			h.logger.Debug("panel response dropped", "request", env.RequestID)
		}
	case core.MessagePanelReady:
		if pending := h.actions.Pending(); pending != nil {
			if err := h.write(pending); err != nil {
				h.logger.Error("resend pending", "err", err)
			}
		}
	default:
		h.logger.Warn("unknown message type", "type", env.Type)
	}
}

func (h *Host) write(msg any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return WriteMessage(h.out, msg)
}
