// Package bridge exposes the extension message boundary over HTTP: the
// content-script side posts page requests, approval panels long-poll
// for broadcasts and post responses or decisions.
package bridge

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/fee-less/feeless-wallet/core"
	"github.com/go-chi/chi/v5"
	"github.com/oxtoacart/bpool"
)

type Config struct {
	// PollTimeout bounds the panel long-poll window before an empty
	// answer is returned.
	PollTimeout time.Duration `valid:"required"`
}

func New(
	actions core.ActionRelay,
	surface core.ApprovalSurface,
	logger *slog.Logger,
	cfg Config,
) *Server {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Server{
		actions: actions,
		surface: surface,
		logger:  logger.With("server", "bridge"),
		cfg:     cfg,
		buffers: bpool.NewBufferPool(16),
	}
}

type Server struct {
	actions core.ActionRelay
	surface core.ApprovalSurface
	logger  *slog.Logger
	cfg     Config
	buffers *bpool.BufferPool
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Post("/requests", s.handleRequest)

	r.Route("/panel", func(r chi.Router) {
		r.Get("/requests", s.handlePoll)
		r.Post("/responses", s.handleResponse)
		r.Post("/decisions", s.handleDecision)
		r.Post("/ready", s.handleReady)
	})

	return r
}

// handleRequest is the content-script boundary: one page request in,
// exactly one FEELLESS_WALLET_RESPONSE envelope out.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	var req core.BridgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}

	resp := s.actions.Dispatch(r.Context(), &req)
	s.writeJSON(w, http.StatusOK, resp)
}

// handlePoll hands the next feeless-wallet-panel-request broadcast to a
// waiting panel, or answers 204 when the window closes empty.
func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	sub, cancel := s.actions.Subscribe()
	defer cancel()

	select {
	case req := <-sub:
		s.writeJSON(w, http.StatusOK, req)
	case <-time.After(s.cfg.PollTimeout):
		w.WriteHeader(http.StatusNoContent)
	case <-r.Context().Done():
	}
}

// handleResponse accepts a raw panel response from surfaces that
// execute wallet calls themselves.
func (s *Server) handleResponse(w http.ResponseWriter, r *http.Request) {
	var resp core.PanelResponse
	if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
		http.Error(w, "malformed response", http.StatusBadRequest)
		return
	}

	accepted := s.actions.Respond(&resp)
	if !accepted {
		s.logger.Debug("panel response dropped", "request", resp.RequestID)
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"accepted": accepted})
}

type decision struct {
	RequestID string `json:"requestId"`
	Approve   bool   `json:"approve"`
}

// handleDecision drives the in-process approval surface, which executes
// the wallet call on approve. The decision must target the request
// currently presented.
func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	var d decision
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, "malformed decision", http.StatusBadRequest)
		return
	}

	if current, _ := s.surface.Current(); current == nil || current.RequestID != d.RequestID {
		http.Error(w, core.ErrNoPendingRequest.Error(), http.StatusConflict)
		return
	}

	var err error
	if d.Approve {
		err = s.surface.Approve(r.Context())
	} else {
		err = s.surface.Reject(r.Context())
	}

	if errors.Is(err, core.ErrNoPendingRequest) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	out := map[string]any{"settled": true}
	if err != nil {
		// the caller already received the structured error outcome
		out["error"] = err.Error()
	}

	s.writeJSON(w, http.StatusOK, out)
}

// handleReady answers the panel-ready startup signal with the pending
// request, if one is waiting, so reopened panels can resume.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	var signal struct {
		Type string `json:"type"`
	}

	if err := json.NewDecoder(r.Body).Decode(&signal); err != nil || signal.Type != core.MessagePanelReady {
		http.Error(w, "malformed signal", http.StatusBadRequest)
		return
	}

	pending := s.actions.Pending()
	if pending == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.writeJSON(w, http.StatusOK, pending)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	buf := s.buffers.Get()
	defer s.buffers.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
