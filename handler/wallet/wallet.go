// Package wallet exposes the wallet screens as HTTP endpoints: login
// and key generation, balances, plain transfers and token mints driven
// directly against the wallet client.
package wallet

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fee-less/feeless-wallet/core"
	walletz "github.com/fee-less/feeless-wallet/service/wallet"
	"github.com/fee-less/feeless-wallet/store"
	"github.com/go-chi/chi/v5"
)

func New(
	session core.Session,
	balances core.BalanceStore,
	history core.HistoryStore,
	logger *slog.Logger,
) *Server {
	return &Server{
		session:  session,
		balances: balances,
		history:  history,
		logger:   logger.With("server", "wallet"),
	}
}

type Server struct {
	session  core.Session
	balances core.BalanceStore
	history  core.HistoryStore
	logger   *slog.Logger
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleStatus)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Get("/balances", s.handleBalances)
	r.Get("/history", s.handleHistory)
	r.Get("/history/{trace}", s.handleReceipt)
	r.Post("/send", s.handleSend)
	r.Post("/mint", s.handleMint)
	r.Get("/tokens/{symbol}", s.handleTokenInfo)

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{"loggedIn": false}

	if client, ok := s.session.Current(); ok {
		out["loggedIn"] = true
		out["publicKey"] = client.PublicKey()

		if cred, ok := s.session.Profile(); ok {
			out["wsNode"] = cred.WSNode
			out["httpNode"] = cred.HTTPNode
		}
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var cred core.Credential
	if err := json.NewDecoder(r.Body).Decode(&cred); err != nil {
		http.Error(w, "malformed credential", http.StatusBadRequest)
		return
	}

	// no key supplied: fresh wallet, generate one
	if cred.PrivateKey == "" {
		key, err := walletz.GenerateKey()
		if err != nil {
			http.Error(w, "key generation failed", http.StatusInternalServerError)
			return
		}

		cred.PrivateKey = key
	}

	if err := s.session.Login(r.Context(), &cred); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	client, _ := s.session.Current()
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": client.PublicKey()})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Logout(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.balances.List(r.Context())
	if err != nil {
		s.logger.Error("balances.List", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, balances)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}

		limit = n
	}

	receipts, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("history.List", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, receipts)
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.history.FindTrace(r.Context(), chi.URLParam(r, "trace"))
	if store.IsErrNotFound(err) {
		http.Error(w, "unknown trace", http.StatusNotFound)
		return
	} else if err != nil {
		s.logger.Error("history.FindTrace", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	client, ok := s.session.Current()
	if !ok {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}

	var payload core.SendPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	receipt, err := client.Send(r.Context(), payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.history.Create(r.Context(), receipt); err != nil {
		s.logger.Error("history.Create", "trace", receipt.TraceID, "err", err)
	}

	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	client, ok := s.session.Current()
	if !ok {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}

	var payload core.MintPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	receipt, err := client.MintToken(r.Context(), payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.history.Create(r.Context(), receipt); err != nil {
		s.logger.Error("history.Create", "trace", receipt.TraceID, "err", err)
	}

	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleTokenInfo(w http.ResponseWriter, r *http.Request) {
	client, ok := s.session.Current()
	if !ok {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}

	token, err := client.TokenInfo(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, token)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
