// Package session owns the process-wide optional wallet: at most one
// logged-in credential profile and the client built from it.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fee-less/feeless-wallet/core"
	"github.com/fee-less/feeless-wallet/service/wallet"
)

func New(creds core.CredentialStore, logger *slog.Logger) *Session {
	return &Session{
		creds:  creds,
		logger: logger.With("service", "session"),
	}
}

type Session struct {
	creds  core.CredentialStore
	logger *slog.Logger

	mu     sync.RWMutex
	cred   *core.Credential
	client core.WalletClient
}

// Restore loads the persisted profile, if any. A missing or unusable
// profile leaves the session logged out and is never fatal.
func (s *Session) Restore(ctx context.Context) error {
	cred, err := s.creds.Load(ctx)
	if err != nil {
		return err
	}

	if cred == nil {
		s.logger.Info("no stored credential, starting logged out")
		return nil
	}

	if err := s.Login(ctx, cred); err != nil {
		s.logger.Warn("stored credential unusable, starting logged out", "err", err)
	}

	return nil
}

func (s *Session) Current() (core.WalletClient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.client, s.client != nil
}

func (s *Session) Profile() (*core.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cred, s.cred != nil
}

func (s *Session) Login(ctx context.Context, cred *core.Credential) error {
	client, err := wallet.New(cred)
	if err != nil {
		return err
	}

	if err := s.creds.Save(ctx, cred); err != nil {
		return err
	}

	s.mu.Lock()
	s.cred = cred
	s.client = client
	s.mu.Unlock()

	s.logger.Info("logged in", "public_key", client.PublicKey())
	return nil
}

func (s *Session) Logout(ctx context.Context) error {
	if err := s.creds.Clear(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.cred = nil
	s.client = nil
	s.mu.Unlock()

	s.logger.Info("logged out")
	return nil
}
