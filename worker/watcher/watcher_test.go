package watcher

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fee-less/feeless-wallet/core"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

type stubClient struct{}

func (stubClient) PublicKey() string { return "deadbeef" }

func (stubClient) SignMessage(message string) (string, error) { return "", nil }

func (stubClient) SignIn(nonce int64) (*core.SignInResult, error) { return nil, nil }

func (stubClient) Send(ctx context.Context, payload core.SendPayload) (*core.Receipt, error) {
	return nil, nil
}

func (stubClient) MintToken(ctx context.Context, payload core.MintPayload) (*core.Receipt, error) {
	return nil, nil
}

func (stubClient) Balance(ctx context.Context, token string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (stubClient) TokenInfo(ctx context.Context, token string) (*core.Token, error) {
	return nil, nil
}

type stubSession struct {
	mu   sync.Mutex
	cred *core.Credential
}

func (s *stubSession) Current() (core.WalletClient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cred == nil {
		return nil, false
	}

	return stubClient{}, true
}

func (s *stubSession) Profile() (*core.Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cred, s.cred != nil
}

func (s *stubSession) Login(ctx context.Context, cred *core.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cred = cred
	return nil
}

func (s *stubSession) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cred = nil
	return nil
}

type memBalances struct {
	saved chan *core.Balance
}

func (m *memBalances) Save(ctx context.Context, balances []*core.Balance) error {
	for _, b := range balances {
		m.saved <- b
	}

	return nil
}

func (m *memBalances) Find(ctx context.Context, token string) (*core.Balance, error) {
	return nil, nil
}

func (m *memBalances) List(ctx context.Context) ([]*core.Balance, error) {
	return nil, nil
}

func TestStreamClosesOnLogout(t *testing.T) {
	hangup := make(chan struct{})
	var upgrader websocket.Upgrader

	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var sub map[string]string
		if err := conn.ReadJSON(&sub); err != nil {
			t.Errorf("read subscribe: %v", err)
			return
		}
		if sub["address"] != "deadbeef" {
			t.Errorf("address = %q, want deadbeef", sub["address"])
		}

		_ = conn.WriteJSON(map[string]any{"type": "balance", "token": "GOLD", "amount": "5"})

		// hold the stream open until the client hangs up
		if _, _, err := conn.ReadMessage(); err != nil {
			close(hangup)
		}
	}))
	defer svr.Close()

	session := &stubSession{cred: &core.Credential{
		PrivateKey: "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60",
		HTTPNode:   svr.URL,
		WSNode:     "ws" + strings.TrimPrefix(svr.URL, "http"),
	}}

	balances := &memBalances{saved: make(chan *core.Balance, 8)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go New(session, balances, logger).Run(ctx)

	select {
	case b := <-balances.saved:
		if b.Token != "GOLD" || !b.Amount.Equal(decimal.NewFromInt(5)) {
			t.Errorf("balance = %s %s, want GOLD 5", b.Token, b.Amount)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("balance event never stored")
	}

	if err := session.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	select {
	case <-hangup:
	case <-time.After(3 * time.Second):
		t.Fatal("stream still open after logout")
	}
}
