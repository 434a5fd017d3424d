package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fee-less/feeless-wallet/core"
	"github.com/fee-less/feeless-wallet/service/relay"
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

type stubSession struct{}

func (stubSession) Current() (core.WalletClient, bool) { return stubClient{}, true }

func (stubSession) Profile() (*core.Credential, bool) { return nil, false }

func (stubSession) Login(ctx context.Context, cred *core.Credential) error { return nil }

func (stubSession) Logout(ctx context.Context) error { return nil }

// stubSurface approves or rejects whatever the relay presents, the way
// the in-process approver would after a user decision.
type stubSurface struct {
	actions core.ActionRelay
}

func (s *stubSurface) Current() (*core.PanelRequest, int) {
	return s.actions.Pending(), 1
}

func (s *stubSurface) Approve(ctx context.Context) error {
	pending := s.actions.Pending()
	if pending == nil {
		return core.ErrNoPendingRequest
	}

	settle, ok := s.actions.Claim(pending.RequestID)
	if !ok {
		return core.ErrNoPendingRequest
	}

	settle(&core.PanelResponse{
		Type:      core.MessagePanelResponse,
		RequestID: pending.RequestID,
		Result:    json.RawMessage(`"deadbeef"`),
	})

	return nil
}

func (s *stubSurface) Reject(ctx context.Context) error {
	pending := s.actions.Pending()
	if pending == nil {
		return core.ErrNoPendingRequest
	}

	settle, ok := s.actions.Claim(pending.RequestID)
	if !ok {
		return core.ErrNoPendingRequest
	}

	settle(&core.PanelResponse{
		Type:      core.MessagePanelResponse,
		RequestID: pending.RequestID,
		Error:     core.ErrUserDenied.Error(),
	})

	return nil
}

func newTestServer(t *testing.T, timeout time.Duration) (*httptest.Server, core.ActionRelay) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	actions := relay.New(stubSession{}, logger, relay.Config{RespondTimeout: timeout})

	s := New(actions, &stubSurface{actions: actions}, logger, Config{PollTimeout: timeout})
	svr := httptest.NewServer(s.Handler())
	t.Cleanup(svr.Close)

	return svr, actions
}

func postJSON(t *testing.T, url string, in, out any) *http.Response {
	t.Helper()

	body, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}

	t.Cleanup(func() { resp.Body.Close() })

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}

	return resp
}

func TestRequestAlive(t *testing.T) {
	svr, _ := newTestServer(t, time.Second)

	var resp core.BridgeResponse
	postJSON(t, svr.URL+"/requests", core.BridgeRequest{Method: "alive", ID: "ping-1"}, &resp)

	if resp.Type != core.MessagePageResponse || resp.ID != "ping-1" {
		t.Errorf("response = %+v", resp)
	}
	if string(resp.Result) != `{"status":"alive"}` {
		t.Errorf("Result = %s", resp.Result)
	}
}

func TestPanelPollAndResponse(t *testing.T) {
	svr, _ := newTestServer(t, 5*time.Second)

	type result struct {
		resp core.BridgeResponse
		err  error
	}

	done := make(chan result, 1)
	go func() {
		var r result
		body, _ := json.Marshal(core.BridgeRequest{Method: "getPublicKey", ID: "page-1"})
		resp, err := http.Post(svr.URL+"/requests", "application/json", bytes.NewReader(body))
		if err != nil {
			r.err = err
			done <- r
			return
		}

		defer resp.Body.Close()
		r.err = json.NewDecoder(resp.Body).Decode(&r.resp)
		done <- r
	}()

	// the long poll picks up the broadcast
	pollResp, err := http.Get(svr.URL + "/panel/requests")
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	defer pollResp.Body.Close()

	var panelReq core.PanelRequest
	if err := json.NewDecoder(pollResp.Body).Decode(&panelReq); err != nil {
		t.Fatalf("decode poll: %v", err)
	}

	if panelReq.Type != core.MessagePanelRequest || panelReq.Method != "getPublicKey" {
		t.Fatalf("panel request = %+v", panelReq)
	}

	var accepted map[string]bool
	postJSON(t, svr.URL+"/panel/responses", core.PanelResponse{
		Type:      core.MessagePanelResponse,
		RequestID: panelReq.RequestID,
		Result:    json.RawMessage(`"deadbeef"`),
	}, &accepted)

	if !accepted["accepted"] {
		t.Error("response must be accepted")
	}

	r := <-done
	if r.err != nil {
		t.Fatalf("request: %v", r.err)
	}
	if string(r.resp.Result) != `"deadbeef"` || r.resp.Error != "" {
		t.Errorf("page response = %+v", r.resp)
	}

	// the slot is free again; a repeat response is dropped
	var again map[string]bool
	postJSON(t, svr.URL+"/panel/responses", core.PanelResponse{RequestID: panelReq.RequestID}, &again)
	if again["accepted"] {
		t.Error("late response must be dropped")
	}
}

func TestPanelPollEmpty(t *testing.T) {
	svr, _ := newTestServer(t, 50*time.Millisecond)

	resp, err := http.Get(svr.URL + "/panel/requests")
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}

func TestDecisionTargetsCurrent(t *testing.T) {
	svr, actions := newTestServer(t, 5*time.Second)

	done := make(chan *core.BridgeResponse, 1)
	go func() {
		done <- actions.Dispatch(context.Background(), &core.BridgeRequest{Method: "getPublicKey"})
	}()

	deadline := time.Now().Add(time.Second)
	for actions.Pending() == nil {
		if time.Now().After(deadline) {
			t.Fatal("request never became pending")
		}

		time.Sleep(time.Millisecond)
	}

	// wrong id conflicts
	resp := postJSON(t, svr.URL+"/panel/decisions", map[string]any{"requestId": "nope", "approve": true}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}

	var out map[string]any
	postJSON(t, svr.URL+"/panel/decisions", map[string]any{
		"requestId": actions.Pending().RequestID,
		"approve":   true,
	}, &out)

	if settled, _ := out["settled"].(bool); !settled {
		t.Errorf("decision answer = %+v", out)
	}

	if r := <-done; r.Error != "" || string(r.Result) != `"deadbeef"` {
		t.Errorf("page response = %+v", r)
	}
}

func TestReady(t *testing.T) {
	svr, actions := newTestServer(t, 5*time.Second)

	// nothing pending: 204
	resp := postJSON(t, svr.URL+"/panel/ready", map[string]string{"type": core.MessagePanelReady}, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}

	done := make(chan *core.BridgeResponse, 1)
	go func() {
		done <- actions.Dispatch(context.Background(), &core.BridgeRequest{Method: "getPublicKey"})
	}()

	deadline := time.Now().Add(time.Second)
	for actions.Pending() == nil {
		if time.Now().After(deadline) {
			t.Fatal("request never became pending")
		}

		time.Sleep(time.Millisecond)
	}

	var pending core.PanelRequest
	postJSON(t, svr.URL+"/panel/ready", map[string]string{"type": core.MessagePanelReady}, &pending)
	if pending.RequestID != actions.Pending().RequestID {
		t.Errorf("pending = %+v", pending)
	}

	// a bad signal is rejected
	resp = postJSON(t, svr.URL+"/panel/ready", map[string]string{"type": "hello"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	actions.Respond(&core.PanelResponse{RequestID: pending.RequestID, Error: core.ErrUserDenied.Error()})
	<-done
}
