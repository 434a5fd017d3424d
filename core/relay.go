package core

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Envelope type tags exchanged with pages and approval panels. Field
// names and values are a compatibility contract with the content-script
// bridge; do not rename.
const (
	MessagePageRequest   = "FEELLESS_WALLET_REQUEST"
	MessagePageResponse  = "FEELLESS_WALLET_RESPONSE"
	MessagePanelRequest  = "feeless-wallet-panel-request"
	MessagePanelResponse = "feeless-wallet-panel-response"
	MessagePanelReady    = "panel-ready"
)

// Relay error strings are observed verbatim by embedding pages.
var (
	ErrUserDenied      = errors.New("User denied")
	ErrRespondTimeout  = errors.New("Timeout waiting for user response")
	ErrRelayBusy       = errors.New("Another request is pending")
	ErrNonceNotInteger = errors.New("Nonce must be an integer")
)

// ErrNoPendingRequest is returned by approval surfaces when a decision
// arrives while nothing is being presented.
var ErrNoPendingRequest = errors.New("no pending request")

// BridgeRequest is a wallet-action request as relayed by the
// content-script bridge from an embedding page.
type BridgeRequest struct {
	Method  string          `json:"method"`
	Payload json.RawMessage `json:"payload,omitempty"`
	ID      string          `json:"id,omitempty"`
}

// BridgeResponse answers a BridgeRequest. Exactly one is produced per
// request; Result and Error are mutually exclusive.
type BridgeResponse struct {
	Type   string          `json:"type"`
	Method string          `json:"method"`
	ID     string          `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// PanelRequest is broadcast to approval surfaces when a request needs
// user inspection.
type PanelRequest struct {
	Type      string          `json:"type"`
	Method    string          `json:"method"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"requestId"`
}

// PanelResponse carries a terminal outcome from an approval surface
// back to the relay, correlated by RequestID.
type PanelResponse struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// PendingRequest is the single in-flight wallet action awaiting a
// terminal outcome. At most one exists per relay.
type PendingRequest struct {
	RequestID string    `json:"request_id"`
	Action    *Action   `json:"action"`
	External  bool      `json:"external"`
	CreatedAt time.Time `json:"created_at"`
}

// ActionRelay mediates wallet-action requests between callers and
// approval surfaces, guaranteeing exactly one terminal outcome per
// request.
type ActionRelay interface {
	// Request submits an in-process action and blocks until an
	// approval surface settles it or ctx expires. There is no
	// relay-level timeout on this path.
	Request(ctx context.Context, action *Action) (json.RawMessage, error)

	// Dispatch handles a request from the external page boundary.
	// It always returns a response within the relay's respond
	// timeout.
	Dispatch(ctx context.Context, req *BridgeRequest) *BridgeResponse

	// Subscribe registers an approval surface. The current pending
	// request, if any, is re-delivered to new subscribers.
	Subscribe() (<-chan *PanelRequest, func())

	// Respond settles the pending request matching the response's
	// correlation id. It reports whether the response was accepted;
	// late or mismatched responses are dropped.
	Respond(resp *PanelResponse) bool

	// Claim reserves the pending request matching the id for
	// exclusive settlement: later Respond and Claim calls for it
	// report false, and the returned settle function delivers the
	// terminal outcome to the original caller. A surface that
	// executes wallet calls must claim before executing, so an
	// action can never run after its request was settled elsewhere.
	Claim(requestID string) (settle func(resp *PanelResponse), ok bool)

	// Pending returns the currently presented request, or nil.
	Pending() *PanelRequest
}

// ApprovalSurface is the in-process approval step: it presents the
// pending action, counts down, and turns a user decision into a relay
// response.
type ApprovalSurface interface {
	// Current returns the presented request and the remaining
	// countdown ticks, or nil when idle.
	Current() (*PanelRequest, int)

	Approve(ctx context.Context) error
	Reject(ctx context.Context) error
}
