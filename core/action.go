package core

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type ActionKind uint8

const (
	_ ActionKind = iota
	ActionGetPublicKey
	ActionSharePublicKey
	ActionSignMessage
	ActionSignIn
	ActionSend
	ActionMintToken
	ActionAlive
)

// method names are part of the page-facing contract and must not change.
var kindNames = map[ActionKind]string{
	ActionGetPublicKey:   "getPublicKey",
	ActionSharePublicKey: "sharePublicKey",
	ActionSignMessage:    "signMessage",
	ActionSignIn:         "signIn",
	ActionSend:           "send",
	ActionMintToken:      "mintToken",
	ActionAlive:          "alive",
}

// boundary methods an external page may request. sharePublicKey is
// reserved for in-process callers and deliberately absent.
var boundaryKinds = map[string]ActionKind{
	"getPublicKey": ActionGetPublicKey,
	"signMessage":  ActionSignMessage,
	"signIn":       ActionSignIn,
	"send":         ActionSend,
	"mintToken":    ActionMintToken,
	"alive":        ActionAlive,
}

func (k ActionKind) String() string {
	return kindNames[k]
}

func (k ActionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *ActionKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	*k = KindFromName(s)
	return nil
}

// ParseKind maps a boundary method string to its action kind.
func ParseKind(method string) (ActionKind, bool) {
	k, ok := boundaryKinds[method]
	return k, ok
}

// KindFromName maps any kind name back to its value, boundary or not.
// Unknown names map to the zero kind.
func KindFromName(name string) ActionKind {
	for kind, n := range kindNames {
		if n == name {
			return kind
		}
	}

	return 0
}

// Action is a wallet-action request, a tagged variant over ActionKind.
// The payload is decoded per kind by whoever executes the action.
// Immutable once created.
type Action struct {
	Kind    ActionKind      `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewAction(kind ActionKind, payload any) (*Action, error) {
	if payload == nil {
		return &Action{Kind: kind}, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Action{Kind: kind, Payload: raw}, nil
}

type SignMessagePayload struct {
	Message string `json:"message"`
}

type SignInPayload struct {
	Nonce int64 `json:"nonce"`
}

type SendPayload struct {
	Amount decimal.Decimal `json:"amount"`
	To     string          `json:"to"`
	Token  string          `json:"token,omitempty"`
	Unlock int64           `json:"unlock,omitempty"`
}

type MintPayload struct {
	Token  string          `json:"token"`
	Supply decimal.Decimal `json:"supply"`
}
