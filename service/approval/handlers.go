package approval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fee-less/feeless-wallet/core"
)

// ErrWalletUnavailable is the structured outcome for an approved action
// when no wallet client is present (for example logged out between
// presentation and approval).
var ErrWalletUnavailable = errors.New("Wallet unavailable")

// actionHandler binds one action kind to its presentation text and its
// wallet-client call. Adding a kind is one table entry.
type actionHandler struct {
	describe func(payload json.RawMessage) string
	execute  func(ctx context.Context, client core.WalletClient, payload json.RawMessage) (any, error)
}

var handlers = map[core.ActionKind]actionHandler{
	core.ActionGetPublicKey: {
		describe: func(json.RawMessage) string {
			return "share the wallet public key"
		},
		execute: func(_ context.Context, client core.WalletClient, _ json.RawMessage) (any, error) {
			return client.PublicKey(), nil
		},
	},
	core.ActionSharePublicKey: {
		describe: func(json.RawMessage) string {
			return "share the wallet public key"
		},
		execute: func(_ context.Context, client core.WalletClient, _ json.RawMessage) (any, error) {
			return client.PublicKey(), nil
		},
	},
	core.ActionSignMessage: {
		describe: func(payload json.RawMessage) string {
			var p core.SignMessagePayload
			_ = json.Unmarshal(payload, &p)
			return fmt.Sprintf("sign message %q", p.Message)
		},
		execute: func(_ context.Context, client core.WalletClient, payload json.RawMessage) (any, error) {
			var p core.SignMessagePayload
			if err := json.Unmarshal(payload, &p); err != nil {
				return nil, err
			}

			signature, err := client.SignMessage(p.Message)
			if err != nil {
				return nil, err
			}

			return map[string]string{"signature": signature}, nil
		},
	},
	core.ActionSignIn: {
		describe: func(payload json.RawMessage) string {
			var p core.SignInPayload
			_ = json.Unmarshal(payload, &p)
			return fmt.Sprintf("sign in with nonce %d", p.Nonce)
		},
		execute: func(_ context.Context, client core.WalletClient, payload json.RawMessage) (any, error) {
			var p core.SignInPayload
			if err := json.Unmarshal(payload, &p); err != nil {
				return nil, err
			}

			return client.SignIn(p.Nonce)
		},
	},
	core.ActionSend: {
		describe: func(payload json.RawMessage) string {
			var p core.SendPayload
			_ = json.Unmarshal(payload, &p)

			token := p.Token
			if token == "" {
				token = core.NativeToken
			}

			return fmt.Sprintf("send %s %s to %s", p.Amount, token, p.To)
		},
		execute: func(ctx context.Context, client core.WalletClient, payload json.RawMessage) (any, error) {
			var p core.SendPayload
			if err := json.Unmarshal(payload, &p); err != nil {
				return nil, err
			}

			return client.Send(ctx, p)
		},
	},
	core.ActionMintToken: {
		describe: func(payload json.RawMessage) string {
			var p core.MintPayload
			_ = json.Unmarshal(payload, &p)
			return fmt.Sprintf("mint token %s with supply %s", p.Token, p.Supply)
		},
		execute: func(ctx context.Context, client core.WalletClient, payload json.RawMessage) (any, error) {
			var p core.MintPayload
			if err := json.Unmarshal(payload, &p); err != nil {
				return nil, err
			}

			return client.MintToken(ctx, p)
		},
	},
}

// Describe renders a pending request for user inspection.
func Describe(req *core.PanelRequest) string {
	if h, ok := handlers[core.KindFromName(req.Method)]; ok {
		return h.describe(req.Payload)
	}

	return req.Method
}

func (a *Approver) execute(ctx context.Context, req *core.PanelRequest) (json.RawMessage, error) {
	client, ok := a.session.Current()
	if !ok {
		return nil, ErrWalletUnavailable
	}

	h, ok := handlers[core.KindFromName(req.Method)]
	if !ok {
		return nil, fmt.Errorf("Unsupported method: %s", req.Method)
	}

	v, err := h.execute(ctx, client, req.Payload)
	if err != nil {
		return nil, err
	}

	if receipt, ok := v.(*core.Receipt); ok {
		if err := a.history.Create(ctx, receipt); err != nil {
			a.logger.Error("history.Create", "trace", receipt.TraceID, "err", err)
		}
	}

	return json.Marshal(v)
}
