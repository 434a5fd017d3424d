package core

import (
	"context"

	"github.com/shopspring/decimal"
)

type SignInResult struct {
	PublicKey string `json:"publicKey"`
	Signature string `json:"signature"`
}

// WalletClient owns key material and all network communication with a
// feeless node. The relay and approval surfaces treat it as an opaque
// capability provider.
type WalletClient interface {
	PublicKey() string
	SignMessage(message string) (string, error)
	SignIn(nonce int64) (*SignInResult, error)
	Send(ctx context.Context, payload SendPayload) (*Receipt, error)
	MintToken(ctx context.Context, payload MintPayload) (*Receipt, error)
	Balance(ctx context.Context, token string) (decimal.Decimal, error)
	TokenInfo(ctx context.Context, token string) (*Token, error)
}

// Session holds the optional logged-in wallet for the process.
type Session interface {
	// Current returns the live wallet client, or false when logged
	// out.
	Current() (WalletClient, bool)

	// Profile returns the credential the current client was built
	// from.
	Profile() (*Credential, bool)

	Login(ctx context.Context, cred *Credential) error
	Logout(ctx context.Context) error
}
