// Package wallet implements the feeless node client: key material,
// message and transaction signing, and node communication. Everything
// above it treats this as an opaque capability provider.
package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fee-less/feeless-wallet/core"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// New builds a wallet client from a credential profile. The private key
// is a hex-encoded ed25519 seed.
func New(cred *core.Credential) (core.WalletClient, error) {
	if !cred.Valid() {
		return nil, fmt.Errorf("incomplete credential profile")
	}

	seed, err := hex.DecodeString(cred.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}

	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	key := ed25519.NewKeyFromSeed(seed)

	return &client{
		key:  key,
		pub:  hex.EncodeToString(key.Public().(ed25519.PublicKey)),
		node: strings.TrimRight(cred.HTTPNode, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// GenerateKey returns a fresh hex-encoded ed25519 seed, used by the
// login flow when the user has no key to import.
func GenerateKey() (string, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return "", err
	}

	return hex.EncodeToString(seed), nil
}

type client struct {
	key  ed25519.PrivateKey
	pub  string
	node string
	http *http.Client

	sf singleflight.Group
}

func (c *client) PublicKey() string {
	return c.pub
}

func (c *client) SignMessage(message string) (string, error) {
	return hex.EncodeToString(ed25519.Sign(c.key, []byte(message))), nil
}

// SignIn signs the decimal string form of the nonce, which is what
// verifying pages expect.
func (c *client) SignIn(nonce int64) (*core.SignInResult, error) {
	signature, err := c.SignMessage(strconv.FormatInt(nonce, 10))
	if err != nil {
		return nil, err
	}

	return &core.SignInResult{
		PublicKey: c.pub,
		Signature: signature,
	}, nil
}

func (c *client) Send(ctx context.Context, payload core.SendPayload) (*core.Receipt, error) {
	if !payload.Amount.IsPositive() {
		return nil, fmt.Errorf("invalid amount")
	}

	if payload.To == "" {
		return nil, fmt.Errorf("missing recipient")
	}

	tx := transaction{
		From:      c.pub,
		To:        payload.To,
		Amount:    payload.Amount.String(),
		Token:     payload.Token,
		Unlock:    payload.Unlock,
		TraceID:   uuid.NewString(),
		Timestamp: time.Now().UnixMilli(),
	}
	tx.Signature = c.sign(tx.signingString())

	var out struct {
		TxID string `json:"txId"`
	}

	if err := c.post(ctx, "/transaction", tx, &out); err != nil {
		return nil, fmt.Errorf("submit transaction: %w", err)
	}

	return &core.Receipt{
		CreatedAt: time.Now(),
		TraceID:   tx.TraceID,
		Kind:      core.ActionSend,
		Token:     payload.Token,
		Amount:    payload.Amount,
		To:        payload.To,
		TxID:      out.TxID,
	}, nil
}

func (c *client) MintToken(ctx context.Context, payload core.MintPayload) (*core.Receipt, error) {
	if payload.Token == "" {
		return nil, fmt.Errorf("missing token symbol")
	}

	if !payload.Supply.IsPositive() {
		return nil, fmt.Errorf("invalid supply")
	}

	mint := mint{
		Owner:     c.pub,
		Token:     payload.Token,
		Supply:    payload.Supply.String(),
		TraceID:   uuid.NewString(),
		Timestamp: time.Now().UnixMilli(),
	}
	mint.Signature = c.sign(mint.signingString())

	var out struct {
		TxID string `json:"txId"`
	}

	if err := c.post(ctx, "/mint", mint, &out); err != nil {
		return nil, fmt.Errorf("submit mint: %w", err)
	}

	return &core.Receipt{
		CreatedAt: time.Now(),
		TraceID:   mint.TraceID,
		Kind:      core.ActionMintToken,
		Token:     payload.Token,
		Amount:    payload.Supply,
		TxID:      out.TxID,
	}, nil
}

// Balance deduplicates concurrent lookups for the same token.
func (c *client) Balance(ctx context.Context, token string) (decimal.Decimal, error) {
	v, err, _ := c.sf.Do("balance:"+token, func() (any, error) {
		path := "/balance/" + c.pub
		if token != "" {
			path += "?token=" + url.QueryEscape(token)
		}

		var out struct {
			Balance json.Number `json:"balance"`
		}

		if err := c.get(ctx, path, &out); err != nil {
			return nil, err
		}

		return decimal.NewFromString(out.Balance.String())
	})

	if err != nil {
		return decimal.Zero, err
	}

	return v.(decimal.Decimal), nil
}

func (c *client) TokenInfo(ctx context.Context, token string) (*core.Token, error) {
	var out struct {
		Symbol string      `json:"symbol"`
		Supply json.Number `json:"supply"`
		Owner  string      `json:"owner"`
	}

	if err := c.get(ctx, "/token/"+url.PathEscape(token), &out); err != nil {
		return nil, err
	}

	supply, err := decimal.NewFromString(out.Supply.String())
	if err != nil {
		return nil, fmt.Errorf("bad supply: %w", err)
	}

	return &core.Token{
		Symbol: out.Symbol,
		Supply: supply,
		Owner:  out.Owner,
	}, nil
}

func (c *client) sign(message string) string {
	return hex.EncodeToString(ed25519.Sign(c.key, []byte(message)))
}
