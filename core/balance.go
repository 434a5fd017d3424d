package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the last known amount held for one token. The empty token
// symbol denotes the network's native unit.
type Balance struct {
	Token     string          `json:"token,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type BalanceStore interface {
	Save(ctx context.Context, balances []*Balance) error
	Find(ctx context.Context, token string) (*Balance, error)
	List(ctx context.Context) ([]*Balance, error)
}
