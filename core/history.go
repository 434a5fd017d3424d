package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Receipt records a transfer or mint submitted to the node.
type Receipt struct {
	ID        uint64          `json:"id,omitempty"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
	TraceID   string          `json:"trace_id,omitempty"`
	Kind      ActionKind      `json:"kind,omitempty"`
	Token     string          `json:"token,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	To        string          `json:"to,omitempty"`
	TxID      string          `json:"tx_id,omitempty"`
}

type HistoryStore interface {
	Create(ctx context.Context, receipt *Receipt) error
	FindTrace(ctx context.Context, traceID string) (*Receipt, error)
	List(ctx context.Context, limit int) ([]*Receipt, error)
}
