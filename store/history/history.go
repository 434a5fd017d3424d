package history

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/fee-less/feeless-wallet/core"
	"github.com/tsenart/nap"
)

func New(db *nap.DB) core.HistoryStore {
	return &store{db: db}
}

type store struct {
	db *nap.DB
}

func (s *store) Create(ctx context.Context, receipt *core.Receipt) error {
	if receipt.CreatedAt.IsZero() {
		receipt.CreatedAt = time.Now()
	}

	q := sq.Insert("receipts").
		Columns("created_at", "trace_id", "kind", "token", "amount", "recipient", "tx_id").
		Values(receipt.CreatedAt, receipt.TraceID, receipt.Kind.String(), receipt.Token, receipt.Amount.String(), receipt.To, receipt.TxID)

	_, err := q.RunWith(s.db).ExecContext(ctx)
	return err
}

func (s *store) FindTrace(ctx context.Context, traceID string) (*core.Receipt, error) {
	q := sq.Select(scanColumns...).
		From("receipts").
		Where("trace_id = ?", traceID)
	row := q.RunWith(s.db).QueryRowContext(ctx)

	var receipt core.Receipt
	if err := scanReceipt(row, &receipt); err != nil {
		return nil, err
	}

	return &receipt, nil
}

func (s *store) List(ctx context.Context, limit int) ([]*core.Receipt, error) {
	q := sq.Select(scanColumns...).
		From("receipts").
		OrderBy("id DESC").
		Limit(uint64(limit))

	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var receipts []*core.Receipt
	for rows.Next() {
		var receipt core.Receipt
		if err := scanReceipt(rows, &receipt); err != nil {
			return nil, err
		}

		receipts = append(receipts, &receipt)
	}

	return receipts, rows.Err()
}
