package history

import (
	"github.com/fee-less/feeless-wallet/core"
	"github.com/shopspring/decimal"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

var scanColumns = []string{
	"id",
	"created_at",
	"trace_id",
	"kind",
	"token",
	"amount",
	"recipient",
	"tx_id",
}

func scanReceipt(row scanner, receipt *core.Receipt) error {
	var (
		kind   string
		amount string
	)

	if err := row.Scan(
		&receipt.ID,
		&receipt.CreatedAt,
		&receipt.TraceID,
		&kind,
		&receipt.Token,
		&amount,
		&receipt.To,
		&receipt.TxID,
	); err != nil {
		return err
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return err
	}

	receipt.Amount = d
	receipt.Kind = core.KindFromName(kind)
	return nil
}
