package balance

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/fee-less/feeless-wallet/core"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pandodao/generic"
	"github.com/shopspring/decimal"
	"github.com/tsenart/nap"
)

func New(db *nap.DB) core.BalanceStore {
	return &store{
		db:    db,
		cache: generic.Must(lru.New[string, *core.Balance](64)),
	}
}

type store struct {
	db    *nap.DB
	cache *lru.Cache[string, *core.Balance]
}

var columns = []string{"token", "amount", "updated_at"}

func (s *store) Save(ctx context.Context, balances []*core.Balance) error {
	for _, b := range balances {
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = time.Now()
		}

		q := sq.Insert("balances").
			Columns(columns...).
			Values(b.Token, b.Amount.String(), b.UpdatedAt).
			Suffix("ON CONFLICT(`token`) DO UPDATE SET `amount` = excluded.`amount`, `updated_at` = excluded.`updated_at`")

		if _, err := q.RunWith(s.db).ExecContext(ctx); err != nil {
			return err
		}

		s.cache.Add(b.Token, b)
	}

	return nil
}

func (s *store) Find(ctx context.Context, token string) (*core.Balance, error) {
	if b, ok := s.cache.Get(token); ok {
		return b, nil
	}

	q := sq.Select(columns...).From("balances").Where(sq.Eq{"token": token})
	row := q.RunWith(s.db).QueryRowContext(ctx)

	var b core.Balance
	if err := scanBalance(row, &b); err != nil {
		return nil, err
	}

	s.cache.Add(token, &b)
	return &b, nil
}

func (s *store) List(ctx context.Context) ([]*core.Balance, error) {
	q := sq.Select(columns...).From("balances").OrderBy("token")
	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var balances []*core.Balance
	for rows.Next() {
		var b core.Balance
		if err := scanBalance(rows, &b); err != nil {
			return nil, err
		}

		balances = append(balances, &b)
	}

	return balances, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBalance(row scanner, b *core.Balance) error {
	var amount string
	if err := row.Scan(&b.Token, &amount, &b.UpdatedAt); err != nil {
		return err
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return err
	}

	b.Amount = d
	return nil
}
