// Package poller periodically refreshes last-known balances through the
// wallet client so the home screen has data without hitting the node on
// every view.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/fee-less/feeless-wallet/core"
	"github.com/zyedidia/generic/mapset"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Interval time.Duration `valid:"required"`

	// Tokens to track besides the native unit and anything already in
	// the balance store.
	Tokens []string
}

func New(
	session core.Session,
	balances core.BalanceStore,
	logger *slog.Logger,
	cfg Config,
) *Poller {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Poller{
		session:  session,
		balances: balances,
		logger:   logger.With("worker", "poller"),
		cfg:      cfg,
	}
}

type Poller struct {
	session  core.Session
	balances core.BalanceStore
	logger   *slog.Logger
	cfg      Config
}

func (w *Poller) Run(ctx context.Context) error {
	w.logger.Info("poller start")

	for {
		if err := w.run(ctx); err != nil {
			w.logger.Debug("poll skipped", "err", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.cfg.Interval):
		}
	}
}

func (w *Poller) run(ctx context.Context) error {
	client, ok := w.session.Current()
	if !ok {
		return fmt.Errorf("wallet locked")
	}

	tokens := w.trackedTokens(ctx)

	var g errgroup.Group
	g.SetLimit(4)

	for _, token := range tokens {
		token := token
		g.Go(func() error {
			amount, err := client.Balance(ctx, token)
			if err != nil {
				w.logger.Error("client.Balance", "token", token, "err", err)
				return err
			}

			return w.balances.Save(ctx, []*core.Balance{{
				Token:     token,
				Amount:    amount,
				UpdatedAt: time.Now(),
			}})
		})
	}

	return g.Wait()
}

// trackedTokens merges the configured token list with whatever the
// store has seen before; the empty symbol is the native unit.
func (w *Poller) trackedTokens(ctx context.Context) []string {
	seen := mapset.New[string]()
	tokens := []string{""}
	seen.Put("")

	for _, t := range w.cfg.Tokens {
		if !seen.Has(t) {
			seen.Put(t)
			tokens = append(tokens, t)
		}
	}

	known, err := w.balances.List(ctx)
	if err != nil {
		w.logger.Error("balances.List", "err", err)
		return tokens
	}

	for _, b := range known {
		if !seen.Has(b.Token) {
			seen.Put(b.Token)
			tokens = append(tokens, b.Token)
		}
	}

	return tokens
}
