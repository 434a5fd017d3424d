// Package watcher follows the node's websocket balance stream and
// writes updates through to the balance store, reconnecting with
// exponential backoff.
package watcher

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fee-less/feeless-wallet/core"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

func New(
	session core.Session,
	balances core.BalanceStore,
	logger *slog.Logger,
) *Watcher {
	return &Watcher{
		session:  session,
		balances: balances,
		logger:   logger.With("worker", "watcher"),
	}
}

type Watcher struct {
	session  core.Session
	balances core.BalanceStore
	logger   *slog.Logger
}

func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watcher start")

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0

	for {
		cred, ok := w.session.Profile()
		if ok && cred.WSNode != "" {
			started := time.Now()

			if err := w.stream(ctx, cred); err != nil && ctx.Err() == nil {
				w.logger.Error("stream closed", "err", err)
			}

			// a connection that held for a while resets the backoff
			if time.Since(started) > time.Minute {
				bo.Reset()
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(bo.NextBackOff()):
		}
	}
}

// balanceEvent is a single push from the node's websocket feed.
type balanceEvent struct {
	Type   string      `json:"type"`
	Token  string      `json:"token"`
	Amount json.Number `json:"amount"`
}

func (w *Watcher) stream(ctx context.Context, cred *core.Credential) error {
	client, ok := w.session.Current()
	if !ok {
		return nil
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cred.WSNode, nil)
	if err != nil {
		return err
	}

	defer conn.Close()

	// unblock ReadJSON when ctx is cancelled or the wallet that opened
	// this stream is logged out or replaced
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer conn.Close()

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				cur, ok := w.session.Profile()
				if !ok || cur.PrivateKey != cred.PrivateKey || cur.WSNode != cred.WSNode {
					w.logger.Info("wallet changed, closing stream", "node", cred.WSNode)
					return
				}
			}
		}
	}()

	if err := conn.WriteJSON(map[string]string{
		"type":    "subscribe",
		"address": client.PublicKey(),
	}); err != nil {
		return err
	}

	w.logger.Info("subscribed", "node", cred.WSNode)

	for {
		var ev balanceEvent
		if err := conn.ReadJSON(&ev); err != nil {
			return err
		}

		if ev.Type != "balance" {
			continue
		}

		amount, err := decimal.NewFromString(ev.Amount.String())
		if err != nil {
			w.logger.Warn("bad balance event", "token", ev.Token, "amount", ev.Amount)
			continue
		}

		if err := w.balances.Save(ctx, []*core.Balance{{
			Token:     ev.Token,
			Amount:    amount,
			UpdatedAt: time.Now(),
		}}); err != nil {
			w.logger.Error("balances.Save", "token", ev.Token, "err", err)
		}
	}
}
