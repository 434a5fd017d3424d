package balance

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fee-less/feeless-wallet/core"
	"github.com/fee-less/feeless-wallet/store/db"
	"github.com/shopspring/decimal"
	"github.com/tsenart/nap"

	_ "github.com/mattn/go-sqlite3"
)

func testDB(t *testing.T) *nap.DB {
	t.Helper()

	conn, err := nap.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(conn.Master()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return conn
}

func TestSaveFind(t *testing.T) {
	s := New(testDB(t))
	ctx := context.Background()

	if err := s.Save(ctx, []*core.Balance{
		{Token: core.NativeToken, Amount: decimal.RequireFromString("10.5")},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Find(ctx, core.NativeToken)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !got.Amount.Equal(decimal.RequireFromString("10.5")) {
		t.Errorf("amount = %s, want 10.5", got.Amount)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped")
	}

	// upsert replaces the amount
	if err := s.Save(ctx, []*core.Balance{
		{Token: core.NativeToken, Amount: decimal.NewFromInt(7)},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err = s.Find(ctx, core.NativeToken)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !got.Amount.Equal(decimal.NewFromInt(7)) {
		t.Errorf("amount = %s, want 7", got.Amount)
	}
}

func TestFindBypassesCache(t *testing.T) {
	conn := testDB(t)
	ctx := context.Background()

	// two stores over one db: the second has a cold cache
	warm, cold := New(conn), New(conn)

	if err := warm.Save(ctx, []*core.Balance{
		{Token: "GOLD", Amount: decimal.NewFromInt(3)},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := cold.Find(ctx, "GOLD")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !got.Amount.Equal(decimal.NewFromInt(3)) {
		t.Errorf("amount = %s, want 3", got.Amount)
	}
}

func TestFindMissing(t *testing.T) {
	s := New(testDB(t))

	if _, err := s.Find(context.Background(), "NOPE"); err == nil {
		t.Error("expected error for unknown token")
	}
}

func TestList(t *testing.T) {
	s := New(testDB(t))
	ctx := context.Background()

	if err := s.Save(ctx, []*core.Balance{
		{Token: "GOLD", Amount: decimal.NewFromInt(1)},
		{Token: core.NativeToken, Amount: decimal.NewFromInt(2)},
		{Token: "ACME", Amount: decimal.NewFromInt(3)},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	balances, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(balances) != 3 {
		t.Fatalf("len = %d, want 3", len(balances))
	}

	// ordered by token
	for i, want := range []string{"ACME", core.NativeToken, "GOLD"} {
		if balances[i].Token != want {
			t.Errorf("balances[%d].Token = %q, want %q", i, balances[i].Token, want)
		}
	}
}
