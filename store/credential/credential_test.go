package credential

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fee-less/feeless-wallet/core"
	"github.com/fee-less/feeless-wallet/store/db"
	"github.com/fee-less/feeless-wallet/store/property"
	"github.com/tsenart/nap"

	_ "github.com/mattn/go-sqlite3"
)

func testStores(t *testing.T) (core.CredentialStore, core.PropertyStore) {
	t.Helper()

	conn, err := nap.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(conn.Master()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	properties := property.New(conn)
	return New(properties), properties
}

func TestSaveLoad(t *testing.T) {
	s, _ := testStores(t)
	ctx := context.Background()

	cred := &core.Credential{
		PrivateKey: "9d61b19d",
		WSNode:     "ws://localhost:6061",
		HTTPNode:   "http://localhost:8000",
	}

	if err := s.Save(ctx, cred); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || *got != *cred {
		t.Errorf("got %+v, want %+v", got, cred)
	}
}

func TestLoadMissing(t *testing.T) {
	s, _ := testStores(t)

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestLoadUnusable(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"not an object", "scrambled"},
		{"incomplete profile", core.Credential{WSNode: "ws://localhost:6061"}},
		{"empty object", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, properties := testStores(t)
			ctx := context.Background()

			if err := properties.Set(ctx, "wallet_credential", tt.value); err != nil {
				t.Fatalf("Set: %v", err)
			}

			got, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("unusable profile must not fail: %v", err)
			}
			if got != nil {
				t.Errorf("got %+v, want nil", got)
			}
		})
	}
}

func TestClear(t *testing.T) {
	s, _ := testStores(t)
	ctx := context.Background()

	if err := s.Save(ctx, &core.Credential{PrivateKey: "ab", HTTPNode: "http://localhost:8000"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v after clear", got)
	}
}
