package statefile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/arbitrage/domain"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "state.json"), logger.Nop())
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	now := time.Unix(1_700_000_000, 0).UTC()

	state := domain.NewState()
	state.TrackOrder("101", now, map[string]string{"symbol": "SHARDSUSDT", "side": "buy"})
	state.TrackWithdrawal("wd-1", now, nil)
	state.RecordCompleted("abc123", "dex_sell", now, true)

	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.SchemaVersion != domain.CurrentSchemaVersion {
		t.Errorf("schema version = %d", loaded.SchemaVersion)
	}
	order, ok := loaded.ActiveOrders["101"]
	if !ok {
		t.Fatal("order entry missing after round trip")
	}
	if order.Details["symbol"] != "SHARDSUSDT" {
		t.Errorf("details = %v", order.Details)
	}
	if !order.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want %v", order.Timestamp, now)
	}
	if len(loaded.CompletedTransactions) != 1 || !loaded.CompletedTransactions[0].DexSellCompleted {
		t.Errorf("completed = %+v", loaded.CompletedTransactions)
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := newStore(t)
	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state.HasPending() || len(state.CompletedTransactions) != 0 {
		t.Error("missing file should load as empty state")
	}
}

func TestStore_LoadCorruptFile(t *testing.T) {
	store := newStore(t)
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state.HasPending() {
		t.Error("corrupt file should load as empty state")
	}
}

func TestStore_LoadMigratesVersionZero(t *testing.T) {
	store := newStore(t)
	// A v0 writer had no schema_version field and omitted empty maps.
	legacy := []byte(`{"active_orders": {"7": {"status": "pending", "timestamp": "2023-11-14T22:13:20Z"}}}`)
	if err := os.WriteFile(store.Path(), legacy, 0o600); err != nil {
		t.Fatal(err)
	}

	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state.SchemaVersion != domain.CurrentSchemaVersion {
		t.Errorf("schema version = %d after migration", state.SchemaVersion)
	}
	if state.PendingTransfers == nil || state.ActiveWithdrawals == nil {
		t.Error("migration must initialize missing maps")
	}
	if _, ok := state.ActiveOrders["7"]; !ok {
		t.Error("legacy entry lost in migration")
	}
}

func TestStore_SaveReplacesAtomically(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	first := domain.NewState()
	first.TrackOrder("1", time.Unix(1_700_000_000, 0), nil)
	if err := store.Save(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := domain.NewState()
	if err := store.Save(ctx, second); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.HasPending() {
		t.Error("second save should fully replace the first")
	}

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}
