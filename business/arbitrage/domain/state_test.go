package domain

import (
	"testing"
	"time"
)

func TestState_PendingCount(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := NewState()
	if s.HasPending() {
		t.Fatal("empty state should have nothing pending")
	}

	s.TrackOrder("101", now, nil)
	s.TrackWithdrawal("wd-1", now, nil)
	s.TrackTransfer("deposit_SHARDS_1700000000", now, nil)
	if got := s.PendingCount(); got != 3 {
		t.Errorf("pending = %d, want 3", got)
	}

	// Terminal entries stop counting as pending even while they remain
	// in their maps.
	s.MarkWithdrawalConfirmed("wd-1")
	if got := s.PendingCount(); got != 2 {
		t.Errorf("pending = %d, want 2 after withdrawal confirmed", got)
	}
}

func TestState_UnfinishedDexSell(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := NewState()

	if _, ok := s.UnfinishedDexSell(); ok {
		t.Fatal("empty state should report no unfinished sell")
	}

	s.TrackWithdrawal("wd-1", now, nil)
	if _, ok := s.UnfinishedDexSell(); ok {
		t.Fatal("a still-pending withdrawal is not an unfinished sell")
	}

	s.MarkWithdrawalConfirmed("wd-1")
	id, ok := s.UnfinishedDexSell()
	if !ok || id != "wd-1" {
		t.Fatalf("UnfinishedDexSell = %q, %v", id, ok)
	}

	delete(s.ActiveWithdrawals, "wd-1")
	s.RecordCompleted("hash1", "dex_sell", now, true)
	if _, ok := s.UnfinishedDexSell(); ok {
		t.Fatal("settled sell should clear the unfinished marker")
	}
}

func TestState_ClearStale(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := NewState()
	s.TrackOrder("old", now.Add(-2*time.Hour), nil)
	s.TrackOrder("fresh", now.Add(-time.Minute), nil)
	s.TrackWithdrawal("ancient", now.Add(-25*time.Hour), nil)

	dropped := s.ClearStale(now, time.Hour)
	if len(dropped) != 2 {
		t.Fatalf("dropped %v, want 2 entries", dropped)
	}
	if _, ok := s.ActiveOrders["fresh"]; !ok {
		t.Error("fresh entry should survive")
	}
	if _, ok := s.ActiveOrders["old"]; ok {
		t.Error("old entry should be gone")
	}
	if len(s.ActiveWithdrawals) != 0 {
		t.Error("ancient withdrawal should be gone")
	}
}

func TestState_ForceClear(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := NewState()
	s.TrackOrder("101", now, nil)
	s.TrackWithdrawal("wd-1", now, nil)
	s.RecordCompleted("hash1", "dex_buy", now, false)

	if n := s.ForceClear(); n != 2 {
		t.Errorf("cleared %d, want 2", n)
	}
	if s.HasPending() {
		t.Error("nothing should be pending after force clear")
	}
	if len(s.CompletedTransactions) != 1 {
		t.Error("completed history must survive a force clear")
	}
}

func TestState_Migrate(t *testing.T) {
	s := &State{}
	s.Migrate()
	if s.SchemaVersion != CurrentSchemaVersion {
		t.Errorf("schema version = %d", s.SchemaVersion)
	}
	if s.ActiveOrders == nil || s.PendingTransfers == nil || s.ActiveWithdrawals == nil {
		t.Error("maps must be initialized")
	}
}

func TestState_RecentCompleted(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := NewState()
	for i := 0; i < 8; i++ {
		s.RecordCompleted(string(rune('a'+i)), "dex_sell", now, true)
	}
	recent := s.RecentCompleted(5)
	if len(recent) != 5 {
		t.Fatalf("len = %d", len(recent))
	}
	if recent[4].TxHash != "h" {
		t.Errorf("newest = %s, want h", recent[4].TxHash)
	}
}
