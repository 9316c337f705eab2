package domain

import "time"

// CurrentSchemaVersion is written on every save. Version 0 documents
// (no schema_version field) are upgraded in place on load.
const CurrentSchemaVersion = 1

// Entry statuses inside the pending maps. Success and Failed are
// terminal: a terminal entry no longer blocks new cycles, but a Success
// withdrawal stays in its map until the paired DEX sell runs.
const (
	EntryPending = "pending"
	EntrySuccess = "success"
	EntryFailed  = "failed"
)

// Entry is one in-flight operation in the durable document.
type Entry struct {
	Status    string            `json:"status"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Terminal reports whether the entry reached a final status.
func (e Entry) Terminal() bool {
	return e.Status == EntrySuccess || e.Status == EntryFailed
}

// CompletedTransaction is a settled cycle leg kept for the operator's
// status report and for unfinished-cycle detection.
type CompletedTransaction struct {
	TxHash           string    `json:"tx_hash"`
	Type             string    `json:"type"`
	Timestamp        time.Time `json:"timestamp"`
	DexSellCompleted bool      `json:"dex_sell_completed"`
}

// State is the durable aggregate, rewritten in full on every mutation.
// The last successful write is authoritative after a crash.
type State struct {
	SchemaVersion         int                    `json:"schema_version"`
	ActiveOrders          map[string]Entry       `json:"active_orders"`
	PendingTransfers      map[string]Entry       `json:"pending_transfers"`
	ActiveWithdrawals     map[string]Entry       `json:"active_withdrawals"`
	CompletedTransactions []CompletedTransaction `json:"completed_transactions"`
}

// NewState returns an empty, current-version state.
func NewState() *State {
	return &State{
		SchemaVersion:     CurrentSchemaVersion,
		ActiveOrders:      map[string]Entry{},
		PendingTransfers:  map[string]Entry{},
		ActiveWithdrawals: map[string]Entry{},
	}
}

// Migrate upgrades older documents to the current schema and repairs
// maps the older writer never initialized.
func (s *State) Migrate() {
	if s.ActiveOrders == nil {
		s.ActiveOrders = map[string]Entry{}
	}
	if s.PendingTransfers == nil {
		s.PendingTransfers = map[string]Entry{}
	}
	if s.ActiveWithdrawals == nil {
		s.ActiveWithdrawals = map[string]Entry{}
	}
	s.SchemaVersion = CurrentSchemaVersion
}

// HasPending reports whether any non-terminal entry exists. A new trade
// cycle must not start while this holds.
func (s *State) HasPending() bool {
	return s.PendingCount() > 0
}

// PendingCount counts non-terminal entries across all three maps.
func (s *State) PendingCount() int {
	n := 0
	for _, m := range []map[string]Entry{s.ActiveOrders, s.PendingTransfers, s.ActiveWithdrawals} {
		for _, e := range m {
			if !e.Terminal() {
				n++
			}
		}
	}
	return n
}

// TrackOrder records an in-flight venue order.
func (s *State) TrackOrder(id string, now time.Time, details map[string]string) {
	s.ActiveOrders[id] = Entry{Status: EntryPending, Details: details, Timestamp: now}
}

// TrackTransfer records an in-flight deposit or ledger transaction.
func (s *State) TrackTransfer(id string, now time.Time, details map[string]string) {
	s.PendingTransfers[id] = Entry{Status: EntryPending, Details: details, Timestamp: now}
}

// TrackWithdrawal records an in-flight venue withdrawal.
func (s *State) TrackWithdrawal(id string, now time.Time, details map[string]string) {
	s.ActiveWithdrawals[id] = Entry{Status: EntryPending, Details: details, Timestamp: now}
}

// MarkWithdrawalConfirmed flips a withdrawal to Success. The entry stays
// in the map until the paired DEX sell leg settles.
func (s *State) MarkWithdrawalConfirmed(id string) {
	if e, ok := s.ActiveWithdrawals[id]; ok {
		e.Status = EntrySuccess
		s.ActiveWithdrawals[id] = e
	}
}

// UnfinishedDexSell returns the id of a confirmed withdrawal whose DEX
// sell leg never ran. The sell leg removes the entry when it settles, so
// a Success entry still present marks an interrupted cycle.
func (s *State) UnfinishedDexSell() (string, bool) {
	for id, e := range s.ActiveWithdrawals {
		if e.Status == EntrySuccess {
			return id, true
		}
	}
	return "", false
}

// RecordCompleted appends a settled leg to the completed list.
func (s *State) RecordCompleted(txHash, txType string, now time.Time, dexSellCompleted bool) {
	s.CompletedTransactions = append(s.CompletedTransactions, CompletedTransaction{
		TxHash:           txHash,
		Type:             txType,
		Timestamp:        now,
		DexSellCompleted: dexSellCompleted,
	})
}

// RecentCompleted returns up to n most recent completed transactions,
// newest last.
func (s *State) RecentCompleted(n int) []CompletedTransaction {
	if len(s.CompletedTransactions) <= n {
		return s.CompletedTransactions
	}
	return s.CompletedTransactions[len(s.CompletedTransactions)-n:]
}

// ClearStale drops entries older than the window. This is a lossy
// safety valve: work behind a cleared entry is abandoned and must be
// detected manually from venue balances. Returns the ids dropped.
func (s *State) ClearStale(now time.Time, window time.Duration) []string {
	var dropped []string
	for _, m := range []map[string]Entry{s.ActiveOrders, s.PendingTransfers, s.ActiveWithdrawals} {
		for id, e := range m {
			if now.Sub(e.Timestamp) > window {
				delete(m, id)
				dropped = append(dropped, id)
			}
		}
	}
	return dropped
}

// ForceClear abandons every tracked entry regardless of age. Invoked on
// shutdown or via the operator flag.
func (s *State) ForceClear() int {
	n := len(s.ActiveOrders) + len(s.PendingTransfers) + len(s.ActiveWithdrawals)
	s.ActiveOrders = map[string]Entry{}
	s.PendingTransfers = map[string]Entry{}
	s.ActiveWithdrawals = map[string]Entry{}
	return n
}
