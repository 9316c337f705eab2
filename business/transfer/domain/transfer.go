// Package domain holds the transfer context's venue-status vocabulary
// and polling policy.
package domain

import (
	"fmt"
	"math"
	"time"
)

// Venue transaction statuses observed while polling a withdrawal.
const (
	StatusSuccess    = "SUCCESS"
	StatusFailed     = "FAILED"
	StatusRolledBack = "ROLLED_BACK"
	StatusNotFound   = "NOT_FOUND"
)

// maxPollDelay caps the withdrawal poll backoff.
const maxPollDelay = 60 * time.Second

// Succeeded reports whether a withdrawal reached its terminal success
// state with enough confirmations. A Success status with too few
// confirmations keeps the poll running.
func Succeeded(status string, confirmations, required int) bool {
	return status == StatusSuccess && confirmations >= required
}

// TerminallyFailed reports whether a withdrawal can never complete.
func TerminallyFailed(status string) bool {
	return status == StatusFailed || status == StatusRolledBack
}

// Backoff returns the wait before the next withdrawal poll: 2^(n/2)
// seconds, capped at one minute.
func Backoff(attempt int) time.Duration {
	s := math.Pow(2, float64(attempt)/2)
	d := time.Duration(s * float64(time.Second))
	if d > maxPollDelay {
		return maxPollDelay
	}
	return d
}

// NewDepositID labels a ledger-to-exchange transfer for the persisted
// state; deposits have no venue-side transaction id until they land.
func NewDepositID(currency string, now time.Time) string {
	return fmt.Sprintf("deposit_%s_%d", currency, now.Unix())
}
