package domain

// Wallet transaction statuses reported by the venue.
const (
	TransactionStatusCreated    = "CREATED"
	TransactionStatusPending    = "PENDING"
	TransactionStatusSuccess    = "SUCCESS"
	TransactionStatusFailed     = "FAILED"
	TransactionStatusRolledBack = "ROLLED_BACK"

	// TransactionStatusNotFound is synthesized when the transactions
	// endpoint has no record of the id yet.
	TransactionStatusNotFound = "NOT_FOUND"
)

// TransactionSucceeded reports whether a wallet transaction reached its
// terminal success state with enough on-chain confirmations.
func TransactionSucceeded(status string, confirmations, required int) bool {
	return status == TransactionStatusSuccess && confirmations >= required
}

// TransactionFailed reports whether a wallet transaction terminally failed.
func TransactionFailed(status string) bool {
	return status == TransactionStatusFailed || status == TransactionStatusRolledBack
}
