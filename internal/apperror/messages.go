package apperror

// messages maps error codes to default human-readable messages.
var messages = map[Code]string{
	CodeRequiredField:      "required field is missing",
	CodeInvalidInput:       "invalid input",
	CodeInvalidState:       "invalid state",
	CodeNotFound:           "resource not found",
	CodeConfigurationError: "configuration error",
	CodeInternalError:      "internal error",
	CodeUnknownError:       "unknown error",

	CodeNetworkError:       "network request failed",
	CodeGleecAPIError:      "gleec exchange API error",
	CodeDexHunterAPIError:  "dexhunter aggregator API error",
	CodeBlockfrostAPIError: "blockfrost indexer API error",
	CodeRateLimitExceeded:  "rate limit exceeded",
	CodeCircuitOpen:        "circuit breaker open",

	CodeInsufficientLiquidity: "insufficient order book liquidity",
	CodeInsufficientBalance:   "insufficient balance",
	CodeOrderRejected:         "order rejected",
	CodeOrderNotFound:         "order not found",
	CodeSigningError:          "transaction signing failed",
	CodeSubmitFailed:          "transaction submission failed",
	CodeConfirmationTimeout:   "confirmation polling timed out",
	CodeWithdrawalFailed:      "withdrawal failed",
	CodeWithdrawalRolledBack:  "withdrawal rolled back",
	CodeDepositTimeout:        "deposit not confirmed within timeout",
	CodeNetworkIDMismatch:     "transaction network id does not match configured network",
	CodeStateCorruption:       "persisted state could not be parsed",
	CodePriceUnavailable:      "price data unavailable",
}
