package apperror

// Code represents a unique error code for the application.
type Code string

// General error codes
const (
	CodeRequiredField      Code = "REQUIRED_FIELD"
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeInvalidState       Code = "INVALID_STATE"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConfigurationError Code = "CONFIGURATION_ERROR"
	CodeInternalError      Code = "INTERNAL_ERROR"
	CodeUnknownError       Code = "UNKNOWN_ERROR"
)

// Venue error codes
const (
	CodeNetworkError       Code = "NETWORK_ERROR"
	CodeGleecAPIError      Code = "GLEEC_API_ERROR"
	CodeDexHunterAPIError  Code = "DEXHUNTER_API_ERROR"
	CodeBlockfrostAPIError Code = "BLOCKFROST_API_ERROR"
	CodeRateLimitExceeded  Code = "RATE_LIMIT_EXCEEDED"
	CodeCircuitOpen        Code = "CIRCUIT_OPEN"
)

// Trade-cycle error codes
const (
	CodeInsufficientLiquidity Code = "INSUFFICIENT_LIQUIDITY"
	CodeInsufficientBalance   Code = "INSUFFICIENT_BALANCE"
	CodeOrderRejected         Code = "ORDER_REJECTED"
	CodeOrderNotFound         Code = "ORDER_NOT_FOUND"
	CodeSigningError          Code = "SIGNING_ERROR"
	CodeSubmitFailed          Code = "SUBMIT_FAILED"
	CodeConfirmationTimeout   Code = "CONFIRMATION_TIMEOUT"
	CodeWithdrawalFailed      Code = "WITHDRAWAL_FAILED"
	CodeWithdrawalRolledBack  Code = "WITHDRAWAL_ROLLED_BACK"
	CodeDepositTimeout        Code = "DEPOSIT_TIMEOUT"
	CodeNetworkIDMismatch     Code = "NETWORK_ID_MISMATCH"
	CodeStateCorruption       Code = "STATE_CORRUPTION"
	CodePriceUnavailable      Code = "PRICE_UNAVAILABLE"
)
