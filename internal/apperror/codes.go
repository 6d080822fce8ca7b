package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Swap-specific error codes
const (
	// Input
	CodeMissingAmount Code = "MISSING_AMOUNT"
	CodeInvalidAmount Code = "INVALID_AMOUNT"
	CodeUnknownToken  Code = "UNKNOWN_TOKEN"

	// Funds
	CodeInsufficientTokenBalance Code = "INSUFFICIENT_TOKEN_BALANCE"
	CodeInsufficientGasBalance   Code = "INSUFFICIENT_GAS_BALANCE"

	// Blockchain/Ethereum errors
	CodeEthereumConnectionFailed Code = "ETHEREUM_CONNECTION_FAILED"
	CodeEthereumRPCError         Code = "ETHEREUM_RPC_ERROR"
	CodeChainIDMismatch          Code = "CHAIN_ID_MISMATCH"
	CodeInvalidPrivateKey        Code = "INVALID_PRIVATE_KEY"
	CodeTransactionFailed        Code = "TRANSACTION_FAILED"
	CodeTransactionReverted      Code = "TRANSACTION_REVERTED"
	CodeGasEstimationFailed      Code = "GAS_ESTIMATION_FAILED"
	CodeContractCallFailed       Code = "CONTRACT_CALL_FAILED"

	// Routing
	CodeNoRoute            Code = "NO_ROUTE"
	CodeInvalidRoute       Code = "INVALID_ROUTE"
	CodeRoutingAPIError    Code = "ROUTING_API_ERROR"
	CodeUnsupportedTrade   Code = "UNSUPPORTED_TRADE_TYPE"
	CodeUniswapQuoteFailed Code = "UNISWAP_QUOTE_FAILED"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
