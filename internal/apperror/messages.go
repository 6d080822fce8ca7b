package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Input
	CodeMissingAmount: "Swap amount is missing",
	CodeInvalidAmount: "Swap amount is not a valid decimal",
	CodeUnknownToken:  "Token is not in the registry",

	// Funds
	CodeInsufficientTokenBalance: "Not enough token balance for the swap",
	CodeInsufficientGasBalance:   "Not enough native balance to cover gas",

	// Blockchain/Ethereum errors
	CodeEthereumConnectionFailed: "Failed to connect to Ethereum node",
	CodeEthereumRPCError:         "Ethereum RPC call failed",
	CodeChainIDMismatch:          "Node chain id does not match configuration",
	CodeInvalidPrivateKey:        "Wallet private key is invalid",
	CodeTransactionFailed:        "Failed to submit transaction",
	CodeTransactionReverted:      "Transaction reverted on chain",
	CodeGasEstimationFailed:      "Gas estimation failed",
	CodeContractCallFailed:       "Smart contract call failed",

	// Routing
	CodeNoRoute:            "No route found for the requested swap",
	CodeInvalidRoute:       "Route is missing required parameters",
	CodeRoutingAPIError:    "Routing API request failed",
	CodeUnsupportedTrade:   "Trade type is not supported",
	CodeUniswapQuoteFailed: "Failed to get Uniswap quote",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
