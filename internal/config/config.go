// Package config provides configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Deadline modes.
const (
	// DeadlineOffset sets the deadline to now plus the configured minutes.
	DeadlineOffset = "offset"
	// DeadlineLegacy multiplies the current epoch seconds by the minutes offset
	// in seconds. Kept for deployments that depend on the old deadline.
	DeadlineLegacy = "legacy"
)

// Router backends.
const (
	BackendOnchain = "onchain"
	BackendAPI     = "api"
)

// now is replaced in tests.
var now = time.Now

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Ethereum  EthereumConfig  `mapstructure:"ethereum"`
	Wallet    WalletConfig    `mapstructure:"wallet"`
	Uniswap   UniswapConfig   `mapstructure:"uniswap"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Swap      SwapConfig      `mapstructure:"swap"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// EthereumConfig holds Ethereum node configuration.
type EthereumConfig struct {
	HTTPURL  string `mapstructure:"http_url"`
	InfuraID string `mapstructure:"infura_id"`
	ChainID  uint64 `mapstructure:"chain_id"`
}

// RPCURL returns the explicit node URL, or the Infura endpoint for the chain.
func (c *EthereumConfig) RPCURL() (string, error) {
	if c.HTTPURL != "" {
		return c.HTTPURL, nil
	}
	network, err := c.infuraNetwork()
	if err != nil {
		return "", err
	}
	if c.InfuraID == "" {
		return "", errors.New("ethereum.infura_id or ethereum.http_url is required")
	}
	return fmt.Sprintf("https://%s.infura.io/v3/%s", network, c.InfuraID), nil
}

func (c *EthereumConfig) infuraNetwork() (string, error) {
	network, ok := infuraNetworks[c.ChainID]
	if !ok {
		return "", fmt.Errorf("no infura network for chain id %d, set ethereum.http_url", c.ChainID)
	}
	return network, nil
}

var infuraNetworks = map[uint64]string{
	1:        "mainnet",
	5:        "goerli",
	11155111: "sepolia",
	137:      "polygon-mainnet",
	42161:    "arbitrum-mainnet",
	10:       "optimism-mainnet",
	8453:     "base-mainnet",
}

// WalletConfig holds the signing key. An unset key loads as "".
type WalletConfig struct {
	PrivateKey string `mapstructure:"private_key"`
}

// UniswapConfig holds Uniswap V3 contract addresses.
type UniswapConfig struct {
	RouterAddress string `mapstructure:"router_address"`
	QuoterAddress string `mapstructure:"quoter_address"`
	FeeTiers      []int  `mapstructure:"fee_tiers"`
}

// RouterAddressHex returns the router address as common.Address. An unset
// router yields the zero address.
func (c *UniswapConfig) RouterAddressHex() common.Address {
	return common.HexToAddress(c.RouterAddress)
}

// QuoterAddressHex returns the quoter address as common.Address.
func (c *UniswapConfig) QuoterAddressHex() common.Address {
	return common.HexToAddress(c.QuoterAddress)
}

// RoutingConfig selects and configures the route source.
type RoutingConfig struct {
	Backend           string        `mapstructure:"backend"`
	APIURL            string        `mapstructure:"api_url"`
	APIKey            string        `mapstructure:"api_key"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// SwapConfig holds the per-run swap parameters.
type SwapConfig struct {
	TokenIn                  string        `mapstructure:"token_in"`
	TokenOut                 string        `mapstructure:"token_out"`
	DeadlineInMinutes        int64         `mapstructure:"deadline_in_minutes"`
	DeadlineMode             string        `mapstructure:"deadline_mode"`
	SlippageTolerance        int64         `mapstructure:"slippage_tolerance"`
	GasLimit                 uint64        `mapstructure:"gas_limit"`
	ApprovalConfirmations    uint64        `mapstructure:"approval_confirmations"`
	ConfirmationPollInterval time.Duration `mapstructure:"confirmation_poll_interval"`
	WaitForReceipt           bool          `mapstructure:"wait_for_receipt"`

	// Deadline is computed once by Load and fixed for the run.
	Deadline *big.Int `mapstructure:"-"`
	// TUIMode is set at runtime, not from config.
	TUIMode bool `mapstructure:"-"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("SWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.Swap.Deadline = ComputeDeadline(now(), cfg.Swap.DeadlineInMinutes, cfg.Swap.DeadlineMode)

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "SWAP_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "SWAP_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "SWAP_LOG_LEVEL", "LOG_LEVEL")
	v.BindEnv("app.log_format", "SWAP_LOG_FORMAT", "LOG_FORMAT")

	// Ethereum
	v.BindEnv("ethereum.http_url", "SWAP_ETH_HTTP_URL", "ETH_HTTP_URL")
	v.BindEnv("ethereum.infura_id", "SWAP_INFURA_ID", "INFURA_ID")
	v.BindEnv("ethereum.chain_id", "SWAP_CHAIN_ID", "CHAIN_ID")

	// Wallet
	v.BindEnv("wallet.private_key", "SWAP_WALLET_PRIVATE_KEY", "WALLET_PRIVATE_KEY")

	// Uniswap
	v.BindEnv("uniswap.router_address", "SWAP_ROUTER_ADDRESS")
	v.BindEnv("uniswap.quoter_address", "SWAP_QUOTER_ADDRESS", "QUOTER_ADDRESS")
	v.BindEnv("uniswap.fee_tiers", "SWAP_FEE_TIERS", "FEE_TIERS")

	// Routing
	v.BindEnv("routing.backend", "SWAP_ROUTER_BACKEND", "ROUTER_BACKEND")
	v.BindEnv("routing.api_url", "SWAP_ROUTING_API_URL", "ROUTING_API_URL")
	v.BindEnv("routing.api_key", "SWAP_ROUTING_API_KEY", "ROUTING_API_KEY")

	// Swap
	v.BindEnv("swap.token_in", "SWAP_TOKEN_IN", "TOKEN_IN")
	v.BindEnv("swap.token_out", "SWAP_TOKEN_OUT", "TOKEN_OUT")
	v.BindEnv("swap.deadline_in_minutes", "SWAP_DEADLINE_IN_MINUTES", "DEADLINE_IN_MINUTES")
	v.BindEnv("swap.deadline_mode", "SWAP_DEADLINE_MODE", "DEADLINE_MODE")
	v.BindEnv("swap.slippage_tolerance", "SWAP_SLIPPAGE_TOLERANCE", "SLIPPAGE_TOLERANCE")
	v.BindEnv("swap.gas_limit", "SWAP_GAS_LIMIT")
	v.BindEnv("swap.approval_confirmations", "SWAP_APPROVAL_CONFIRMATIONS", "APPROVAL_CONFIRMATIONS")
	v.BindEnv("swap.wait_for_receipt", "SWAP_WAIT_FOR_RECEIPT", "WAIT_FOR_RECEIPT")

	// Telemetry
	v.BindEnv("telemetry.enabled", "SWAP_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "SWAP_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.trace_provider", "SWAP_OTEL_TRACE_PROVIDER", "OTEL_TRACE_PROVIDER")
	v.BindEnv("telemetry.otlp_endpoint", "SWAP_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.pushgateway_url", "SWAP_PUSHGATEWAY_URL", "PUSHGATEWAY_URL")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "uniswap-swapper")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "text")

	// Ethereum defaults
	v.SetDefault("ethereum.chain_id", 1)

	// Wallet and router stay empty when unset.
	v.SetDefault("wallet.private_key", "")
	v.SetDefault("uniswap.router_address", "")

	// Uniswap V3 mainnet QuoterV2
	v.SetDefault("uniswap.quoter_address", "0x61fFE014bA17989E743c5F6cB21bF9697530B21e")
	v.SetDefault("uniswap.fee_tiers", []int{100, 500, 3000, 10000})

	// Routing defaults
	v.SetDefault("routing.backend", BackendOnchain)
	v.SetDefault("routing.api_url", "https://api.uniswap.org/v1")
	v.SetDefault("routing.requests_per_minute", 60)
	v.SetDefault("routing.timeout", "10s")

	// Swap defaults
	v.SetDefault("swap.token_in", "WETH")
	v.SetDefault("swap.token_out", "UNI")
	v.SetDefault("swap.deadline_in_minutes", 30)
	v.SetDefault("swap.deadline_mode", DeadlineOffset)
	v.SetDefault("swap.slippage_tolerance", 5)
	v.SetDefault("swap.gas_limit", 200000)
	v.SetDefault("swap.approval_confirmations", 3)
	v.SetDefault("swap.confirmation_poll_interval", "2s")
	v.SetDefault("swap.wait_for_receipt", true)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "uniswap-swapper")
	v.SetDefault("telemetry.trace_provider", "console")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Ethereum.ChainID == 0 {
		return errors.New("ethereum.chain_id is required")
	}
	// A missing infura id surfaces when the node is dialed.
	if c.Ethereum.HTTPURL == "" {
		if _, err := c.Ethereum.infuraNetwork(); err != nil {
			return err
		}
	}
	if c.Uniswap.RouterAddress != "" && !common.IsHexAddress(c.Uniswap.RouterAddress) {
		return fmt.Errorf("invalid uniswap.router_address: %s", c.Uniswap.RouterAddress)
	}
	if !common.IsHexAddress(c.Uniswap.QuoterAddress) {
		return fmt.Errorf("invalid uniswap.quoter_address: %s", c.Uniswap.QuoterAddress)
	}
	switch c.Routing.Backend {
	case BackendOnchain:
		if len(c.Uniswap.FeeTiers) == 0 {
			return errors.New("uniswap.fee_tiers cannot be empty")
		}
	case BackendAPI:
		if c.Routing.APIURL == "" {
			return errors.New("routing.api_url is required for the api backend")
		}
	default:
		return fmt.Errorf("unknown routing.backend: %q", c.Routing.Backend)
	}
	if strings.EqualFold(c.Swap.TokenIn, c.Swap.TokenOut) {
		return fmt.Errorf("swap.token_in and swap.token_out must differ, both are %s", c.Swap.TokenIn)
	}
	if c.Swap.DeadlineInMinutes <= 0 {
		return fmt.Errorf("swap.deadline_in_minutes must be positive, got %d", c.Swap.DeadlineInMinutes)
	}
	if c.Swap.DeadlineMode != DeadlineOffset && c.Swap.DeadlineMode != DeadlineLegacy {
		return fmt.Errorf("unknown swap.deadline_mode: %q", c.Swap.DeadlineMode)
	}
	if c.Swap.SlippageTolerance < 0 || c.Swap.SlippageTolerance > 100 {
		return fmt.Errorf("swap.slippage_tolerance must be within [0, 100], got %d", c.Swap.SlippageTolerance)
	}
	if c.Swap.GasLimit == 0 {
		return errors.New("swap.gas_limit must be positive")
	}
	if c.Swap.ApprovalConfirmations == 0 {
		return errors.New("swap.approval_confirmations must be at least 1")
	}
	return nil
}

// ComputeDeadline derives the swap deadline in Unix seconds.
func ComputeDeadline(t time.Time, minutes int64, mode string) *big.Int {
	offset := minutes * 60
	if mode == DeadlineLegacy {
		seconds := decimal.New(t.UnixMilli(), -3)
		return seconds.Mul(decimal.NewFromInt(offset)).Floor().BigInt()
	}
	return big.NewInt(t.Unix() + offset)
}
