// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Gleec      GleecConfig      `mapstructure:"gleec"`
	DexHunter  DexHunterConfig  `mapstructure:"dexhunter"`
	Blockfrost BlockfrostConfig `mapstructure:"blockfrost"`
	Cardano    CardanoConfig    `mapstructure:"cardano"`
	Trading    TradingConfig    `mapstructure:"trading"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	StateFile   string `mapstructure:"state_file"`
	PidFile     string `mapstructure:"pid_file"`
}

// GleecConfig holds Gleec exchange API configuration.
type GleecConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	WebSocketURL      string        `mapstructure:"websocket_url"`
	APIKey            string        `mapstructure:"api_key"`
	SecretKey         string        `mapstructure:"secret_key"`
	AuthWindowMs      int           `mapstructure:"auth_window_ms"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	TickerStale       time.Duration `mapstructure:"ticker_stale"`
}

// DexHunterConfig holds DexHunter aggregator configuration.
type DexHunterConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	SlippagePct float64 `mapstructure:"slippage_pct"`
}

// BlockfrostConfig holds Blockfrost indexer configuration.
type BlockfrostConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	ProjectID string `mapstructure:"project_id"`
}

// CardanoConfig holds wallet and network configuration.
type CardanoConfig struct {
	Address            string `mapstructure:"address"`
	NetworkID          uint8  `mapstructure:"network_id"` // 1 mainnet, 0 testnet
	PaymentSigningKey  string `mapstructure:"payment_signing_key"`  // pycardano-style JSON envelope
	StakeSigningKey    string `mapstructure:"stake_signing_key"`    // optional
	MinUTxOLovelace    int64  `mapstructure:"min_utxo_lovelace"`    // attached to native-asset outputs
}

// TradingConfig holds the trade-cycle parameters.
type TradingConfig struct {
	// Venue symbols. PairSymbol quotes the token in USDT on the CEX;
	// NativeSymbol quotes the ledger's native coin in USDT.
	PairSymbol   string `mapstructure:"pair_symbol"`
	NativeSymbol string `mapstructure:"native_symbol"`
	BaseCurrency string `mapstructure:"base_currency"`

	// Token identity on the ledger.
	TokenPolicyID  string `mapstructure:"token_policy_id"`
	TokenAssetName string `mapstructure:"token_asset_name"` // hex-encoded

	Quantity              float64       `mapstructure:"quantity"`
	ThresholdPct          float64       `mapstructure:"threshold_pct"`
	TickInterval          time.Duration `mapstructure:"tick_interval"`
	OrderFillTimeout      time.Duration `mapstructure:"order_fill_timeout"`
	WithdrawalTimeout     time.Duration `mapstructure:"withdrawal_timeout"`
	DepositTimeout        time.Duration `mapstructure:"deposit_timeout"`
	ConfirmTimeout        time.Duration `mapstructure:"confirm_timeout"`
	RequiredConfirmations int           `mapstructure:"required_confirmations"`
	StalenessWindow       time.Duration `mapstructure:"staleness_window"`
	ForceClearOnStart     bool          `mapstructure:"force_clear_on_start"`
}

// QuantityDecimal returns the fixed trade quantity as a decimal.
func (c *TradingConfig) QuantityDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Quantity)
}

// ThresholdDecimal returns the spread threshold (percent) as a decimal.
func (c *TradingConfig) ThresholdDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.ThresholdPct)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
	HealthPort     int    `mapstructure:"health_port"`
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

	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine: env vars plus defaults.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")
	v.BindEnv("app.state_file", "ARB_STATE_FILE")

	v.BindEnv("gleec.api_key", "ARB_GLEEC_API_KEY", "GLEEC_API_KEY")
	v.BindEnv("gleec.secret_key", "ARB_GLEEC_SECRET_KEY", "GLEEC_SECRET_KEY")
	v.BindEnv("gleec.base_url", "ARB_GLEEC_BASE_URL")

	v.BindEnv("dexhunter.base_url", "ARB_DEXHUNTER_BASE_URL", "DEXHUNTER_API_BASE_URL")

	v.BindEnv("blockfrost.project_id", "ARB_BLOCKFROST_PROJECT_ID", "BLOCKFROST_PROJECT_ID")
	v.BindEnv("blockfrost.base_url", "ARB_BLOCKFROST_BASE_URL")

	v.BindEnv("cardano.address", "ARB_CARDANO_ADDRESS", "CARDANO_ADDRESS")
	v.BindEnv("cardano.network_id", "ARB_CARDANO_NETWORK_ID", "NETWORK_ID")
	v.BindEnv("cardano.payment_signing_key", "ARB_SIGNING_KEY_JSON", "SIGNING_KEY_JSON")
	v.BindEnv("cardano.stake_signing_key", "ARB_STAKE_SIGNING_KEY_JSON", "STAKE_SIGNING_KEY_JSON")

	v.BindEnv("trading.quantity", "ARB_TRADE_QUANTITY", "TRADE_QUANTITY")
	v.BindEnv("trading.threshold_pct", "ARB_ARBITRAGE_THRESHOLD", "ARBITRAGE_THRESHOLD")
	v.BindEnv("trading.force_clear_on_start", "ARB_FORCE_CLEAR_ON_START")

	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "arbbot")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.state_file", "bot_state.json")
	v.SetDefault("app.pid_file", "run/arbbot.pid")

	v.SetDefault("gleec.base_url", "https://api.exchange.gleec.com/api/3")
	v.SetDefault("gleec.websocket_url", "wss://api.exchange.gleec.com/api/3/ws/public")
	v.SetDefault("gleec.auth_window_ms", 10000)
	v.SetDefault("gleec.requests_per_minute", 100)
	v.SetDefault("gleec.ticker_stale", "10s")

	v.SetDefault("dexhunter.base_url", "https://api-us.dexhunterv3.app")
	v.SetDefault("dexhunter.slippage_pct", 2.0)

	v.SetDefault("blockfrost.base_url", "https://cardano-mainnet.blockfrost.io/api/v0")

	v.SetDefault("cardano.network_id", 1)
	v.SetDefault("cardano.min_utxo_lovelace", 1_500_000)

	v.SetDefault("trading.pair_symbol", "SHARDSUSDT")
	v.SetDefault("trading.native_symbol", "ADAUSDT")
	v.SetDefault("trading.base_currency", "SHARDS")
	v.SetDefault("trading.token_policy_id", "ea153b5d4864af15a1079a94a0e2486d6376fa28aafad272d15b243a")
	v.SetDefault("trading.token_asset_name", "0014df10536861726473")
	v.SetDefault("trading.quantity", 500)
	v.SetDefault("trading.threshold_pct", 1.0)
	v.SetDefault("trading.tick_interval", "60s")
	v.SetDefault("trading.order_fill_timeout", "10m")
	v.SetDefault("trading.withdrawal_timeout", "1h")
	v.SetDefault("trading.deposit_timeout", "1h")
	v.SetDefault("trading.confirm_timeout", "5m")
	v.SetDefault("trading.required_confirmations", 2)
	v.SetDefault("trading.staleness_window", "1h")
	v.SetDefault("trading.force_clear_on_start", false)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arbbot")
	v.SetDefault("telemetry.prometheus_port", 9090)
	v.SetDefault("telemetry.health_port", 8081)
}

// Validate validates the configuration. Missing credentials are fatal at
// startup, before any network activity.
func (c *Config) Validate() error {
	if c.Gleec.APIKey == "" {
		return fmt.Errorf("gleec.api_key is required")
	}
	if c.Gleec.SecretKey == "" {
		return fmt.Errorf("gleec.secret_key is required")
	}
	if c.Blockfrost.ProjectID == "" {
		return fmt.Errorf("blockfrost.project_id is required")
	}
	if c.Cardano.Address == "" {
		return fmt.Errorf("cardano.address is required")
	}
	if c.Cardano.PaymentSigningKey == "" {
		return fmt.Errorf("cardano.payment_signing_key is required")
	}
	if c.Cardano.NetworkID > 1 {
		return fmt.Errorf("cardano.network_id must be 0 or 1, got %d", c.Cardano.NetworkID)
	}
	if c.Trading.Quantity <= 0 {
		return fmt.Errorf("trading.quantity must be positive")
	}
	if c.Trading.ThresholdPct <= 0 {
		return fmt.Errorf("trading.threshold_pct must be positive")
	}
	if c.Trading.TokenPolicyID == "" {
		return fmt.Errorf("trading.token_policy_id is required")
	}
	return nil
}
