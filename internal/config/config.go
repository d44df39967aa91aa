package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Trading modes. The mode only selects default thresholds for fields the
// operator left unset; it is never enforced structurally at decision time.
const (
	ModeConservative = "conservative"
	ModeBalanced     = "balanced"
	ModeAggressive   = "aggressive"
	ModeCustom       = "custom"
)

// Market data source kinds for an agent.
const (
	SourceRest   = "rest"
	SourceStream = "stream"
	SourceSim    = "sim"
)

// Config holds all configuration for the application.
type Config struct {
	Binance  Binance       `mapstructure:"binance"`
	Agents   []AgentConfig `mapstructure:"agents"`
	Logger   Logger        `mapstructure:"logger"`
	Server   Server        `mapstructure:"server"`
	Database Database      `mapstructure:"database"`
}

// Binance holds the configuration for the Binance API.
type Binance struct {
	ApiKey         string  `mapstructure:"apiKey"`
	SecretKey      string  `mapstructure:"secretKey"`
	Testnet        bool    `mapstructure:"testnet"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Server holds the configuration for the status API server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AgentConfig holds the immutable per-agent trading parameters. It is read
// once at construction and never mutated afterwards.
type AgentConfig struct {
	ID     string `mapstructure:"id"`
	Symbol string `mapstructure:"symbol"`

	InitialCapital  float64 `mapstructure:"initial_capital"`
	MaxPositionSize float64 `mapstructure:"max_position_size"`
	// RiskTolerance is the percentage of equity risked per trade, e.g. 2.0.
	RiskTolerance      float64 `mapstructure:"risk_tolerance"`
	Mode               string  `mapstructure:"mode"`
	MinProfitThreshold float64 `mapstructure:"min_profit_threshold"`
	MaxLossThreshold   float64 `mapstructure:"max_loss_threshold"`
	CycleInterval      int     `mapstructure:"cycle_interval"` // seconds

	UseModelPredictions  bool `mapstructure:"use_model_predictions"`
	UseTechnicalAnalysis bool `mapstructure:"use_technical_analysis"`
	// UseSentiment is accepted for forward compatibility; no sentiment
	// source is wired into the aggregator yet.
	UseSentiment bool `mapstructure:"use_sentiment"`

	// ModelPath points at an ONNX checkpoint; empty disables the model source.
	ModelPath string `mapstructure:"model_path"`

	DataSource    string `mapstructure:"data_source"`
	KlineInterval string `mapstructure:"kline_interval"`
	HistoryLimit  int    `mapstructure:"history_limit"`
	DryRun        bool   `mapstructure:"dry_run"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("binance.rate_limit", 20)      // requests per second
	viper.SetDefault("binance.rate_limit_burst", 5) // burst size
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("database.dsn", "trading-agent.db")
	viper.SetDefault("server.port", 8080)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	for i := range config.Agents {
		config.Agents[i].applyModeDefaults()
	}
	err = config.Validate()
	return
}

// applyModeDefaults fills threshold fields the operator left at zero with the
// defaults implied by the trading mode. Explicit values always win.
func (a *AgentConfig) applyModeDefaults() {
	if a.Mode == "" {
		a.Mode = ModeBalanced
	}
	if a.CycleInterval == 0 {
		a.CycleInterval = 60
	}
	if a.DataSource == "" {
		a.DataSource = SourceRest
	}
	if a.KlineInterval == "" {
		a.KlineInterval = "1m"
	}
	if a.HistoryLimit == 0 {
		a.HistoryLimit = 100
	}

	type preset struct {
		minProfit float64
		maxLoss   float64
		riskTol   float64
	}
	presets := map[string]preset{
		ModeConservative: {minProfit: 0.02, maxLoss: 0.02, riskTol: 1.0},
		ModeBalanced:     {minProfit: 0.03, maxLoss: 0.05, riskTol: 2.0},
		ModeAggressive:   {minProfit: 0.05, maxLoss: 0.08, riskTol: 5.0},
	}
	p, ok := presets[a.Mode]
	if !ok {
		// Custom (or unknown) mode carries no threshold presets; validation
		// catches anything still missing.
		return
	}
	if a.MinProfitThreshold == 0 {
		a.MinProfitThreshold = p.minProfit
	}
	if a.MaxLossThreshold == 0 {
		a.MaxLossThreshold = p.maxLoss
	}
	if a.RiskTolerance == 0 {
		a.RiskTolerance = p.riskTol
	}
}

// Validate rejects configurations the agents cannot safely run with.
func (c *Config) Validate() error {
	if len(c.Agents) == 0 {
		return fmt.Errorf("config: at least one agent must be configured")
	}
	seen := make(map[string]struct{}, len(c.Agents))
	for _, a := range c.Agents {
		if a.ID == "" {
			return fmt.Errorf("config: agent id must not be empty")
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("config: duplicate agent id %q", a.ID)
		}
		seen[a.ID] = struct{}{}
		if a.Symbol == "" {
			return fmt.Errorf("config: agent %s: symbol must not be empty", a.ID)
		}
		if a.InitialCapital <= 0 {
			return fmt.Errorf("config: agent %s: initial_capital must be positive", a.ID)
		}
		if a.MaxPositionSize <= 0 {
			return fmt.Errorf("config: agent %s: max_position_size must be positive", a.ID)
		}
		if a.RiskTolerance <= 0 || a.RiskTolerance > 100 {
			return fmt.Errorf("config: agent %s: risk_tolerance must be in (0, 100]", a.ID)
		}
		if a.MinProfitThreshold <= 0 || a.MaxLossThreshold <= 0 {
			return fmt.Errorf("config: agent %s: profit/loss thresholds must be positive", a.ID)
		}
		if a.CycleInterval < 1 {
			return fmt.Errorf("config: agent %s: cycle_interval must be at least 1 second", a.ID)
		}
		switch a.DataSource {
		case SourceRest, SourceStream, SourceSim:
		default:
			return fmt.Errorf("config: agent %s: unknown data_source %q", a.ID, a.DataSource)
		}
	}
	return nil
}
