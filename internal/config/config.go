package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// VenueCredentials holds the auth material for one venue session.
// Passphrase is only populated for venues that require it (OKX);
// Address is only populated for venues keyed by on-chain address
// rather than an API key (dYdX, Hyperliquid).
type VenueCredentials struct {
	APIKey     string `mapstructure:"api_key"`
	APISecret  string `mapstructure:"api_secret"`
	Passphrase string `mapstructure:"passphrase"`
	Address    string `mapstructure:"address"`
}

// RingConfig sizes the fixed-capacity buffers owned by one session.
type RingConfig struct {
	TradesCapacity  int `mapstructure:"trades_capacity"`
	CandlesCapacity int `mapstructure:"candles_capacity"`
}

// OMSConfig parameterizes the order-management ladder reconciliation.
type OMSConfig struct {
	TotalOrders int     `mapstructure:"total_orders"`
	Sensitivity float64 `mapstructure:"sensitivity"`
}

// SessionConfig is everything needed to stand up one venue session:
// which venue, which symbol, how deep to keep the book, how often to
// force a REST refresh, and the OMS ladder policy to reconcile against.
type SessionConfig struct {
	Venue             string           `mapstructure:"venue"`
	Symbol            string           `mapstructure:"symbol"`
	Credentials       VenueCredentials `mapstructure:"credentials"`
	OrderbookDepth    int              `mapstructure:"orderbook_depth"`
	Rings             RingConfig       `mapstructure:"rings"`
	RefreshIntervalS  int              `mapstructure:"refresh_interval_seconds"`
	RecvWindowMs      int              `mapstructure:"recv_window_ms"`
	OMS               OMSConfig        `mapstructure:"oms"`
	Testnet           bool             `mapstructure:"testnet"`
}

// MonitoringConfig controls the process-wide logger.
type MonitoringConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// Config is the top-level application configuration: one or more
// venue sessions plus process-wide monitoring settings.
type Config struct {
	Sessions   []SessionConfig  `mapstructure:"sessions"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

var (
	config *Config
	once   sync.Once
)

// LoadConfig loads configuration from configPath (a directory
// containing config.yaml) and environment variables prefixed
// PERPCORE_. Built-in defaults are applied last and only fill values
// that are still unset (zero) after that.
func LoadConfig(configPath string) (*Config, error) {
	var err error

	once.Do(func() {
		config = &Config{}
		setDefaults(config)

		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if configPath != "" {
			v.AddConfigPath(configPath)
		} else {
			v.AddConfigPath(".")
			v.AddConfigPath("./config")
			v.AddConfigPath("/etc/perpcore")
		}

		v.AutomaticEnv()
		v.SetEnvPrefix("PERPCORE")

		if readErr := v.ReadInConfig(); readErr != nil {
			if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
				err = fmt.Errorf("failed to read config file: %w", readErr)
				return
			}
		}

		if unmarshalErr := v.Unmarshal(config); unmarshalErr != nil {
			err = fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
			return
		}

		for i := range config.Sessions {
			applySessionDefaults(&config.Sessions[i])
		}
	})

	return config, err
}

// GetConfig returns the process-wide configuration, loading it with
// defaults on first access if LoadConfig was never called explicitly.
func GetConfig() *Config {
	if config == nil {
		if _, err := LoadConfig(""); err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	}
	return config
}

func setDefaults(c *Config) {
	c.Monitoring.LogLevel = "info"
}

// applySessionDefaults fills in the values every session needs but a
// config file may omit: book depth, ring sizes, refresh cadence, and
// the OMS sensitivity band.
func applySessionDefaults(s *SessionConfig) {
	if s.OrderbookDepth == 0 {
		s.OrderbookDepth = 50
	}
	if s.Rings.TradesCapacity == 0 {
		s.Rings.TradesCapacity = 1000
	}
	if s.Rings.CandlesCapacity == 0 {
		s.Rings.CandlesCapacity = 1000
	}
	if s.RefreshIntervalS == 0 {
		s.RefreshIntervalS = 600
	}
	if s.RecvWindowMs == 0 {
		s.RecvWindowMs = 1000
	}
	if s.OMS.Sensitivity == 0 {
		s.OMS.Sensitivity = 0.10
	}
}

// InitLogger builds the process-wide logger from the configured log
// level.
func InitLogger(cfg *Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	switch cfg.Monitoring.LogLevel {
	case "debug":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}
