package configloader

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// NetworkConfig holds the single target network and protocol deployment.
// One deployment serves exactly one network; there is no multi-chain
// abstraction.
type NetworkConfig struct {
	Name               string   `yaml:"name"`    // e.g., "base"
	ChainID            int64    `yaml:"chainID"` // e.g., 8453
	RPCURL             string   `yaml:"rpcURL"`
	FallbackRPCURLs    []string `yaml:"fallbackRpcUrls"`
	PoolAddress        string   `yaml:"poolAddress"`
	MulticallAddress   string   `yaml:"multicallAddress"`
	DEXScreenerChainID string   `yaml:"dexScreenerChainId"`
}

// RPCClientConfig holds rate limiting and timeouts for the RPC client.
type RPCClientConfig struct {
	ConnectTimeoutSeconds int `yaml:"connectTimeoutSeconds"`
	CallTimeoutSeconds    int `yaml:"callTimeoutSeconds"`
	RateLimit             int `yaml:"rateLimit"`
	BurstLimit            int `yaml:"burstLimit"`
	MaxCallsPerBatch      int `yaml:"maxCallsPerBatch"`
	MaxConcurrentBatches  int `yaml:"maxConcurrentBatches"`
}

// CacheConfig holds the block-keyed market state cache settings.
type CacheConfig struct {
	TTLSeconds             int `yaml:"ttlSeconds"`
	CleanupIntervalSeconds int `yaml:"cleanupIntervalSeconds"`
}

// DEXScreenerConfig holds the secondary price source used for oracle
// confidence scoring.
type DEXScreenerConfig struct {
	Enabled              bool   `yaml:"enabled"`
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	MaxTokensPerRequest  int    `yaml:"maxTokensPerRequest"`
	// AgreementTolerancePercent is the max oracle/market deviation that
	// still upgrades the confidence score.
	AgreementTolerancePercent float64 `yaml:"agreementTolerancePercent"`
}

// StressConfig holds the stress simulation policy.
type StressConfig struct {
	// ShockDebtPrices applies price shocks to debt-side pricing as well as
	// collateral. Off by default: standard liquidation-risk convention
	// shocks collateral pricing only.
	ShockDebtPrices bool `yaml:"shockDebtPrices"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Network     NetworkConfig     `yaml:"network"`
	RPCClient   RPCClientConfig   `yaml:"rpcClient"`
	Cache       CacheConfig       `yaml:"cache"`
	DEXScreener DEXScreenerConfig `yaml:"dexScreener"`
	Stress      StressConfig      `yaml:"stress"`
}

// Load reads the YAML configuration file from the given path and unmarshals
// it, applying defaults for anything not set.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.Network.RPCURL == "" {
		return nil, fmt.Errorf("network.rpcURL is required")
	}
	if cfg.Network.PoolAddress == "" {
		return nil, fmt.Errorf("network.poolAddress is required")
	}
	if cfg.Network.Name == "" {
		cfg.Network.Name = "base"
		logrus.Infof("network.name not set, defaulting to %s", cfg.Network.Name)
	}
	if cfg.Network.ChainID == 0 {
		cfg.Network.ChainID = 8453
		logrus.Infof("network.chainID not set, defaulting to %d", cfg.Network.ChainID)
	}

	if cfg.RPCClient.ConnectTimeoutSeconds <= 0 {
		cfg.RPCClient.ConnectTimeoutSeconds = 10
	}
	if cfg.RPCClient.CallTimeoutSeconds <= 0 {
		cfg.RPCClient.CallTimeoutSeconds = 20
	}
	if cfg.RPCClient.RateLimit <= 0 {
		cfg.RPCClient.RateLimit = 20
	}
	if cfg.RPCClient.BurstLimit <= 0 {
		cfg.RPCClient.BurstLimit = 40
	}
	if cfg.RPCClient.MaxCallsPerBatch <= 0 {
		cfg.RPCClient.MaxCallsPerBatch = 100
	}
	if cfg.RPCClient.MaxConcurrentBatches <= 0 {
		cfg.RPCClient.MaxConcurrentBatches = 4
	}

	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 12
	}
	if cfg.Cache.CleanupIntervalSeconds <= 0 {
		cfg.Cache.CleanupIntervalSeconds = 60
	}

	if cfg.DEXScreener.BaseURL == "" {
		cfg.DEXScreener.BaseURL = "https://api.dexscreener.com"
	}
	if cfg.DEXScreener.RequestTimeoutMillis <= 0 {
		cfg.DEXScreener.RequestTimeoutMillis = 10000
	}
	if cfg.DEXScreener.MaxTokensPerRequest <= 0 {
		cfg.DEXScreener.MaxTokensPerRequest = 30
	}
	if cfg.DEXScreener.AgreementTolerancePercent <= 0 {
		cfg.DEXScreener.AgreementTolerancePercent = 1.0
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}
