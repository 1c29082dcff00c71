package configloader

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	networkdefinition "cat20_wallet/internal/infrastructure/network/definition"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "config/config.yml"

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port                   string   `yaml:"port" envconfig:"SERVER_PORT"`
	ReadTimeoutSeconds     int      `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds    int      `yaml:"writeTimeoutSeconds"`
	ShutdownTimeoutSeconds int      `yaml:"shutdownTimeoutSeconds"`
	CORSAllowedOrigins     []string `yaml:"corsAllowedOrigins" envconfig:"CORS_ALLOWED_ORIGINS"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LOG_LEVEL"` // "debug", "info", "warn", "error"
}

// TrackerConfig holds the token tracker API configuration.
type TrackerConfig struct {
	BaseURL               string   `yaml:"baseURL" envconfig:"TRACKER_URL"`
	TokenID               string   `yaml:"tokenId" envconfig:"TOKEN_ID"`
	TrackedTokenIDs       []string `yaml:"trackedTokenIds" envconfig:"TRACKED_TOKEN_IDS"`
	TokenListDir          string   `yaml:"tokenListDir" envconfig:"TOKEN_LIST_DIR"` // holds <network>.json token lists
	UtxoLimit             int      `yaml:"utxoLimit"`
	RequestTimeoutMillis  int64    `yaml:"requestTimeoutMillis"`
	RateLimit             float64  `yaml:"rateLimit"` // requests per second
	Burst                 int      `yaml:"burst"`
	MaxConcurrentRequests int      `yaml:"maxConcurrentRequests"`
}

// NetworkConfig selects the chain.
type NetworkConfig struct {
	Identifier string   `yaml:"identifier" envconfig:"NETWORK"`
	Enabled    []string `yaml:"enabled"`
}

// WalletConfig holds the wallet bridge configuration.
type WalletConfig struct {
	BridgeURL            string `yaml:"bridgeURL" envconfig:"WALLET_BRIDGE_URL"`
	PollIntervalMillis   int64  `yaml:"pollIntervalMillis"`
	WatchIntervalMillis  int64  `yaml:"watchIntervalMillis"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// SDKConfig holds the protocol SDK sidecar configuration.
type SDKConfig struct {
	BridgeURL            string `yaml:"bridgeURL" envconfig:"SDK_BRIDGE_URL"`
	FeeRate              int64  `yaml:"feeRate" envconfig:"FEE_RATE"` // sat/vB
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// CovenantConfig holds the inputs of local token address derivation.
type CovenantConfig struct {
	IssuerPubKey string `yaml:"issuerPubKey"`
	ArtifactsDir string `yaml:"artifactsDir" envconfig:"COVENANT_ARTIFACTS_DIR"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Tracker  TrackerConfig  `yaml:"tracker"`
	Network  NetworkConfig  `yaml:"network"`
	Wallet   WalletConfig   `yaml:"wallet"`
	SDK      SDKConfig      `yaml:"sdk"`
	Covenant CovenantConfig `yaml:"covenant"`
}

// PathFromEnv returns CONFIG_PATH or DefaultPath.
func PathFromEnv() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the YAML configuration file, overlays environment variables, applies defaults
// and validates the result. A missing file is allowed when the environment supplies the
// required values.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logrus.Warnf("Config file %s not found, using environment and defaults only", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
		logrus.Infof("Server.Port not set, defaulting to %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 90
	}
	if cfg.Server.ShutdownTimeoutSeconds <= 0 {
		cfg.Server.ShutdownTimeoutSeconds = 10
	}
	if len(cfg.Server.CORSAllowedOrigins) == 0 {
		cfg.Server.CORSAllowedOrigins = []string{"*"}
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Tracker.UtxoLimit <= 0 {
		cfg.Tracker.UtxoLimit = 4
		logrus.Infof("Tracker.UtxoLimit not set, defaulting to %d", cfg.Tracker.UtxoLimit)
	}
	if cfg.Tracker.RequestTimeoutMillis <= 0 {
		cfg.Tracker.RequestTimeoutMillis = 10000
		logrus.Infof("Tracker.RequestTimeoutMillis not set, defaulting to %d ms", cfg.Tracker.RequestTimeoutMillis)
	}
	if cfg.Tracker.Burst <= 0 {
		cfg.Tracker.Burst = 5
	}
	if cfg.Tracker.MaxConcurrentRequests <= 0 {
		cfg.Tracker.MaxConcurrentRequests = 4
	}

	if cfg.Network.Identifier == "" {
		cfg.Network.Identifier = "fractal-mainnet"
		logrus.Infof("Network.Identifier not set, defaulting to %s", cfg.Network.Identifier)
	}

	if cfg.Wallet.PollIntervalMillis <= 0 {
		cfg.Wallet.PollIntervalMillis = 5000
		logrus.Infof("Wallet.PollIntervalMillis not set, defaulting to %d ms", cfg.Wallet.PollIntervalMillis)
	}
	if cfg.Wallet.WatchIntervalMillis <= 0 {
		cfg.Wallet.WatchIntervalMillis = 2000
	}
	if cfg.Wallet.RequestTimeoutMillis <= 0 {
		cfg.Wallet.RequestTimeoutMillis = 10000
	}

	if cfg.SDK.FeeRate <= 0 {
		cfg.SDK.FeeRate = 1
		logrus.Infof("SDK.FeeRate not set, defaulting to %d sat/vB", cfg.SDK.FeeRate)
	}
	if cfg.SDK.RequestTimeoutMillis <= 0 {
		cfg.SDK.RequestTimeoutMillis = 120000
	}
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	var problems []string
	if c.Tracker.BaseURL == "" {
		problems = append(problems, "tracker.baseURL (TRACKER_URL) is required")
	}
	if c.Tracker.TokenID == "" {
		problems = append(problems, "tracker.tokenId (TOKEN_ID) is required")
	}
	if _, ok := networkdefinition.Lookup(c.Network.Identifier); !ok {
		problems = append(problems, fmt.Sprintf("network.identifier %q is not a supported network", c.Network.Identifier))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// TokenIDs returns the configured token first, then the other tracked tokens and extra
// without duplicates.
func (c *Config) TokenIDs(extra ...string) []string {
	ids := []string{c.Tracker.TokenID}
	seen := map[string]struct{}{c.Tracker.TokenID: {}}
	for _, id := range append(append([]string(nil), c.Tracker.TrackedTokenIDs...), extra...) {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// TrackerTimeout returns the tracker request timeout.
func (c *Config) TrackerTimeout() time.Duration {
	return time.Duration(c.Tracker.RequestTimeoutMillis) * time.Millisecond
}

// PollInterval returns the wallet session refresh interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Wallet.PollIntervalMillis) * time.Millisecond
}

// WatchInterval returns the wallet bridge account watch interval.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Wallet.WatchIntervalMillis) * time.Millisecond
}

// WalletTimeout returns the wallet bridge call timeout.
func (c *Config) WalletTimeout() time.Duration {
	return time.Duration(c.Wallet.RequestTimeoutMillis) * time.Millisecond
}

// SDKTimeout returns the protocol SDK sidecar timeout.
func (c *Config) SDKTimeout() time.Duration {
	return time.Duration(c.SDK.RequestTimeoutMillis) * time.Millisecond
}
