package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"

	"github.com/spyro-labs/spyro-relayer/chains/ethereum"
	"github.com/spyro-labs/spyro-relayer/core"
	"github.com/spyro-labs/spyro-relayer/wormhole"
)

const (
	envPrefix = "SRLY"

	// DefaultConfigPath is relative to the home directory.
	DefaultConfigPath = "config/config.yaml"
)

type Config struct {
	Source    ethereum.SourceConfig `json:"source" yaml:"source" mapstructure:"source"`
	Target    ethereum.TargetConfig `json:"target" yaml:"target" mapstructure:"target"`
	Wormhole  WormholeConfig        `json:"wormhole" yaml:"wormhole" mapstructure:"wormhole"`
	Retry     RetryConfig           `json:"retry" yaml:"retry" mapstructure:"retry"`
	Service   ServiceConfig         `json:"service" yaml:"service" mapstructure:"service"`
	API       APIConfig             `json:"api" yaml:"api" mapstructure:"api"`
	Reporting ReportingConfig       `json:"reporting" yaml:"reporting" mapstructure:"reporting"`

	// ConfigPath is where the config was loaded from
	ConfigPath string `json:"-" yaml:"-" mapstructure:"-"`
}

type WormholeConfig struct {
	GuardianRPCs     []string      `json:"guardian_rpcs" yaml:"guardian_rpcs" mapstructure:"guardian_rpcs"`
	GuardianSet      []string      `json:"guardian_set" yaml:"guardian_set" mapstructure:"guardian_set"`
	GuardianSetIndex uint32        `json:"guardian_set_index" yaml:"guardian_set_index" mapstructure:"guardian_set_index"`
	FetchAttempts    uint          `json:"fetch_attempts" yaml:"fetch_attempts" mapstructure:"fetch_attempts"`
	FetchInterval    time.Duration `json:"fetch_interval" yaml:"fetch_interval" mapstructure:"fetch_interval"`
	FetchTimeout     time.Duration `json:"fetch_timeout" yaml:"fetch_timeout" mapstructure:"fetch_timeout"`
	// RateLimit caps guardian API requests per second, 0 for no limit
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`
}

// RetryConfig governs retries of transient submission failures. Attempts and Backoff
// have no defaults.
type RetryConfig struct {
	Attempts   uint          `json:"attempts" yaml:"attempts" mapstructure:"attempts"`
	Backoff    time.Duration `json:"backoff" yaml:"backoff" mapstructure:"backoff"`
	MaxBackoff time.Duration `json:"max_backoff" yaml:"max_backoff" mapstructure:"max_backoff"`
}

// ServiceConfig governs restarts of a broken source subscription.
type ServiceConfig struct {
	RestartAttempts   uint          `json:"restart_attempts" yaml:"restart_attempts" mapstructure:"restart_attempts"`
	RestartBackoff    time.Duration `json:"restart_backoff" yaml:"restart_backoff" mapstructure:"restart_backoff"`
	RestartMaxBackoff time.Duration `json:"restart_max_backoff" yaml:"restart_max_backoff" mapstructure:"restart_max_backoff"`
}

type APIConfig struct {
	// Addr is the listen address of the results API; empty disables it
	Addr      string `json:"addr" yaml:"addr" mapstructure:"addr"`
	CacheSize int    `json:"cache_size" yaml:"cache_size" mapstructure:"cache_size"`
}

type ReportingConfig struct {
	// PostgresDSN enables the results ledger when set
	PostgresDSN string `json:"postgres_dsn" yaml:"postgres_dsn" mapstructure:"postgres_dsn"`
}

// legacyEnv maps keys to the variable names used by earlier relayer deployments.
var legacyEnv = map[string]string{
	"source.rpc_url":           "SOURCE_RPC",
	"source.chain_id":          "SOURCE_CHAIN_ID",
	"source.emitter":           "SOURCE_BRIDGE_ADDR",
	"target.rpc_url":           "TARGET_RPC",
	"target.receiver_contract": "TARGET_BRIDGE_ADDR",
	"target.private_key":       "RELAYER_PRIVATE_KEY",
	"wormhole.guardian_rpcs":   "WORMHOLE_RPC",
}

// LoadDotEnv loads a dotenv file into the process environment. Variables that are
// already set win, and a missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return core.ConfigurationError(errors.Wrapf(err, "failed to load %s", path))
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	walkDefaults("", defaults, func(key string, value any) {
		v.SetDefault(key, value)
		envs := []string{envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
		if legacy, ok := legacyEnv[key]; ok {
			envs = append(envs, legacy)
		}
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			panic(err)
		}
	})
	return v
}

// Load reads the config file at path and applies environment overrides. A missing
// file leaves the defaults and the environment as the only sources.
func Load(path string) (*Config, error) {
	v := newViper()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, core.ConfigurationError(errors.Wrapf(err, "failed to read %s", path))
		}
	} else if !os.IsNotExist(err) {
		return nil, core.ConfigurationError(errors.Wrapf(err, "failed to stat %s", path))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, core.ConfigurationError(errors.Wrap(err, "failed to decode config"))
	}
	cfg.ConfigPath = path
	return &cfg, nil
}

// DefaultConfig returns the config used when neither a file nor the environment set anything.
func DefaultConfig() Config {
	var cfg Config
	if err := newViper().Unmarshal(&cfg); err != nil {
		panic(err)
	}
	return cfg
}

func ConfigPath(home string) string {
	return filepath.Join(home, DefaultConfigPath)
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Source.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Target.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Wormhole.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Retry.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.API.CacheSize < 0 {
		errs = append(errs, errors.New("api.cache_size must not be negative"))
	}
	if len(errs) > 0 {
		return core.ConfigurationError(errors.Join(errs...))
	}
	return nil
}

func (c WormholeConfig) Validate() error {
	var errs []error
	if len(c.GuardianRPCs) == 0 {
		errs = append(errs, errors.New("wormhole.guardian_rpcs is required"))
	}
	if len(c.GuardianSet) == 0 {
		errs = append(errs, errors.New("wormhole.guardian_set is required"))
	}
	for _, k := range c.GuardianSet {
		if !common.IsHexAddress(k) {
			errs = append(errs, errors.Newf("wormhole.guardian_set has an invalid key: %q", k))
		}
	}
	if c.FetchAttempts == 0 {
		errs = append(errs, errors.New("wormhole.fetch_attempts must be positive"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("wormhole.rate_limit must not be negative"))
	}
	if len(errs) > 0 {
		return core.ConfigurationError(errors.Join(errs...))
	}
	return nil
}

func (c WormholeConfig) GuardianClientConfig() wormhole.GuardianClientConfig {
	return wormhole.GuardianClientConfig{
		Hosts:     c.GuardianRPCs,
		Attempts:  c.FetchAttempts,
		Interval:  c.FetchInterval,
		RateLimit: c.RateLimit,
		Timeout:   c.FetchTimeout,
	}
}

func (c WormholeConfig) GuardianSetKeys() wormhole.GuardianSet {
	keys := make([]common.Address, len(c.GuardianSet))
	for i, k := range c.GuardianSet {
		keys[i] = common.HexToAddress(k)
	}
	return wormhole.GuardianSet{Index: c.GuardianSetIndex, Keys: keys}
}

func (c RetryConfig) Validate() error {
	var errs []error
	if c.Attempts == 0 {
		errs = append(errs, errors.New("retry.attempts is required"))
	}
	if c.Backoff <= 0 {
		errs = append(errs, errors.New("retry.backoff is required and must be positive"))
	}
	if c.MaxBackoff != 0 && c.MaxBackoff < c.Backoff {
		errs = append(errs, errors.New("retry.max_backoff must not be less than retry.backoff"))
	}
	if len(errs) > 0 {
		return core.ConfigurationError(errors.Join(errs...))
	}
	return nil
}

func (c RetryConfig) Policy() core.RetryPolicy {
	return core.RetryPolicy{Attempts: c.Attempts, Backoff: c.Backoff, MaxBackoff: c.MaxBackoff}
}

func (c ServiceConfig) RestartPolicy() core.RetryPolicy {
	return core.RetryPolicy{Attempts: c.RestartAttempts, Backoff: c.RestartBackoff, MaxBackoff: c.RestartMaxBackoff}
}

// TelemetryResource identifies this relayer instance in exported telemetry: the source
// binding it watches and the receiver it delivers to.
func (c Config) TelemetryResource() []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if c.Source.ChainID != 0 {
		attrs = append(attrs, core.AttributeKeyEmitterChain.String(c.Source.WormholeChainID().String()))
	}
	if common.IsHexAddress(c.Source.Emitter) {
		emitter := core.EmitterAddressFromEVM(common.HexToAddress(c.Source.Emitter))
		attrs = append(attrs, core.AttributeKeyEmitterAddress.String(emitter.String()))
	}
	if common.IsHexAddress(c.Source.CoreContract) {
		attrs = append(attrs, attribute.String("core_contract", common.HexToAddress(c.Source.CoreContract).Hex()))
	}
	if common.IsHexAddress(c.Target.ReceiverContract) {
		attrs = append(attrs, attribute.String("receiver_contract", common.HexToAddress(c.Target.ReceiverContract).Hex()))
	}
	return core.AttributeGroup("relayer", attrs...)
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Target.PrivateKey != "" {
		c.Target.PrivateKey = "<redacted>"
	}
	if c.Reporting.PostgresDSN != "" {
		c.Reporting.PostgresDSN = "<redacted>"
	}
	return c
}
