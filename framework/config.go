package framework

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "DEPLOY"

	DefaultRPCURL       = "http://localhost:8545"
	DefaultArtifactsDir = "artifacts"
	DefaultLogLevel     = "info"
)

var (
	errMissingRPCURL   = errors.New("missing rpc url")
	errNegativeTimeout = errors.New("timeout must not be negative")
)

// Config is owned by the deployment backend. Values come from the
// environment (DEPLOY_RPC_URL, DEPLOY_PRIVATE_KEY, ...) and .env files.
type Config struct {
	RPCURL       string        `mapstructure:"rpc_url"`
	PrivateKey   string        `mapstructure:"private_key"`
	ArtifactsDir string        `mapstructure:"artifacts_dir"`
	ChainID      uint64        `mapstructure:"chain_id"`
	GasLimit     uint64        `mapstructure:"gas_limit"`
	Value        string        `mapstructure:"value"`
	Timeout      time.Duration `mapstructure:"timeout"`
	LogLevel     string        `mapstructure:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		RPCURL:       DefaultRPCURL,
		ArtifactsDir: DefaultArtifactsDir,
		Value:        "0",
		LogLevel:     DefaultLogLevel,
	}
}

// SetupViper binds every config key to its DEPLOY_ environment variable.
func SetupViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("rpc_url", def.RPCURL)
	v.SetDefault("private_key", "")
	v.SetDefault("artifacts_dir", def.ArtifactsDir)
	v.SetDefault("chain_id", 0)
	v.SetDefault("gas_limit", 0)
	v.SetDefault("value", def.Value)
	v.SetDefault("timeout", "0s")
	v.SetDefault("log_level", def.LogLevel)
	return v
}

// LoadConfig reads the given .env files (missing ones are skipped) and then
// the environment. Variables already set in the environment win over .env.
func LoadConfig(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	v := SetupViper()
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCURL) == "" {
		return errMissingRPCURL
	}
	if strings.TrimSpace(c.PrivateKey) == "" {
		return ErrMissingPrivateKey
	}
	if c.Timeout < 0 {
		return errNegativeTimeout
	}
	if _, err := c.ValueWei(); err != nil {
		return err
	}
	return nil
}

// ValueWei is the amount sent along with the creation transaction.
func (c *Config) ValueWei() (*big.Int, error) {
	if strings.TrimSpace(c.Value) == "" {
		return new(big.Int), nil
	}
	v, err := uint256.FromDecimal(strings.TrimSpace(c.Value))
	if err != nil {
		return nil, fmt.Errorf("invalid value %q: %w", c.Value, err)
	}
	return v.ToBig(), nil
}
