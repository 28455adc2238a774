package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultRPCAddress      = ":8086"
	DefaultDataDir         = "./chainx-data"
	DefaultMaxRequestBytes = 1 << 20
	DefaultMaxPageSize     = 100
	DefaultHeaderCacheSize = 1024
	DefaultDepthMode       = "independent"
	DefaultMaxDepthLevels  = 100_000
)

type Config struct {
	RPCAddress string    `toml:"RPCAddress"`
	DataDir    string    `toml:"DataDir"`
	Env        string    `toml:"Env"`
	RPC        RPC       `toml:"RPC"`
	Query      Query     `toml:"Query"`
	Log        Log       `toml:"Log"`
	Telemetry  Telemetry `toml:"Telemetry"`
}

// Default returns the configuration written for a fresh node.
func Default() *Config {
	return &Config{
		RPCAddress: DefaultRPCAddress,
		DataDir:    DefaultDataDir,
		Env:        "dev",
		RPC: RPC{
			MaxRequestBytes:    DefaultMaxRequestBytes,
			RateLimitPerSecond: 20,
			RateBurst:          40,
			ReadHeaderTimeout:  5,
			WriteTimeout:       15,
			JWT:                JWT{HSSecretEnv: "CHAINX_RPC_JWT_SECRET"},
		},
		Query: Query{
			MaxPageSize:     DefaultMaxPageSize,
			DepthMode:       DefaultDepthMode,
			MaxDepthLevels:  DefaultMaxDepthLevels,
			HeaderCacheSize: DefaultHeaderCacheSize,
		},
		Log: Log{Level: "info", MaxSizeMB: 100, MaxBackups: 5},
	}
}

// Load loads the configuration from the given path. A missing file is
// created with defaults; unknown keys are rejected.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("config file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// JWTSecret resolves the HMAC secret of the RPC bearer auth.
func (c *Config) JWTSecret() ([]byte, error) {
	if !c.RPC.JWT.Enable {
		return nil, nil
	}
	secret := strings.TrimSpace(os.Getenv(c.RPC.JWT.HSSecretEnv))
	if secret == "" {
		return nil, fmt.Errorf("rpc jwt: environment variable %s is empty", c.RPC.JWT.HSSecretEnv)
	}
	return []byte(secret), nil
}
