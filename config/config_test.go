package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultRPCAddress, cfg.RPCAddress)
	require.Equal(t, uint32(DefaultMaxPageSize), cfg.Query.MaxPageSize)
	require.Equal(t, uint64(DefaultMaxDepthLevels), cfg.Query.MaxDepthLevels)

	_, err = os.Stat(path)
	require.NoError(t, err)

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.RPC, reloaded.RPC)
	require.Equal(t, cfg.Query, reloaded.Query)
	require.Equal(t, cfg.DataDir, reloaded.DataDir)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `RPCAddress = "127.0.0.1:9944"
DataDir = "/var/lib/chainx"
Env = "prod"

[RPC]
RateLimitPerSecond = 5.5
RateBurst = 11

[RPC.JWT]
Enable = true
HSSecretEnv = "TEST_CHAINX_SECRET"
Issuer = "gateway"

[Query]
MaxPageSize = 50
DepthMode = "coupled"
MaxDepthLevels = 0

[Log]
Level = "debug"

[Telemetry]
Endpoint = "otel-collector:4318"
Traces = true

[Telemetry.Headers]
authorization = "token"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9944", cfg.RPCAddress)
	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, 5.5, cfg.RPC.RateLimitPerSecond)
	require.Equal(t, int64(DefaultMaxRequestBytes), cfg.RPC.MaxRequestBytes)
	require.True(t, cfg.RPC.JWT.Enable)
	require.Equal(t, "gateway", cfg.RPC.JWT.Issuer)
	require.Equal(t, uint32(50), cfg.Query.MaxPageSize)
	require.Equal(t, "coupled", cfg.Query.DepthMode)
	require.Zero(t, cfg.Query.MaxDepthLevels)
	require.Equal(t, DefaultHeaderCacheSize, cfg.Query.HeaderCacheSize)
	require.Equal(t, map[string]string{"authorization": "token"}, cfg.Telemetry.Headers)

	t.Setenv("TEST_CHAINX_SECRET", "s3cret")
	secret, err := cfg.JWTSecret()
	require.NoError(t, err)
	require.Equal(t, []byte("s3cret"), secret)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("ListenAddress = \":6001\"\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "ListenAddress"))
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"page size zero": func(c *Config) { c.Query.MaxPageSize = 0 },
		"page size huge": func(c *Config) { c.Query.MaxPageSize = MaxPageSizeLimit + 1 },
		"depth mode":     func(c *Config) { c.Query.DepthMode = "sideways" },
		"burst":          func(c *Config) { c.RPC.RateBurst = 0 },
		"request bytes":  func(c *Config) { c.RPC.MaxRequestBytes = 0 },
		"jwt secret env": func(c *Config) { c.RPC.JWT = JWT{Enable: true} },
		"log level":      func(c *Config) { c.Log.Level = "loud" },
		"header cache":   func(c *Config) { c.Query.HeaderCacheSize = 0 },
		"empty data dir": func(c *Config) { c.DataDir = " " },
		"rotating sink":  func(c *Config) { c.Log.File = "chainx.log"; c.Log.MaxSizeMB = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
	require.NoError(t, Default().Validate())
}

func TestJWTSecretRequiresEnvironment(t *testing.T) {
	cfg := Default()
	secret, err := cfg.JWTSecret()
	require.NoError(t, err)
	require.Nil(t, secret)

	cfg.RPC.JWT = JWT{Enable: true, HSSecretEnv: "TEST_CHAINX_UNSET_SECRET"}
	t.Setenv("TEST_CHAINX_UNSET_SECRET", "")
	_, err = cfg.JWTSecret()
	require.Error(t, err)
}
