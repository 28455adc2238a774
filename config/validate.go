package config

import (
	"fmt"
	"strings"

	"chainx/native/spot"
)

// MaxPageSizeLimit caps Query.MaxPageSize so one request cannot scan an
// unbounded index range.
const MaxPageSizeLimit = 1000

// Validate checks the ranges of every section.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("RPCAddress must be set")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("DataDir must be set")
	}
	if c.RPC.MaxRequestBytes <= 0 {
		return fmt.Errorf("rpc: MaxRequestBytes <= 0")
	}
	if c.RPC.RateLimitPerSecond < 0 || c.RPC.RateBurst < 0 {
		return fmt.Errorf("rpc: negative rate limit")
	}
	if c.RPC.RateLimitPerSecond > 0 && c.RPC.RateBurst == 0 {
		return fmt.Errorf("rpc: RateBurst must be positive when rate limiting")
	}
	if c.RPC.JWT.Enable && strings.TrimSpace(c.RPC.JWT.HSSecretEnv) == "" {
		return fmt.Errorf("rpc jwt: HSSecretEnv must name the secret variable")
	}
	if c.Query.MaxPageSize == 0 || c.Query.MaxPageSize > MaxPageSizeLimit {
		return fmt.Errorf("query: MaxPageSize must be within 1..%d", MaxPageSizeLimit)
	}
	if _, err := spot.ParseDepthMode(c.Query.DepthMode); err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if c.Query.HeaderCacheSize <= 0 {
		return fmt.Errorf("query: HeaderCacheSize <= 0")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: unknown level %q", c.Log.Level)
	}
	if c.Log.File != "" && (c.Log.MaxSizeMB <= 0 || c.Log.MaxBackups < 0) {
		return fmt.Errorf("log: MaxSizeMB must be positive when File is set")
	}
	return nil
}
