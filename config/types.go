package config

// RPC controls the JSON-RPC listener.
type RPC struct {
	MaxRequestBytes    int64
	RateLimitPerSecond float64
	RateBurst          int
	// TrustProxyHeaders makes the limiter key clients by X-Forwarded-For.
	TrustProxyHeaders bool
	ReadHeaderTimeout uint32 // seconds
	WriteTimeout      uint32 // seconds
	JWT               JWT
}

// JWT configures optional bearer authentication. The HMAC secret is read
// from the environment variable named by HSSecretEnv and never stored in the
// file.
type JWT struct {
	Enable      bool
	HSSecretEnv string
	Issuer      string
	Audience    string
}

// Query bounds the work a single request may trigger.
type Query struct {
	MaxPageSize uint32
	DepthMode   string
	// MaxDepthLevels caps the price levels one quotation query reads per
	// side; 0 removes the cap.
	MaxDepthLevels  uint64
	HeaderCacheSize int
}

// Log selects the log level and an optional rotating file sink.
type Log struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// Telemetry configures the OTLP exporters. An empty Endpoint disables them.
type Telemetry struct {
	Endpoint string
	Insecure bool
	Traces   bool
	Metrics  bool
	Headers  map[string]string
}
