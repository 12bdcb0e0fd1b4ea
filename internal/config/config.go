package config

import "time"

// Config holds gateway configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// JWT verification and minting. An empty secret disables verification:
	// every connection is admitted with an anonymous identity.
	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`

	// VerifyTimeout bounds token verification during the websocket handshake.
	VerifyTimeout time.Duration `mapstructure:"verify_timeout" yaml:"verify_timeout"`

	// Connection rate limiting, keyed by remote address.
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`

	// DatabasePath enables the user and message-history store when non-empty.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
	// HistoryLimit is how many recent room messages are replayed on join.
	HistoryLimit int `mapstructure:"history_limit" yaml:"history_limit"`

	// LiveKit media credentials. Media join tokens are disabled when the
	// key or secret is empty.
	LiveKit LiveKitConfig `mapstructure:"livekit" yaml:"livekit"`
}

// RateLimitConfig holds the two connection-attempt pools. A connection is
// charged against the authenticated pool when it presents a token and a
// verifier is configured, regardless of whether verification later succeeds.
type RateLimitConfig struct {
	AnonPoints int           `mapstructure:"anon_points" yaml:"anon_points"`
	AnonWindow time.Duration `mapstructure:"anon_window" yaml:"anon_window"`
	AnonBlock  time.Duration `mapstructure:"anon_block" yaml:"anon_block"`
	AuthPoints int           `mapstructure:"auth_points" yaml:"auth_points"`
	AuthWindow time.Duration `mapstructure:"auth_window" yaml:"auth_window"`
	AuthBlock  time.Duration `mapstructure:"auth_block" yaml:"auth_block"`
}

// LiveKitConfig holds media backend credentials.
type LiveKitConfig struct {
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	APISecret string `mapstructure:"api_secret" yaml:"api_secret"`
	URL       string `mapstructure:"url" yaml:"url"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		JWTIssuer:         "koinonia",
		JWTAudience:       "koinonia-rooms",
		JWTTTL:            24 * time.Hour,
		VerifyTimeout:     5 * time.Second,
		RateLimit: RateLimitConfig{
			AnonPoints: 1000,
			AnonWindow: time.Minute,
			AnonBlock:  30 * time.Second,
			AuthPoints: 2000,
			AuthWindow: time.Minute,
			AuthBlock:  15 * time.Second,
		},
		HistoryLimit: 50,
	}
}
