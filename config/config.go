// Package config loads the process configuration from the environment.
// Every knob has a production-ready default, so the binary runs with no
// environment at all.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Recognized environment keys.
const (
	keyHTTPAddr             = "HTTP_ADDR"
	keyCleanupInterval      = "CLEANUP_INTERVAL_SECONDS"
	keyInactiveTimeout      = "INACTIVE_GAME_TIMEOUT_SECONDS"
	keyActiveTimeout        = "ACTIVE_GAME_TIMEOUT_SECONDS"
	keyRateLimitPerMinute   = "RATE_LIMIT_GAMES_PER_MINUTE"
	keyRateLimitClientCache = "RATE_LIMIT_CLIENT_CACHE"
	keyCORSAllowedOrigins   = "CORS_ALLOWED_ORIGINS"
	keyConnSendBuffer       = "CONN_SEND_BUFFER"
)

// Config is the resolved process configuration.
type Config struct {
	HTTPAddr string

	CleanupInterval time.Duration
	InactiveTimeout time.Duration
	ActiveTimeout   time.Duration

	RateLimitPerMinute   int
	RateLimitClientCache int

	CORSAllowedOrigins []string

	ConnSendBuffer int
}

// Load reads the environment once and resolves defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(keyHTTPAddr, ":8080")
	v.SetDefault(keyCleanupInterval, 60)
	v.SetDefault(keyInactiveTimeout, 600)
	v.SetDefault(keyActiveTimeout, 86400)
	v.SetDefault(keyRateLimitPerMinute, 10)
	v.SetDefault(keyRateLimitClientCache, 16384)
	v.SetDefault(keyCORSAllowedOrigins, "http://localhost:5173")
	v.SetDefault(keyConnSendBuffer, 64)

	return &Config{
		HTTPAddr:             v.GetString(keyHTTPAddr),
		CleanupInterval:      time.Duration(v.GetInt(keyCleanupInterval)) * time.Second,
		InactiveTimeout:      time.Duration(v.GetInt(keyInactiveTimeout)) * time.Second,
		ActiveTimeout:        time.Duration(v.GetInt(keyActiveTimeout)) * time.Second,
		RateLimitPerMinute:   v.GetInt(keyRateLimitPerMinute),
		RateLimitClientCache: v.GetInt(keyRateLimitClientCache),
		CORSAllowedOrigins:   splitOrigins(v.GetString(keyCORSAllowedOrigins)),
		ConnSendBuffer:       v.GetInt(keyConnSendBuffer),
	}, nil
}

// splitOrigins parses the comma-separated allowlist, trimming whitespace and
// dropping empty entries.
func splitOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
