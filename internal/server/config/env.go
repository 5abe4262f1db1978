package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by parseEnv.
const (
	EnvDatabaseURL    = "DATABASE_URL"
	EnvHTTPAddr       = "HTTP_ADDR"
	EnvGRPCAddr       = "GRPC_ADDR"
	EnvSessionTTL     = "SESSION_DURATION"
	EnvSweepInterval  = "SWEEP_INTERVAL"
	EnvCookieSecure   = "COOKIE_SECURE"
	EnvCookieDomain   = "COOKIE_DOMAIN"
	EnvLogLevel       = "LOG_LEVEL"
	EnvCORSOrigins    = "CORS_ALLOWED_ORIGINS"
	EnvDBMaxConns     = "DB_MAX_CONNS"
	EnvDBMinConns     = "DB_MIN_CONNS"
	EnvDBRetries      = "DB_CONNECT_RETRIES"
	EnvDBConnLifetime = "DB_MAX_CONN_LIFETIME"
)

// parseEnv overlays config with any of the variables above that are set.
// Malformed numbers, booleans or durations panic, like a malformed JSON file.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv(EnvDatabaseURL); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv(EnvHTTPAddr); ok {
		config.EndpointAddrHTTP = v
	}
	if v, ok := os.LookupEnv(EnvGRPCAddr); ok {
		config.EndpointAddrGRPC = v
	}
	if v, ok := os.LookupEnv(EnvCookieDomain); ok {
		config.CookieDomain = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		config.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvCORSOrigins); ok {
		config.CORSAllowedOrigins = splitList(v)
	}

	envDuration(EnvSessionTTL, &config.SessionDuration)
	envDuration(EnvSweepInterval, &config.SweepInterval)
	envDuration(EnvDBConnLifetime, &config.DBMaxConnLifetime)

	if v, ok := os.LookupEnv(EnvCookieSecure); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvCookieSecure, err))
		}
		config.CookieSecure = b
	}

	envInt32(EnvDBMaxConns, &config.DBMaxConns)
	envInt32(EnvDBMinConns, &config.DBMinConns)

	if v, ok := os.LookupEnv(EnvDBRetries); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvDBRetries, err))
		}
		config.DBConnectRetries = n
	}
}

func envDuration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = d
}

func envInt32(key string, dst *int32) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = int32(n)
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
