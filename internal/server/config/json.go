package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/recipekeeper/internal/flagx"
	"github.com/dmitrijs2005/recipekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields
// distinguish "absent" from a zero value so a partial file only overrides
// what it names.
type JsonConfig struct {
	EndpointAddrHTTP   *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC   *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN        *string         `json:"database_dsn"`
	DBMaxConns         *int32          `json:"db_max_conns"`
	DBMinConns         *int32          `json:"db_min_conns"`
	DBMaxConnLifetime  *timex.Duration `json:"db_max_conn_lifetime"`
	DBConnectRetries   *uint64         `json:"db_connect_retries"`
	SessionDuration    *timex.Duration `json:"session_duration"`
	SweepInterval      *timex.Duration `json:"sweep_interval"`
	CookieSecure       *bool           `json:"cookie_secure"`
	CookieDomain       *string         `json:"cookie_domain"`
	CORSAllowedOrigins []string        `json:"cors_allowed_origins"`
	LogLevel           *string         `json:"log_level"`
}

// parseJson overlays config with the file named by -c/-config or $CONFIG.
// It panics if the file cannot be read or parsed.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setIf(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIf(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.DBMaxConns, c.DBMaxConns)
	setIf(&config.DBMinConns, c.DBMinConns)
	setIf(&config.DBConnectRetries, c.DBConnectRetries)
	setIf(&config.CookieSecure, c.CookieSecure)
	setIf(&config.CookieDomain, c.CookieDomain)
	setIf(&config.LogLevel, c.LogLevel)

	if c.DBMaxConnLifetime != nil {
		config.DBMaxConnLifetime = c.DBMaxConnLifetime.Duration
	}
	if c.SessionDuration != nil {
		config.SessionDuration = c.SessionDuration.Duration
	}
	if c.SweepInterval != nil {
		config.SweepInterval = c.SweepInterval.Duration
	}
	if c.CORSAllowedOrigins != nil {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
