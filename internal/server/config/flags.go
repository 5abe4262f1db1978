package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/recipekeeper/internal/flagx"
)

// parseFlags overlays config with command-line flags:
//
//	-a string     HTTP bind address (e.g. ":8080")
//	-g string     gRPC bind address (e.g. ":50051")
//	-d string     PostgreSQL DSN
//	-s duration   session lifetime (e.g. "720h")
//	-i duration   expired-session sweep interval, 0 disables
//	-k bool       mark the session cookie Secure; pass -k=false for plain-HTTP development
//	-l string     log level: debug, info, warn, error
//
// Only these flags are considered; os.Args is filtered with flagx.FilterArgs
// first so -c/-config and foreign flags pass through untouched.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-i", "-k", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port to listen on")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port to listen on")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.DurationVar(&config.SessionDuration, "s", config.SessionDuration, "session duration")
	fs.DurationVar(&config.SweepInterval, "i", config.SweepInterval, "expired session sweep interval")
	fs.BoolVar(&config.CookieSecure, "k", config.CookieSecure, "secure session cookie")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
