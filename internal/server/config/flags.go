package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/outreach/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string     HTTP bind address (e.g. ":8080")
//	-g string     gRPC health bind address (empty disables)
//	-d string     PostgreSQL DSN
//	-s string     session signing secret
//	-t duration   session duration (e.g. "168h")
//	-w duration   renewal window (e.g. "24h")
//	-m string     session mode: cookie | server
//	-e string     environment: development | production
//	-b int        bcrypt cost
//	-l string     log level
//	-L string     log backend: slog | zap
//
// os.Args is filtered first so flags owned by other layers (-c, -E) do not
// make the parse fail.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-t", "-w", "-m", "-e", "-b", "-l", "-L"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run HTTP server")
	fs.StringVar(&config.GRPCHealthAddr, "g", config.GRPCHealthAddr, "address and port of gRPC health endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session signing secret")
	fs.DurationVar(&config.SessionDuration, "t", config.SessionDuration, "session duration")
	fs.DurationVar(&config.RenewalWindow, "w", config.RenewalWindow, "session renewal window")
	fs.StringVar(&config.SessionMode, "m", config.SessionMode, "session mode (cookie|server)")
	fs.StringVar(&config.Environment, "e", config.Environment, "environment (development|production)")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogBackend, "L", config.LogBackend, "log backend (slog|zap)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
