package config

import (
	"flag"
	"os"
	"time"

	"github.com/tenantive/jobboard/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   application database DSN
//	-m string   maintenance database DSN (provisioning tool only)
//	-s string   token HMAC secret
//	-w int      graceful shutdown timeout, seconds
//	-v          debug mode
//
// Args are filtered through flagx.FilterArgs first so this set does not
// collide with flags other components parse.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-m", "-s", "-w", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "application database DSN")
	fs.StringVar(&config.AdminDatabaseDSN, "m", config.AdminDatabaseDSN, "maintenance database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.BoolVar(&config.Debug, "v", config.Debug, "debug mode")

	shutdownTimeout := fs.Int("w", int(config.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ShutdownTimeout = time.Duration(*shutdownTimeout) * time.Second
}
