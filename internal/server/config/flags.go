package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/shopkeeper/internal/flagx"
)

// parseFlags overlays config with command-line flags:
//
//	-a string     HTTP bind address (e.g. ":4444")
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-t duration   session token and cookie lifetime
//	-r duration   password reset token lifetime
//	-w duration   accepted reset token expiry window
//	-k int        bcrypt cost
//	-u string     frontend URL used in reset links
//	-e string     environment (local, dev, prod)
//
// Only these flags are looked at, so -c and -f handled by the other loaders
// do not cause parse errors.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-w", "-k", "-u", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.SessionTTL, "t", config.SessionTTL, "session lifetime")
	fs.DurationVar(&config.ResetTokenTTL, "r", config.ResetTokenTTL, "reset token lifetime")
	fs.DurationVar(&config.ResetTokenWindow, "w", config.ResetTokenWindow, "reset token expiry window")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.FrontendURL, "u", config.FrontendURL, "frontend URL")
	fs.StringVar(&config.Env, "e", config.Env, "environment")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
