package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/trazo/internal/flagx"
)

// serverFlags lists the flags handled by parseFlags.
var serverFlags = []string{
	"-a", "-m", "-d", "-s", "-t", "-env", "-log", "-log-level",
	"-archive", "-u", "-p", "-b", "-g", "-e",
	"-registry-url", "-registry-token",
}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string               gRPC bind address (e.g., ":50051")
//	-m string               metrics/health bind address
//	-d string               PostgreSQL DSN
//	-s string               JWT HMAC secret key
//	-t int                  access token validity, minutes
//	-env string             environment ("production" or "development")
//	-log string             log backend ("slog" or "zap")
//	-log-level string       log level
//	-archive bool           mirror audit entries to S3
//	-u/-p/-b/-g/-e string   S3 user, password, bucket, region, endpoint
//	-registry-url string    registry API base URL
//	-registry-token string  registry API bearer token
//
// Arguments are first filtered with flagx.FilterArgs so the -c/-config flag
// and unknown flags do not interfere.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("trazo-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run the gRPC server")
	fs.StringVar(&config.EndpointAddrMetrics, "m", config.EndpointAddrMetrics, "address and port for /metrics and /healthz")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.StringVar(&config.Environment, "env", config.Environment, "environment")
	fs.StringVar(&config.LogBackend, "log", config.LogBackend, "log backend")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	fs.BoolVar(&config.ArchiveEnabled, "archive", config.ArchiveEnabled, "archive audit entries to S3")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.RegistryBaseURL, "registry-url", config.RegistryBaseURL, "registry API base URL")
	fs.StringVar(&config.RegistryToken, "registry-token", config.RegistryToken, "registry API token")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return err
	}

	config.AccessTokenValidityDuration = time.Duration(*tokenMinutes) * time.Minute
	return nil
}
