// Package cli implements trazoctl, the operator CLI of the verification
// server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/dmitrijs2005/trazo/internal/api"
)

// VerificationClient is the part of api.Client the commands call.
type VerificationClient interface {
	SubmitClaim(ctx context.Context, in *api.SubmitClaimRequest, opts ...grpc.CallOption) (*api.SubmitClaimResponse, error)
	EvaluateClaim(ctx context.Context, in *api.EvaluateClaimRequest, opts ...grpc.CallOption) (*api.EvaluateClaimResponse, error)
	ReauditClaim(ctx context.Context, in *api.ReauditClaimRequest, opts ...grpc.CallOption) (*api.ReauditClaimResponse, error)
	GetAuditLog(ctx context.Context, in *api.GetAuditLogRequest, opts ...grpc.CallOption) (*api.GetAuditLogResponse, error)
	Ping(ctx context.Context, in *api.PingRequest, opts ...grpc.CallOption) (*api.PingResponse, error)
}

// Dialer opens a client to the server at addr. The returned func releases
// the connection.
type Dialer func(ctx context.Context, addr string) (VerificationClient, func() error, error)

// DialGRPC connects over plaintext gRPC.
func DialGRPC(_ context.Context, addr string) (VerificationClient, func() error, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return api.NewClient(conn), conn.Close, nil
}

type app struct {
	v       *viper.Viper
	cfgFile string
	dial    Dialer
}

// NewRootCmd builds the trazoctl command tree.
func NewRootCmd(dial Dialer) *cobra.Command {
	a := &app{v: viper.New(), dial: dial}

	root := &cobra.Command{
		Use:   "trazoctl",
		Short: "trazoctl - operator CLI for the Trazo verification server",
		Long: `trazoctl submits and dry-runs carbon claims, triggers re-audits and reads
the append-only audit log of the Trazo verification server.

Settings come from flags, TRAZO_* environment variables and
~/.trazo/config.yaml, in that order of priority.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.trazo/config.yaml)")
	root.PersistentFlags().String("server", defaultServer, "gRPC address of the verification server")
	root.PersistentFlags().String("token", "", "access token (JWT)")
	root.PersistentFlags().String("user-id", "", "user ID sent when no token is set (development servers only)")
	root.PersistentFlags().Duration("timeout", defaultTimeout, "per-request timeout")

	// Bind flags to viper
	for _, name := range []string{"server", "token", "user-id", "timeout"} {
		_ = a.v.BindPFlag(strings.ReplaceAll(name, "-", "_"), root.PersistentFlags().Lookup(name))
	}

	root.AddCommand(
		a.submitCmd(),
		a.evaluateCmd(),
		a.reauditCmd(),
		a.auditLogCmd(),
		a.pingCmd(),
		a.tokenCmd(),
		a.configCmd(),
	)
	return root
}

// Execute runs trazoctl against a real server.
func Execute() error {
	return NewRootCmd(DialGRPC).Execute()
}

// initConfig reads in config file and ENV variables
func (a *app) initConfig() error {
	a.v.SetDefault("secret", defaultSecret)
	a.v.SetDefault("role", "")

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".trazo"))
		}
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("config")
	}

	// Read in environment variables that match TRAZO_*
	a.v.SetEnvPrefix("TRAZO")
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
