package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/trazo/internal/server/auth"
)

// tokenCmd mints an access token signed with the shared secret. Intended
// for development and operator scripts.
func (a *app) tokenCmd() *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token with the server secret (TRAZO_SECRET)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config()
			if userID == "" {
				userID = cfg.UserID
			}
			if userID == "" {
				return errors.New("--user is required")
			}
			if role == "" {
				role = cfg.Role
			}
			if role != "" && role != auth.RoleUser && role != auth.RoleAdmin {
				return fmt.Errorf("unknown role %q", role)
			}

			tok, err := auth.GenerateToken(userID, role, []byte(cfg.Secret), ttl)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}
			_, err = fmt.Fprintln(out(cmd), tok)
			return err
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID (subject) of the token")
	cmd.Flags().StringVar(&role, "role", "", "role claim: user or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 15*time.Minute, "token lifetime")
	return cmd
}
