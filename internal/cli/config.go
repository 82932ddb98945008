package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	sc "github.com/dmitrijs2005/trazo/internal/server/config"
)

const (
	defaultServer  = "localhost:50051"
	defaultTimeout = 10 * time.Second
	defaultSecret  = sc.DefaultSecretKey
)

// Config is the resolved trazoctl configuration.
type Config struct {
	Server  string        `yaml:"server"`
	Token   string        `yaml:"token,omitempty"`
	UserID  string        `yaml:"user_id,omitempty"`
	Timeout time.Duration `yaml:"timeout"`
	Secret  string        `yaml:"secret,omitempty"`
	Role    string        `yaml:"role,omitempty"`
}

func (a *app) config() Config {
	return Config{
		Server:  a.v.GetString("server"),
		Token:   a.v.GetString("token"),
		UserID:  a.v.GetString("user_id"),
		Timeout: a.v.GetDuration("timeout"),
		Secret:  a.v.GetString("secret"),
		Role:    a.v.GetString("role"),
	}
}

// redacted hides secrets for display.
func (c Config) redacted() Config {
	if c.Token != "" {
		c.Token = "***"
	}
	if c.Secret != "" {
		c.Secret = "***"
	}
	return c
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage trazoctl configuration",
		Long: `Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (TRAZO_*)
3. Config file (~/.trazo/config.yaml)
4. Defaults`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f := a.v.ConfigFileUsed(); f != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file: %s\n", f)
			}

			data, err := yaml.Marshal(a.config().redacted())
			if err != nil {
				return fmt.Errorf("error marshaling config: %w", err)
			}
			_, err = out(cmd).Write(data)
			return err
		},
	}

	cmd.AddCommand(show)
	return cmd
}
