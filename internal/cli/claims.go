package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/metadata"

	"github.com/dmitrijs2005/trazo/internal/api"
	"github.com/dmitrijs2005/trazo/internal/common"
)

// call dials the server and runs fn with a context carrying credentials.
func (a *app) call(cmd *cobra.Command, fn func(ctx context.Context, c VerificationClient) (any, error)) error {
	cfg := a.config()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	switch {
	case cfg.Token != "":
		ctx = metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, cfg.Token)
	case cfg.UserID != "":
		ctx = metadata.AppendToOutgoingContext(ctx, common.UserIDHeaderName, cfg.UserID)
	}

	client, closeFn, err := a.dial(ctx, cfg.Server)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	resp, err := fn(ctx, client)
	if err != nil {
		return err
	}
	return printJSON(out(cmd), resp)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readPayload loads a claim payload from path, or stdin when path is "-".
func readPayload(cmd *cobra.Command, path string) (api.ClaimPayload, error) {
	var (
		p    api.ClaimPayload
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return p, fmt.Errorf("read payload: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

func (a *app) submitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <payload.json|->",
		Short: "Submit a claim and store the verification outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPayload(cmd, args[0])
			if err != nil {
				return err
			}
			return a.call(cmd, func(ctx context.Context, c VerificationClient) (any, error) {
				return c.SubmitClaim(ctx, &api.SubmitClaimRequest{Claim: p})
			})
		},
	}
}

func (a *app) evaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate <payload.json|->",
		Short: "Dry-run a claim without storing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPayload(cmd, args[0])
			if err != nil {
				return err
			}
			return a.call(cmd, func(ctx context.Context, c VerificationClient) (any, error) {
				return c.EvaluateClaim(ctx, &api.EvaluateClaimRequest{Claim: p})
			})
		},
	}
}

func (a *app) reauditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reaudit <claim-id>",
		Short: "Re-evaluate a stored claim (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, func(ctx context.Context, c VerificationClient) (any, error) {
				return c.ReauditClaim(ctx, &api.ReauditClaimRequest{ClaimID: args[0]})
			})
		},
	}
}

func (a *app) auditLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit-log <claim-id>",
		Short: "Print the audit trail of a claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, func(ctx context.Context, c VerificationClient) (any, error) {
				return c.GetAuditLog(ctx, &api.GetAuditLogRequest{ClaimID: args[0]})
			})
		},
	}
}

func (a *app) pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, func(ctx context.Context, c VerificationClient) (any, error) {
				return c.Ping(ctx, &api.PingRequest{})
			})
		},
	}
}
