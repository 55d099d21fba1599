// Package token issues access tokens for the groupboard server
//
// e.g., groupboard token issue --user=u1
package token

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/groupboard/internal/auth"
	"github.com/thenoetrevino/groupboard/internal/cli"
	"github.com/thenoetrevino/groupboard/internal/cli/handler"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// ErrNoSecret is returned when no signing secret is configured.
var ErrNoSecret = errors.New("no signing secret configured: set daemon.jwt_secret or GROUPBOARD_JWT_SECRET")

// TokenCmd returns the token parent command
func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage access tokens",
	}
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().Bool("quiet", false, "Minimal output (token only)")

	cmd.AddCommand(IssueCmd())

	return cmd
}

// IssueCmd returns the token issue subcommand
func IssueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a token for a user",
		Long: `Sign an access token with the server's secret. Run it where the server's
configuration lives.

Examples:
  eval $(groupboard token issue --user=u1 --name=Ana)
  TOKEN=$(groupboard token issue --user=u1 --quiet)`,
		Args: cobra.NoArgs,
		RunE: handler.Command(handler.Func(runIssue), handler.Require("user")),
	}

	cmd.Flags().String("user", "", "User ID (required)")
	cmd.Flags().String("name", "", "Display name (defaults to the user ID)")
	cmd.Flags().Duration("ttl", auth.DefaultTTL, "How long the token stays valid")

	return cmd
}

func runIssue(_ context.Context, args *handler.Arguments) (any, error) {
	secret := args.CLI.App.Config().Daemon.JWTSecret
	if secret == "" {
		return nil, cli.Usage(ErrNoSecret)
	}
	ttl, _ := args.GetCmd().Flags().GetDuration("ttl")
	if ttl <= 0 {
		return nil, cli.Usage(fmt.Errorf("--ttl must be positive"))
	}

	userID := types.UserID(strings.TrimSpace(args.GetString("user", "")))
	name := strings.TrimSpace(args.GetString("name", ""))
	if name == "" {
		name = string(userID)
	}

	signed, err := auth.NewIssuer(secret, ttl).Issue(userID, name)
	if err != nil {
		return nil, err
	}
	expires := time.Now().Add(ttl).UTC()

	return cli.Result{
		ID:      signed,
		Message: "export GROUPBOARD_TOKEN=" + signed,
		Data: map[string]any{
			"token":      signed,
			"user_id":    userID,
			"name":       name,
			"expires_at": expires.Format(time.RFC3339),
		},
	}, nil
}
