package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pinmap/internal/auth"
)

func newTokenCommand(a *app) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token signed with the configured JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if a.cfg.Server.JWTSecret == "" {
				return errors.New("AUTH_JWT_SECRET is required")
			}
			if subject == "" {
				subject = a.cfg.Author
			}
			normalized, ok := auth.NormalizeRole(role)
			if !ok {
				return fmt.Errorf("invalid role %q", role)
			}
			token, err := auth.IssueJWT([]byte(a.cfg.Server.JWTSecret), subject, normalized, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject (default: configured author)")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleViewer), "role: viewer, editor or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
