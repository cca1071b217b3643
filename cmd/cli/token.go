package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/ledger-es/internal/infrastructure/auth"
)

func tokenCmd() *cobra.Command {
	var (
		secret  string
		role    string
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development JWT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}
			r, err := auth.ParseRole(role)
			if err != nil {
				return err
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(auth.Principal{Subject: subject, Role: r})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", envOr("JWT_SECRET", ""), "HMAC signing secret")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleWriter), "Role claim (reader or writer)")
	cmd.Flags().StringVar(&subject, "subject", "ledgerctl", "Subject claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
