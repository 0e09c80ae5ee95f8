package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deal-drive/site/jwt"
	"github.com/deal-drive/site/user"
)

func newTokenCmd() *cobra.Command {
	var (
		auth   user.Auth
		sub    user.Subscription
		status string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an auth_token cookie value for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			sub.Status = user.SubscriptionStatus(status)
			token, err := jwt.GenerateToken([]byte(cfg.JWTSecret), auth, sub, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&auth.ID, "user", "local-user", "Subject (user id)")
	f.StringVar(&auth.Name, "name", "", "Display name")
	f.StringVar(&auth.Email, "email", "", "Email address")
	f.StringVar(&auth.OrgID, "org", "", "Organization id")
	f.StringVar(&sub.Plan, "plan", user.PlanFree, "Plan: free, pro or dealer")
	f.StringVar(&status, "status", string(user.StatusActive), "Subscription status")
	f.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
