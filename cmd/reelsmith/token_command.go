package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelsmith/internal/api"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for POST /api/generate",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			secret := strings.TrimSpace(cfg.API.JWTSecret)
			if secret == "" {
				return errors.New("api.jwt_secret is not set; the generate endpoint is unauthenticated")
			}
			token, err := api.IssueToken(secret, subject, ttl)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "reelsmith-cli", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime (0 for no expiry)")
	return cmd
}
