package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/erp/channelsync/internal/bootstrap"
	"github.com/spf13/cobra"
)

type tokenOutput struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newTokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "token <username>",
		Short: "Issue an API access token for a seeded user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.JWT.Secret == "" {
				return errors.New("jwt.secret is not configured")
			}

			return a.withContainer(cmd.Context(), func(c *bootstrap.Container) error {
				user, err := c.Users.FindByUsername(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("user %s: %w", args[0], err)
				}
				token, expiresAt, err := c.JWT.GenerateToken(user.ID, user.Username)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), tokenOutput{Token: token, ExpiresAt: expiresAt})
			})
		},
	}
}
