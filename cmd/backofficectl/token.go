package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"backoffice/internal/auth"
	"backoffice/internal/repository/postgres"
	"backoffice/internal/service"
)

func newTokenCmd(e *env) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an active user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			tokens, err := auth.NewTokenManager(e.cfg.Auth)
			if err != nil {
				return err
			}

			db, err := e.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			svc := service.NewAuthService(
				postgres.NewUserPostgres(db),
				postgres.NewRolePostgres(db),
				tokens,
				auth.NewPasswordHasher(e.cfg.Auth.BcryptCost),
			)
			res, err := svc.IssueFor(cmd.Context(), email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", res.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email")
	return cmd
}
