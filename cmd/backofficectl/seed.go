package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"backoffice/internal/auth"
	"backoffice/internal/database/migration"
	"backoffice/internal/rbac"
	"backoffice/internal/repository/postgres"
	"backoffice/internal/seed"
)

func newSeedCmd(e *env) *cobra.Command {
	var rolesFile string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create built-in roles and the bootstrap administrator",
		Long: `Create the built-in roles and, when SEED_ADMIN_EMAIL and
SEED_ADMIN_PASSWORD are set, an active administrator holding the Admin role.

Existing roles and users are left untouched, so seed can run on every deploy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := loadRoles(rolesFile)
			if err != nil {
				return err
			}

			db, err := e.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			if err := migration.EnsureMigrated(cmd.Context(), db, e.log, e.cfg.Database.Host); err != nil {
				return err
			}

			s := seed.New(
				postgres.NewRolePostgres(db),
				postgres.NewUserPostgres(db),
				auth.NewPasswordHasher(e.cfg.Auth.BcryptCost),
				e.log,
			)
			res, err := s.Run(cmd.Context(), defs, e.cfg.Seed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "roles created: %d, admin created: %t\n", len(res.RolesCreated), res.AdminCreated)
			return nil
		},
	}
	cmd.Flags().StringVar(&rolesFile, "roles", "", "YAML role seed to use instead of the built-in one")
	return cmd
}

func loadRoles(path string) ([]rbac.SeedRole, error) {
	if path == "" {
		return rbac.DefaultRoles()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read role seed: %w", err)
	}
	return rbac.ParseSeed(b)
}
