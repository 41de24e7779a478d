// Command backofficectl runs maintenance tasks against the back-office database.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"backoffice/internal/config"
	"backoffice/internal/database"
	"backoffice/internal/database/migration"
	"backoffice/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// env is the process-wide state shared by subcommands.
type env struct {
	cfg *config.AppConfig
	log *zap.Logger
}

func (e *env) openDB(ctx context.Context) (*sql.DB, error) {
	db, err := database.NewPostgres(ctx, e.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "backofficectl",
		Short:         "Back-office maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			e.cfg = config.Load()
			e.log = logging.FromConfig(e.cfg.Log)
		},
	}
	root.AddCommand(
		newMigrateCmd(e),
		newSeedCmd(e),
		newTokenCmd(e),
		newVersionCmd(),
	)
	return root
}

func newMigrateCmd(e *env) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				for _, s := range migration.Steps() {
					fmt.Fprintln(cmd.OutOrStdout(), s)
				}
				return nil
			}
			db, err := e.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			return migration.EnsureMigrated(cmd.Context(), db, e.log, e.cfg.Database.Host)
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "print migration steps without connecting")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
