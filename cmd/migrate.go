package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/mailbatch/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the recipient directory",
	Long:  "Apply pending schema migrations to the recipient directory database and optionally seed it with demo recipients.",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().Bool("seed", false, "Insert demo recipients when the directory is empty")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	env, err := setupEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	db, err := storage.Open(ctx, env.cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	out := cmd.OutOrStdout()
	applied, err := storage.Migrate(ctx, db)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	if len(applied) == 0 {
		fmt.Fprintf(out, "Schema is up to date (version %d)\n", storage.LatestSchemaVersion())
	} else {
		fmt.Fprintf(out, "Applied migrations %v to %s\n", applied, env.cfg.DatabasePath())
	}
	env.logger.Info("migrations applied", "versions", applied, "path", env.cfg.DatabasePath())

	if seed, _ := cmd.Flags().GetBool("seed"); seed {
		n, err := storage.SeedRecipients(ctx, storage.NewSQLiteRecipientStore(db))
		if err != nil {
			return fmt.Errorf("seeding recipients: %w", err)
		}
		if n == 0 {
			fmt.Fprintln(out, "Directory already has recipients, seeding skipped")
		} else {
			fmt.Fprintf(out, "Seeded %d recipients\n", n)
		}
	}
	return nil
}
