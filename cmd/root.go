package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mailbatch",
	Short: "Bulk templated email over SMTP",
	Long: `Send one subject to a list of recipients over a single SMTP session,
personalizing an HTML template per recipient and reporting every failure
without stopping the batch.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Mail config file (overrides MAILBATCH_CONFIG env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL env var)")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(recipientsCmd)
	rootCmd.AddCommand(versionCmd)
}
