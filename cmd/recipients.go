package cmd

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/mailbatch/internal/service"
	"github.com/shaharia-lab/mailbatch/internal/storage"
)

var recipientsCmd = &cobra.Command{
	Use:   "recipients",
	Short: "Manage the recipient directory",
}

var recipientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipients",
	Args:  cobra.NoArgs,
	RunE:  runRecipientsList,
}

var recipientsAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Add a recipient",
	Long: `Add a recipient to the directory.

Examples:
  mailbatch recipients add ann@example.com --name Ann --attr Plan=pro
  mailbatch recipients add "Bob <bob@example.com>" --inactive`,
	Args: cobra.ExactArgs(1),
	RunE: runRecipientsAdd,
}

var recipientsEnableCmd = &cobra.Command{
	Use:   "enable <email>",
	Short: "Include a recipient in --from-db batches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetActive(cmd, args[0], true)
	},
}

var recipientsDisableCmd = &cobra.Command{
	Use:   "disable <email>",
	Short: "Exclude a recipient from --from-db batches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetActive(cmd, args[0], false)
	},
}

func init() {
	recipientsListCmd.Flags().Bool("active", false, "Only list active recipients")

	recipientsAddCmd.Flags().String("name", "", "Display name, available as {{Name}}")
	recipientsAddCmd.Flags().String("username", "", "Username, available as {{Username}}")
	recipientsAddCmd.Flags().StringToString("attr", nil, "Extra template fields as key=value")
	recipientsAddCmd.Flags().Bool("inactive", false, "Add the recipient disabled")

	recipientsCmd.AddCommand(recipientsListCmd, recipientsAddCmd, recipientsEnableCmd, recipientsDisableCmd)
}

// withDirectory runs fn with a MailingService backed by the recipient directory.
func withDirectory(cmd *cobra.Command, fn func(ctx context.Context, svc service.MailingService) error) error {
	ctx := context.Background()
	env, err := setupEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	db, store, err := env.openDirectory(ctx)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	return fn(ctx, service.NewMailingService(nil, store, env.logger))
}

func runRecipientsList(cmd *cobra.Command, _ []string) error {
	activeOnly, _ := cmd.Flags().GetBool("active")
	return withDirectory(cmd, func(ctx context.Context, svc service.MailingService) error {
		records, err := svc.ListRecipients(ctx, activeOnly)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No recipients. Run `mailbatch migrate --seed` or `mailbatch recipients add`.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), recipientTable(records))
		return nil
	})
}

func recipientTable(records []*storage.RecipientRecord) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.Email,
			r.Name,
			r.Username,
			strconv.FormatBool(r.Active),
			formatAttributes(r.Attributes),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "EMAIL", "NAME", "USERNAME", "ACTIVE", "ATTRIBUTES").
		Rows(rows...).
		String()
}

func formatAttributes(attrs map[string]string) string {
	parts := make([]string, 0, len(attrs))
	for k, v := range attrs {
		parts = append(parts, k+"="+v)
	}
	slices.Sort(parts)
	return strings.Join(parts, ", ")
}

func runRecipientsAdd(cmd *cobra.Command, args []string) error {
	rec := &storage.RecipientRecord{Email: args[0]}
	rec.Name, _ = cmd.Flags().GetString("name")
	rec.Username, _ = cmd.Flags().GetString("username")
	rec.Attributes, _ = cmd.Flags().GetStringToString("attr")
	inactive, _ := cmd.Flags().GetBool("inactive")
	rec.Active = !inactive

	return withDirectory(cmd, func(ctx context.Context, svc service.MailingService) error {
		if err := svc.AddRecipient(ctx, rec); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (id %d)\n", rec.Email, rec.ID)
		return nil
	})
}

func runSetActive(cmd *cobra.Command, email string, active bool) error {
	return withDirectory(cmd, func(ctx context.Context, svc service.MailingService) error {
		if err := svc.SetRecipientActive(ctx, email, active); err != nil {
			return err
		}
		verb := "Disabled"
		if active {
			verb = "Enabled"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, email)
		return nil
	})
}
