package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/mailbatch/internal/config"
	"github.com/shaharia-lab/mailbatch/internal/notification"
	"github.com/shaharia-lab/mailbatch/internal/service"
	"github.com/shaharia-lab/mailbatch/internal/storage"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a batch",
	Long: `Send one message to every recipient.

Recipients come from the "recipients" section of the mail config, or from the
active entries of the recipient directory with --from-db. Ctrl-C stops the
batch after the message in flight.

Examples:
  mailbatch send --subject "Welcome" --template welcome.html
  mailbatch send --subject "Welcome" --template welcome.html --personalizer html --from-db
  mailbatch send --subject "Maintenance" --body "<p>Down at 22:00 UTC</p>"`,
	Args: cobra.NoArgs,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringP("subject", "s", "", "Message subject")
	sendCmd.Flags().String("body", "", "Literal HTML body sent to every recipient")
	sendCmd.Flags().StringP("template", "t", "", "HTML template file rendered per recipient")
	sendCmd.Flags().String("personalizer", service.PersonalizerFields,
		`Template engine: "fields" ({{Name}} tokens) or "html" (html/template, {{.Name}})`)
	sendCmd.Flags().Bool("from-db", false, "Send to active recipients of the recipient directory")
	sendCmd.Flags().String("metrics-file", "", "Write Prometheus metrics in text format to this file when done")
	_ = sendCmd.MarkFlagRequired("subject")
	sendCmd.MarkFlagsMutuallyExclusive("body", "template")
}

func runSend(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	env, err := setupEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	mailCfg, cfgPath, err := config.LoadMailConfig(env.configFile)
	if err != nil {
		return err
	}
	env.logger.Debug("mail config loaded", "path", cfgPath, "smtp_host", mailCfg.SMTP.Host)

	req := service.SendRequest{
		Recipients: mailCfg.Recipients,
	}
	req.Subject, _ = cmd.Flags().GetString("subject")
	req.Body, _ = cmd.Flags().GetString("body")
	req.TemplatePath, _ = cmd.Flags().GetString("template")
	req.Personalizer, _ = cmd.Flags().GetString("personalizer")
	req.FromDirectory, _ = cmd.Flags().GetBool("from-db")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")

	var store storage.RecipientStore
	if req.FromDirectory {
		db, dirStore, err := env.openDirectory(ctx)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck
		store = dirStore
	}

	reg := prometheus.NewRegistry()
	dispatcher := notification.NewDispatcher(
		mailCfg.Dispatch,
		notification.NewSMTPTransport(mailCfg.SMTP),
		notification.WithLogger(env.logger),
		notification.WithMetrics(notification.NewMetrics(reg)),
	)
	svc := service.NewMailingService(dispatcher, store, env.logger)

	result, sendErr := svc.Send(ctx, req)

	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
			env.logger.Warn("writing metrics file failed", "path", metricsFile, "error", err)
		}
	}
	if sendErr != nil {
		return sendErr
	}

	renderReport(cmd.OutOrStdout(), result)
	if result.HasErrors() {
		return fmt.Errorf("%d of %d deliveries failed", result.FailureCount(), result.Total())
	}
	return nil
}
