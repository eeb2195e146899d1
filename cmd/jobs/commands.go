package main

import (
	"fmt"
	"time"

	"inventory-plus/internal/app"
	"inventory-plus/internal/model"
	"inventory-plus/internal/service"
	"inventory-plus/internal/ws"
	"inventory-plus/pkg/config"
	"inventory-plus/pkg/database"
	"inventory-plus/pkg/logger"
	"inventory-plus/pkg/mailer"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type jobEnv struct {
	log       zerolog.Logger
	container *app.Container
}

// setup loads config and wires services without a websocket hub; jobs have no live clients.
func setup() (*jobEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	lg := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	db, err := database.Connect(cfg.DB, false, lg)
	if err != nil {
		return nil, err
	}
	mail := mailer.New(mailer.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		User:     cfg.Mail.User,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	}, lg)
	return &jobEnv{log: lg, container: app.Build(cfg, db, ws.Nop{}, mail, lg)}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "jobs",
		Short:        "Scheduled inventory jobs",
		SilenceUsage: true,
	}
	root.AddCommand(newCheckAlertsCmd(), newSendNotificationsCmd())
	return root
}

func newCheckAlertsCmd() *cobra.Command {
	var (
		checks    string
		dryRun    bool
		sendEmail bool
	)
	cmd := &cobra.Command{
		Use:   "check-alerts",
		Short: "Scan products and create stock, expiry and reorder notifications",
		PreRunE: func(*cobra.Command, []string) error {
			if !service.CheckGroup(checks).Valid() {
				return fmt.Errorf("--type must be one of all, low_stock, expiry, reorder; got %q", checks)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			start := time.Now()
			report, err := rt.container.Generator.Generate(cmd.Context(), service.GenerateOptions{
				Checks:    service.CheckGroup(checks),
				DryRun:    dryRun,
				SendEmail: sendEmail,
			})
			if err != nil {
				return err
			}
			rt.log.Info().
				Str("job", "check-alerts").
				Str("type", checks).
				Bool("dry_run", report.DryRun).
				Int("scanned", report.Scanned).
				Int("low_stock", report.LowStock).
				Int("expiry", report.Expiry).
				Int("reorder", report.Reorder).
				Int("created", report.Total).
				Int("suppressed", report.Suppressed).
				Int("emailed", report.Emailed).
				Int("email_off", report.EmailOff).
				Dur("took", time.Since(start)).
				Msg("job finished")
			return nil
		},
	}
	cmd.Flags().StringVar(&checks, "type", string(service.CheckAll), "check group: all, low_stock, expiry, reorder")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "count matches without creating notifications")
	cmd.Flags().BoolVar(&sendEmail, "send-email", false, "email every created notification")
	return cmd
}

func newSendNotificationsCmd() *cobra.Command {
	var (
		notifType string
		force     bool
	)
	cmd := &cobra.Command{
		Use:   "send-notifications",
		Short: "Email notifications that have not been sent yet",
		PreRunE: func(*cobra.Command, []string) error {
			if notifType != "" && !model.NotificationType(notifType).Valid() {
				return fmt.Errorf("unknown notification type %q", notifType)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			report, err := rt.container.Dispatcher.SendPending(cmd.Context(), service.SendOptions{
				Type:  model.NotificationType(notifType),
				Force: force,
			})
			if err != nil {
				return err
			}
			rt.log.Info().
				Str("job", "send-notifications").
				Int("total", report.Total).
				Int("sent", report.Sent).
				Int("failed", report.Failed).
				Msg("job finished")
			return nil
		},
	}
	cmd.Flags().StringVar(&notifType, "type", "", "only this notification type")
	cmd.Flags().BoolVar(&force, "force", false, "resend notifications already emailed")
	return cmd
}
