package main

import (
	"context"
	"fmt"
	"os"

	"inventory-plus/internal/repository"
	"inventory-plus/pkg/config"
	"inventory-plus/pkg/database"
	"inventory-plus/pkg/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	var email, password string

	cmd := &cobra.Command{
		Use:          "reset-password",
		Short:        "Set a user's password and end their sessions",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			lg := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

			db, err := database.Connect(cfg.DB, false, lg)
			if err != nil {
				return err
			}
			users := repository.NewUserRepo(db)
			ctx := cmd.Context()

			user, err := users.FindByEmail(ctx, email)
			if err != nil {
				lg.Error().Err(err).Str("email", email).Msg("user not found")
				return err
			}

			if len(password) < 6 {
				return fmt.Errorf("password must be at least 6 characters")
			}
			if err := user.SetPassword(password); err != nil {
				return err
			}
			if err := users.UpdatePassword(ctx, user.ID, user.Password); err != nil {
				return err
			}
			if err := users.UpdateTokenVersion(ctx, user.ID, uuid.New().String()); err != nil {
				return err
			}

			lg.Info().Str("email", email).Msg("password reset")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "admin@example.com", "account email")
	cmd.Flags().StringVar(&password, "password", "", "new password (min 6 characters)")
	_ = cmd.MarkFlagRequired("password")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("reset-password failed")
		os.Exit(1)
	}
}
