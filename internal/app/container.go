// Package app wires repositories and services for the api and jobs binaries.
package app

import (
	"context"
	"errors"
	"fmt"

	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"
	"inventory-plus/internal/service"
	"inventory-plus/internal/ws"
	"inventory-plus/pkg/config"
	"inventory-plus/pkg/jwt"
	"inventory-plus/pkg/mailer"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Container struct {
	Products      repository.ProductRepository
	Movements     repository.MovementRepository
	Transactions  repository.TransactionRepository
	Notifications repository.NotificationRepository
	Alerts        repository.AlertRepository
	Templates     repository.TemplateRepository
	Users         repository.UserRepository

	Authz           service.Authorizer
	Ledger          service.LedgerService
	TransactionSvc  service.TransactionService
	Inventory       service.InventoryService
	Dashboard       service.DashboardService
	NotificationSvc service.NotificationService
	Dispatcher      service.Dispatcher
	Generator       service.NotificationGenerator
	TemplateSvc     service.TemplateService
	AlertConfigs    service.AlertConfigService
	UserSvc         service.UserService
	Auth            service.AuthService
}

// Build wires every service against db. hub and mail are injected so tests
// and the jobs binary can pass their own.
func Build(cfg *config.Config, db *gorm.DB, hub ws.Broadcaster, mail mailer.Mailer, log zerolog.Logger) *Container {
	if hub == nil {
		hub = ws.Nop{}
	}
	c := &Container{
		Products:      repository.NewProductRepo(db),
		Movements:     repository.NewMovementRepo(db),
		Transactions:  repository.NewTransactionRepo(db),
		Notifications: repository.NewNotificationRepo(db),
		Alerts:        repository.NewAlertRepo(db),
		Templates:     repository.NewTemplateRepo(db),
		Users:         repository.NewUserRepo(db),
		Authz:         service.NewAuthorizer(),
	}

	policy := service.OverdrawPolicy(cfg.Ledger.OverdrawPolicy)
	windows := service.AlertWindows{
		WarningDays: cfg.Alerts.ExpiryWarningDays,
		UrgentDays:  cfg.Alerts.ExpiryUrgentDays,
		Location:    cfg.App.Location(),
	}

	c.Ledger = service.NewLedgerService(db, c.Products, c.Movements, c.Notifications, hub, policy, log)
	c.TransactionSvc = service.NewTransactionService(db, c.Transactions, c.Products, c.Movements, c.Notifications, hub, policy, log)
	c.Inventory = service.NewInventoryService(c.Products, c.Ledger, hub, log)
	c.Dashboard = service.NewDashboardService(c.Products, c.Movements, windows)
	c.NotificationSvc = service.NewNotificationService(c.Notifications)
	c.Dispatcher = service.NewDispatcher(c.Notifications, c.Users, mail, cfg.App.Name, cfg.App.SiteURL, log)
	c.Generator = service.NewNotificationGenerator(c.Products, c.Notifications, c.Alerts, c.Dispatcher, hub, service.GeneratorConfig{
		Windows:     windows,
		DedupWindow: cfg.Alerts.DedupWindow,
		BatchSize:   cfg.Alerts.ScanBatchSize,
	}, log)
	c.TemplateSvc = service.NewTemplateService(c.Templates, c.Notifications, c.Dispatcher, hub, log)
	c.AlertConfigs = service.NewAlertConfigService(c.Alerts, c.Products, c.Users)
	c.UserSvc = service.NewUserService(db, c.Users, log)

	signer := jwt.NewSigner(cfg.JWT.Secret, cfg.JWT.ExpirationHours, cfg.JWT.Issuer)
	c.Auth = service.NewAuthService(c.Users, signer, c.Authz, hub, log)
	return c
}

// SeedAdmin creates the admin account when no user owns email yet.
func (c *Container) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	if _, err := c.Users.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	_, err := c.UserSvc.CreateUser(ctx, &service.CreateUserRequest{
		Email:    email,
		Password: password,
		FullName: "Administrator",
		Role:     model.RoleAdmin,
	})
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}
