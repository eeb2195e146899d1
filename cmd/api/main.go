package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-plus/internal/app"
	"inventory-plus/internal/handler"
	"inventory-plus/internal/ws"
	"inventory-plus/pkg/config"
	"inventory-plus/pkg/database"
	"inventory-plus/pkg/logger"
	"inventory-plus/pkg/mailer"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Config + logger
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	lg := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	// 2. Setup Database
	db, err := database.Connect(cfg.DB, cfg.App.IsDevelopment(), lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("database")
	}
	if err := database.Migrate(db); err != nil {
		lg.Fatal().Err(err).Msg("migrate")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub(lg)
	go wsHub.Run(ctx)

	// 4. Dependency Injection (Wiring Layers)
	mail := mailer.New(mailer.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		User:     cfg.Mail.User,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	}, lg)
	container := app.Build(cfg, db, wsHub, mail, lg)

	// 5. Seed admin user
	adminPassword := cfg.App.AdminPassword
	if adminPassword == "" && cfg.App.IsDevelopment() {
		adminPassword = "admin123"
	}
	if created, err := container.SeedAdmin(ctx, cfg.App.AdminEmail, adminPassword); err != nil {
		lg.Warn().Err(err).Msg("seed admin user")
	} else if created {
		lg.Info().Str("email", cfg.App.AdminEmail).Msg("admin user created")
	}

	// 6. Setup Fiber
	server := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
	})

	// Middleware
	server.Use(fiberlogger.New()) // Logging request
	server.Use(recover.New())     // Panic recovery
	server.Use(cors.New())        // CORS

	server.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(503).JSON(fiber.Map{"status": "unavailable", "error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": wsHub.ClientCount()})
	})
	server.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// 7. Routes
	handler.RegisterRoutes(server, container)

	// WebSocket Route
	server.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	server.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() {
			select {
			case wsHub.Unregister <- c:
			case <-ctx.Done():
			}
		}()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := server.Listen(cfg.HTTP.Addr()); err != nil {
			lg.Error().Err(err).Msg("listen")
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info().Msg("Shutting down server...")
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		lg.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}
	lg.Info().Msg("Server exited")
}
