package handler

import (
	"inventory-plus/internal/app"
	"inventory-plus/internal/middleware"
	"inventory-plus/internal/model"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the /api/v1 surface on router.
func RegisterRoutes(router fiber.Router, c *app.Container) {
	authHandler := NewAuthHandler(c.Auth)
	userHandler := NewUserHandler(c.UserSvc)
	roleHandler := NewRoleHandler()
	invHandler := NewInventoryHandler(c.Inventory, c.Ledger)
	txnHandler := NewTransactionHandler(c.TransactionSvc)
	notifHandler := NewNotificationHandler(c.NotificationSvc)
	alertHandler := NewAlertHandler(c.AlertConfigs)
	tmplHandler := NewTemplateHandler(c.TemplateSvc)
	dashHandler := NewDashboardHandler(c.Dashboard)
	jobHandler := NewJobHandler(c.Generator, c.Dispatcher)

	requireAuth := middleware.RequireAuth(c.Auth)
	can := func(capability model.Capability) fiber.Handler {
		return middleware.RequireCapability(c.Authz, capability)
	}

	api := router.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/change-password", authHandler.ChangePassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", requireAuth, authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	// Dashboard
	protected.Get("/dashboard/stats", dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", dashHandler.GetStockMovement)
	protected.Get("/dashboard/recent-movements", dashHandler.GetRecentMovements)
	protected.Get("/stock-levels", dashHandler.GetStockLevels)

	// Products
	protected.Get("/products", invHandler.GetProducts)
	protected.Get("/products/:id", invHandler.GetProduct)
	protected.Get("/products/:id/movements", invHandler.ProductHistory)
	protected.Post("/products", can(model.CapAdjustStock), invHandler.CreateProduct)
	protected.Put("/products/:id", can(model.CapAdjustStock), invHandler.UpdateProduct)

	// Alert configuration
	protected.Get("/products/:id/alerts", alertHandler.GetAlerts)
	protected.Put("/products/:id/alerts", can(model.CapManageAlerts), alertHandler.UpsertAlert)

	// Movements
	protected.Get("/movements/:id", invHandler.GetMovement)
	protected.Post("/movements", can(model.CapAdjustStock), invHandler.RecordMovement)

	// Transactions
	protected.Get("/transactions", txnHandler.GetTransactions)
	protected.Get("/transactions/:id", txnHandler.GetTransaction)
	protected.Post("/transactions", can(model.CapManageTransactions), txnHandler.CreateTransaction)
	protected.Post("/transactions/:id/movements", can(model.CapManageTransactions), txnHandler.AddMovement)
	protected.Post("/transactions/:id/complete", can(model.CapManageTransactions), txnHandler.CompleteTransaction)
	protected.Post("/transactions/:id/cancel", can(model.CapManageTransactions), txnHandler.CancelTransaction)

	// Notifications
	protected.Get("/notifications", notifHandler.GetNotifications)
	protected.Get("/notifications/recent", notifHandler.GetRecent)
	protected.Get("/notifications/counts", notifHandler.GetCounts)
	protected.Post("/notifications/read-all", notifHandler.MarkAllRead)
	protected.Get("/notifications/:id", notifHandler.GetNotification)
	protected.Post("/notifications/:id/read", notifHandler.MarkRead)
	protected.Post("/notifications/:id/unread", notifHandler.MarkUnread)
	protected.Delete("/notifications/:id", can(model.CapDeleteRecords), notifHandler.DeleteNotification)

	// Templates
	protected.Get("/templates", tmplHandler.GetTemplates)
	protected.Post("/templates", can(model.CapManageAlerts), tmplHandler.CreateTemplate)
	protected.Put("/templates/:name", can(model.CapManageAlerts), tmplHandler.UpdateTemplate)
	protected.Post("/templates/:name/send", can(model.CapManageAlerts), tmplHandler.SendTemplate)

	// Users and roles
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/users", can(model.CapManageUsers), userHandler.GetUsers)
	protected.Get("/users/:id", can(model.CapManageUsers), userHandler.GetUser)
	protected.Post("/users", can(model.CapManageUsers), userHandler.CreateUser)
	protected.Put("/users/:id/permissions", can(model.CapManageUsers), userHandler.UpdatePermissions)
	protected.Put("/users/:id/active", can(model.CapManageUsers), userHandler.SetActive)

	// Admin job triggers
	jobs := protected.Group("/admin/jobs", can(model.CapManageAlerts))
	jobs.Post("/check-alerts", jobHandler.CheckAlerts)
	jobs.Post("/send-notifications", jobHandler.SendNotifications)
}
