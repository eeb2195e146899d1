package handler

import (
	"inventory-plus/internal/model"
	"inventory-plus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// JobHandler runs the alert scan and the email sweep on demand.
type JobHandler struct {
	generator  service.NotificationGenerator
	dispatcher service.Dispatcher
}

func NewJobHandler(generator service.NotificationGenerator, dispatcher service.Dispatcher) *JobHandler {
	return &JobHandler{generator: generator, dispatcher: dispatcher}
}

type checkAlertsRequest struct {
	Type      service.CheckGroup `json:"type"`
	DryRun    bool               `json:"dry_run"`
	SendEmail bool               `json:"send_email"`
}

// CheckAlerts
// POST /api/v1/admin/jobs/check-alerts
func (h *JobHandler) CheckAlerts(c *fiber.Ctx) error {
	var req checkAlertsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid JSON")
		}
	}
	report, err := h.generator.Generate(c.UserContext(), service.GenerateOptions{
		Checks:    req.Type,
		DryRun:    req.DryRun,
		SendEmail: req.SendEmail,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

type sendNotificationsRequest struct {
	Type  model.NotificationType `json:"type"`
	Force bool                   `json:"force"`
}

// SendNotifications
// POST /api/v1/admin/jobs/send-notifications
func (h *JobHandler) SendNotifications(c *fiber.Ctx) error {
	var req sendNotificationsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid JSON")
		}
	}
	report, err := h.dispatcher.SendPending(c.UserContext(), service.SendOptions{Type: req.Type, Force: req.Force})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}
