package handler

import (
	"inventory-plus/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AlertHandler struct {
	service service.AlertConfigService
}

func NewAlertHandler(s service.AlertConfigService) *AlertHandler {
	return &AlertHandler{service: s}
}

// UpsertAlert creates or replaces one product's config for an alert type
// PUT /api/v1/products/:id/alerts
func (h *AlertHandler) UpsertAlert(c *fiber.Ctx) error {
	productID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	var in service.AlertConfigInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	in.ProductID = productID

	alert, err := h.service.Upsert(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Alert configuration saved", "data": alert})
}

// GET /api/v1/products/:id/alerts
func (h *AlertHandler) GetAlerts(c *fiber.Ctx) error {
	productID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	alerts, err := h.service.List(c.UserContext(), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(alerts)
}
