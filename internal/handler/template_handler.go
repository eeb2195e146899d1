package handler

import (
	"inventory-plus/internal/model"
	"inventory-plus/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TemplateHandler struct {
	service service.TemplateService
}

func NewTemplateHandler(s service.TemplateService) *TemplateHandler {
	return &TemplateHandler{service: s}
}

// GET /api/v1/templates
func (h *TemplateHandler) GetTemplates(c *fiber.Ctx) error {
	templates, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(templates)
}

// POST /api/v1/templates
func (h *TemplateHandler) CreateTemplate(c *fiber.Ctx) error {
	var tmpl model.NotificationTemplate
	if err := c.BodyParser(&tmpl); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if err := h.service.Create(c.UserContext(), &tmpl); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Template created", "data": tmpl})
}

// PUT /api/v1/templates/:name
func (h *TemplateHandler) UpdateTemplate(c *fiber.Ctx) error {
	var tmpl model.NotificationTemplate
	if err := c.BodyParser(&tmpl); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	updated, err := h.service.Update(c.UserContext(), c.Params("name"), &tmpl)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Template updated", "data": updated})
}

type sendTemplateRequest struct {
	Vars      map[string]string `json:"vars"`
	ProductID *uuid.UUID        `json:"product_id"`
	UserID    *uuid.UUID        `json:"user_id"`
}

// SendTemplate renders a template into a notification
// POST /api/v1/templates/:name/send
func (h *TemplateHandler) SendTemplate(c *fiber.Ctx) error {
	var req sendTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	n, err := h.service.CreateFromTemplate(c.UserContext(), c.Params("name"), req.Vars, req.ProductID, req.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Notification created", "data": n})
}
