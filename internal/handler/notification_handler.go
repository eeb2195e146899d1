package handler

import (
	"strconv"

	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"
	"inventory-plus/internal/service"

	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(s service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: s}
}

// GetNotifications lists the caller's notifications plus broadcasts
// GET /api/v1/notifications?type=&priority=&unread=true&limit=50
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	uid := getUserID(c)
	if uid == nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized", "code": "UNAUTHORIZED"})
	}
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	f := repository.NotificationFilter{
		Type:       model.NotificationType(c.Query("type")),
		Priority:   model.Priority(c.Query("priority")),
		UnreadOnly: c.QueryBool("unread", false),
		Limit:      limit,
	}
	items, err := h.service.List(c.UserContext(), *uid, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// GET /api/v1/notifications/recent
func (h *NotificationHandler) GetRecent(c *fiber.Ctx) error {
	uid := getUserID(c)
	if uid == nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized", "code": "UNAUTHORIZED"})
	}
	items, err := h.service.Recent(c.UserContext(), *uid, c.QueryInt("limit", 5))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// GET /api/v1/notifications/counts
func (h *NotificationHandler) GetCounts(c *fiber.Ctx) error {
	uid := getUserID(c)
	if uid == nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized", "code": "UNAUTHORIZED"})
	}
	counts, err := h.service.Counts(c.UserContext(), *uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(counts)
}

// GET /api/v1/notifications/:id
func (h *NotificationHandler) GetNotification(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid notification ID")
	}
	n, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(n)
}

// POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid notification ID")
	}
	if err := h.service.MarkRead(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// POST /api/v1/notifications/:id/unread
func (h *NotificationHandler) MarkUnread(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid notification ID")
	}
	if err := h.service.MarkUnread(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	uid := getUserID(c)
	if uid == nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized", "code": "UNAUTHORIZED"})
	}
	n, err := h.service.MarkAllRead(c.UserContext(), *uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "count": n})
}

// DELETE /api/v1/notifications/:id
func (h *NotificationHandler) DeleteNotification(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid notification ID")
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(204)
}
