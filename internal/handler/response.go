package handler

import (
	"errors"

	"inventory-plus/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var statusByCode = map[string]int{
	"VALIDATION_FAILED":        400,
	"INVALID_MOVEMENT_TYPE":    400,
	"INVALID_QUANTITY":         400,
	"INVALID_TRANSACTION_TYPE": 400,
	"INVALID_ALERT_CONFIG":     400,
	"TEMPLATE_RENDER_FAILED":   400,
	"WRONG_PASSWORD":           400,
	"INVALID_CREDENTIALS":      401,
	"USER_INACTIVE":            401,
	"SESSION_REPLACED":         401,
	"FORBIDDEN":                403,
	"PRODUCT_NOT_FOUND":        404,
	"MOVEMENT_NOT_FOUND":       404,
	"TRANSACTION_NOT_FOUND":    404,
	"NOTIFICATION_NOT_FOUND":   404,
	"TEMPLATE_NOT_FOUND":       404,
	"USER_NOT_FOUND":           404,
	"DUPLICATE_SKU":            409,
	"DUPLICATE_REFERENCE":      409,
	"EMAIL_TAKEN":              409,
	"TRANSACTION_CLOSED":       409,
	"TRANSACTION_CANCELLED":    409,
	"PRODUCT_INACTIVE":         422,
	"INSUFFICIENT_STOCK":       422,
	"REVERSAL_UNDERFLOW":       422,
	"TEMPLATE_INACTIVE":        422,
}

// respondError maps a service error onto a status and an {"error","code"} body.
func respondError(c *fiber.Ctx, err error) error {
	code := service.ReasonCode(err)
	status, ok := statusByCode[code]
	if !ok {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error", "code": code})
	}

	body := fiber.Map{"error": err.Error(), "code": code}
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(400).JSON(fiber.Map{"error": msg, "code": "BAD_REQUEST"})
}

// Helper untuk ambil User Info dari JWT Context (set by auth middleware)
func getUserID(c *fiber.Ctx) *uuid.UUID {
	s, ok := c.Locals("user_id").(string)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}
