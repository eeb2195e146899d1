package middleware

import (
	"errors"
	"strings"

	"inventory-plus/internal/model"
	"inventory-plus/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequireAuth is middleware that validates JWT token and sets user info in context
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token", "code": "UNAUTHORIZED"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>", "code": "UNAUTHORIZED"})
		}

		res, err := auth.ValidateToken(c.UserContext(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSessionReplaced), errors.Is(err, service.ErrUserInactive), errors.Is(err, service.ErrUserNotFound):
				return c.Status(401).JSON(fiber.Map{"error": err.Error(), "code": service.ReasonCode(err)})
			}
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token", "code": "UNAUTHORIZED"})
		}

		c.Locals("user_id", res.User.ID.String())
		c.Locals("user_email", res.User.Email)
		c.Locals("user_name", res.User.FullName)
		c.Locals("user_role", string(res.User.Role))
		c.Locals("user_profile", res.Profile)
		c.Locals("user_capabilities", res.Capabilities)

		return c.Next()
	}
}

// RequireCapability lets the request through when the authorizer grants cap
// to the profile RequireAuth loaded.
func RequireCapability(authz service.Authorizer, capability model.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, _ := c.Locals("user_profile").(*model.UserProfile)
		if !authz.Can(profile, capability) {
			return c.Status(403).JSON(fiber.Map{
				"error": "Forbidden: requires '" + string(capability) + "' capability",
				"code":  "FORBIDDEN",
			})
		}
		return c.Next()
	}
}

// CurrentUserID returns the authenticated user's id, or uuid.Nil.
func CurrentUserID(c *fiber.Ctx) uuid.UUID {
	s, _ := c.Locals("user_id").(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
