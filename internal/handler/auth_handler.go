package handler

import (
	"inventory-plus/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents the change password request body
type ChangePasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	response, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(response)
}

// ChangePassword handles password change
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if req.Email == "" || req.OldPassword == "" || req.NewPassword == "" {
		return badRequest(c, "Email, old_password, and new_password are required")
	}

	if err := h.authService.ChangePassword(c.UserContext(), req.Email, req.OldPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// Heartbeat
// POST /api/v1/auth/heartbeat
func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	id := getUserID(c)
	if id == nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized", "code": "UNAUTHORIZED"})
	}

	if err := h.authService.Heartbeat(c.UserContext(), *id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Heartbeat received", "status": "online"})
}

// ValidateTokenRequest represents the validate token request body
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateToken handles JWT token validation
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if req.Token == "" {
		return badRequest(c, "Token is required")
	}

	response, err := h.authService.ValidateToken(c.UserContext(), req.Token)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error(), "code": "UNAUTHORIZED"})
	}

	return c.JSON(response)
}
