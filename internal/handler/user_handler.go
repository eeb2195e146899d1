package handler

import (
	"inventory-plus/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser handles user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	user, err := h.userService.CreateUser(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "User created successfully",
		"data":    user,
	})
}

// UpdatePermissions changes a user's role and capability flags
// PUT /api/v1/users/:id/permissions
func (h *UserHandler) UpdatePermissions(c *fiber.Ctx) error {
	userID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	var req service.UpdatePermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	user, err := h.userService.UpdatePermissions(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Permissions updated successfully",
		"data":    user,
	})
}

// SetActive enables or disables a user account
// PUT /api/v1/users/:id/active
func (h *UserHandler) SetActive(c *fiber.Ctx) error {
	userID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if err := h.userService.SetActive(c.UserContext(), userID, req.IsActive); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User updated successfully"})
}

// GetUsers returns all users
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.GetAllUsers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetUser returns a single user by ID
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	user, err := h.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(user)
}
