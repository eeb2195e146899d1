package handler

import (
	"inventory-plus/internal/model"

	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct{}

func NewRoleHandler() *RoleHandler {
	return &RoleHandler{}
}

type roleInfo struct {
	Role        model.Role        `json:"role"`
	Privileged  bool              `json:"privileged"`
	Permissions model.Permissions `json:"default_permissions"`
}

// GetRoles returns all available roles with their default permissions
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles := []model.Role{model.RoleAdmin, model.RoleManager, model.RoleEmployee}
	out := make([]roleInfo, 0, len(roles))
	for _, r := range roles {
		out = append(out, roleInfo{Role: r, Privileged: r.Privileged(), Permissions: model.DefaultPermissions(r)})
	}
	return c.JSON(fiber.Map{
		"roles":        out,
		"capabilities": model.AllCapabilities,
	})
}
