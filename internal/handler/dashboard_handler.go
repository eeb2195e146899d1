package handler

import (
	"strconv"

	"inventory-plus/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	daysStr := c.Query("days", "7")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.service.GetStockMovement(c.UserContext(), days)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(stats)
}

// GetRecentMovements
// Query params: limit (default 10)
func (h *DashboardHandler) GetRecentMovements(c *fiber.Ctx) error {
	movements, err := h.service.RecentMovements(c.UserContext(), c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movements)
}

// GetStockLevels returns the current stock of every active product
func (h *DashboardHandler) GetStockLevels(c *fiber.Ctx) error {
	levels, err := h.service.StockLevels(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(levels)
}
