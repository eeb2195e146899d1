package handler

import (
	"strconv"

	"inventory-plus/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
	ledger  service.LedgerService
}

func NewInventoryHandler(s service.InventoryService, ledger service.LedgerService) *InventoryHandler {
	return &InventoryHandler{service: s, ledger: ledger}
}

// CreateProduct
// POST /api/v1/products
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	product, err := h.service.CreateProduct(c.UserContext(), &req, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// UpdateProduct
// PUT /api/v1/products/:id
func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	productID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}

	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), productID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

// GET /api/v1/products
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// GET /api/v1/products/:id
func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	productID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	product, err := h.service.GetProductByID(c.UserContext(), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// RecordMovement applies one stock movement
// POST /api/v1/movements
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var in service.MovementInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	in.ActorID = getUserID(c)

	movement, err := h.ledger.RecordMovement(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Movement recorded", "data": movement})
}

// GET /api/v1/movements/:id
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid movement ID")
	}
	movement, err := h.ledger.GetMovement(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movement)
}

// ProductHistory lists a product's movements, newest first
// GET /api/v1/products/:id/movements?limit=50
func (h *InventoryHandler) ProductHistory(c *fiber.Ctx) error {
	productID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	movements, err := h.ledger.ProductHistory(c.UserContext(), productID, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movements)
}
