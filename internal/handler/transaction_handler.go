package handler

import (
	"inventory-plus/internal/model"
	"inventory-plus/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	service service.TransactionService
}

func NewTransactionHandler(s service.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// CreateTransaction opens a draft transaction
// POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var in service.TransactionInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	in.ActorID = getUserID(c)

	txn, err := h.service.CreateTransaction(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Transaction created", "data": txn})
}

// AddMovement
// POST /api/v1/transactions/:id/movements
func (h *TransactionHandler) AddMovement(c *fiber.Ctx) error {
	txnID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid transaction ID")
	}
	var in service.MovementInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	in.ActorID = getUserID(c)

	movement, err := h.service.AddMovement(c.UserContext(), txnID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Movement recorded", "data": movement})
}

// POST /api/v1/transactions/:id/complete
func (h *TransactionHandler) CompleteTransaction(c *fiber.Ctx) error {
	txnID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid transaction ID")
	}
	txn, err := h.service.CompleteTransaction(c.UserContext(), txnID, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction completed", "data": txn})
}

// POST /api/v1/transactions/:id/cancel
func (h *TransactionHandler) CancelTransaction(c *fiber.Ctx) error {
	txnID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid transaction ID")
	}
	txn, err := h.service.CancelTransaction(c.UserContext(), txnID, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction cancelled", "data": txn})
}

// GET /api/v1/transactions?status=pending
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	transactions, err := h.service.ListTransactions(c.UserContext(), model.TransactionStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transactions)
}

// GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	txnID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid transaction ID")
	}

	txn, err := h.service.GetTransaction(c.UserContext(), txnID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(txn)
}
