package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayloadKind discriminates NotificationPayload variants.
type PayloadKind string

const (
	PayloadNone       PayloadKind = ""
	PayloadStockLevel PayloadKind = "stock_level"
	PayloadExpiry     PayloadKind = "expiry"
	PayloadReorder    PayloadKind = "reorder"
	PayloadMovement   PayloadKind = "movement"
	PayloadMessage    PayloadKind = "message"
)

// NotificationPayload is the typed extra data of a notification. Exactly the
// field named by Kind is set.
type NotificationPayload struct {
	Kind       PayloadKind        `json:"kind"`
	StockLevel *StockLevelPayload `json:"stock_level,omitempty"`
	Expiry     *ExpiryPayload     `json:"expiry,omitempty"`
	Reorder    *ReorderPayload    `json:"reorder,omitempty"`
	Movement   *MovementPayload   `json:"movement,omitempty"`
	Message    *MessagePayload    `json:"message,omitempty"`
}

type StockLevelPayload struct {
	CurrentStock int             `json:"current_stock"`
	MinimumStock int             `json:"minimum_stock"`
	Category     string          `json:"category,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

type ExpiryPayload struct {
	ExpiryDate    string `json:"expiry_date"` // YYYY-MM-DD
	DaysRemaining int    `json:"days_remaining"`
	CurrentStock  int    `json:"current_stock"`
	Category      string `json:"category,omitempty"`
}

type ReorderPayload struct {
	CurrentStock      int    `json:"current_stock"`
	ReorderLevel      int    `json:"reorder_level"`
	SuggestedQuantity int    `json:"suggested_quantity"`
	Category          string `json:"category,omitempty"`
}

type MovementPayload struct {
	MovementID    uuid.UUID    `json:"movement_id"`
	MovementType  MovementType `json:"movement_type"`
	Quantity      int          `json:"quantity"`
	PreviousStock int          `json:"previous_stock"`
	NewStock      int          `json:"new_stock"`
}

type MessagePayload struct {
	Template string            `json:"template,omitempty"`
	Vars     map[string]string `json:"vars,omitempty"`
}

func NewStockLevelPayload(p StockLevelPayload) NotificationPayload {
	return NotificationPayload{Kind: PayloadStockLevel, StockLevel: &p}
}

func NewExpiryPayload(p ExpiryPayload) NotificationPayload {
	return NotificationPayload{Kind: PayloadExpiry, Expiry: &p}
}

func NewReorderPayload(p ReorderPayload) NotificationPayload {
	return NotificationPayload{Kind: PayloadReorder, Reorder: &p}
}

func NewMovementPayload(p MovementPayload) NotificationPayload {
	return NotificationPayload{Kind: PayloadMovement, Movement: &p}
}

func NewMessagePayload(p MessagePayload) NotificationPayload {
	return NotificationPayload{Kind: PayloadMessage, Message: &p}
}

var ErrPayloadMismatch = errors.New("notification payload does not match its kind")

// Validate checks that only the variant named by Kind is populated.
func (p NotificationPayload) Validate() error {
	set := map[PayloadKind]bool{
		PayloadStockLevel: p.StockLevel != nil,
		PayloadExpiry:     p.Expiry != nil,
		PayloadReorder:    p.Reorder != nil,
		PayloadMovement:   p.Movement != nil,
		PayloadMessage:    p.Message != nil,
	}
	for kind, present := range set {
		if present != (kind == p.Kind) {
			return fmt.Errorf("%w: kind %q", ErrPayloadMismatch, p.Kind)
		}
	}
	if p.Kind != PayloadNone {
		if _, known := set[p.Kind]; !known {
			return fmt.Errorf("%w: unknown kind %q", ErrPayloadMismatch, p.Kind)
		}
	}
	return nil
}
