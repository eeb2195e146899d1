package service

import (
	"fmt"
	"time"

	"inventory-plus/internal/model"
)

// AlertWindows are the expiry thresholds, in calendar days, plus the
// location whose calendar "today" is taken from.
type AlertWindows struct {
	WarningDays int
	UrgentDays  int
	Location    *time.Location
}

func DefaultAlertWindows() AlertWindows {
	return AlertWindows{WarningDays: 7, UrgentDays: 3, Location: time.UTC}
}

func (w AlertWindows) location() *time.Location {
	if w.Location == nil {
		return time.UTC
	}
	return w.Location
}

// TriggeredAlert is one predicate that fired for a product.
type TriggeredAlert struct {
	Type     model.NotificationType
	Priority model.Priority
	Title    string
	Message  string
	Payload  model.NotificationPayload
}

// Thresholds are per-product trigger levels from StockAlert configs.
// A nil field keeps the product's own level.
type Thresholds struct {
	LowStock   *int // replaces minimum_stock for low_stock
	Reorder    *int // replaces reorder_level
	ExpiryDays *int // replaces the expiry warning window
}

// Apply returns the product and windows the predicates should see.
func (t Thresholds) Apply(p *model.Product, w AlertWindows) (model.Product, AlertWindows) {
	q := *p
	if t.LowStock != nil {
		q.MinimumStock = *t.LowStock
	}
	if t.Reorder != nil {
		q.ReorderLevel = *t.Reorder
	}
	if t.ExpiryDays != nil {
		w.WarningDays = *t.ExpiryDays
	}
	return q, w
}

// EvaluateProduct runs every predicate against p and returns all that fired.
func EvaluateProduct(p *model.Product, now time.Time, w AlertWindows) []TriggeredAlert {
	var alerts []TriggeredAlert
	if stock := EvaluateStockLevel(p); stock != nil {
		alerts = append(alerts, *stock)
	}
	if reorder := EvaluateReorder(p); reorder != nil {
		alerts = append(alerts, *reorder)
	}
	if expiry := EvaluateExpiry(p, now, w); expiry != nil {
		alerts = append(alerts, *expiry)
	}
	return alerts
}

// EvaluateStockLevel returns out_of_stock at zero, low_stock at or below the minimum.
func EvaluateStockLevel(p *model.Product) *TriggeredAlert {
	payload := model.NewStockLevelPayload(model.StockLevelPayload{
		CurrentStock: p.StockQuantity,
		MinimumStock: p.MinimumStock,
		Category:     p.Category,
		UnitPrice:    p.UnitPrice,
	})

	switch {
	case p.StockQuantity == 0:
		return &TriggeredAlert{
			Type:     model.NotifOutOfStock,
			Priority: model.PriorityUrgent,
			Title:    fmt.Sprintf("Out of Stock: %s", p.Name),
			Message:  fmt.Sprintf("Product %s (SKU: %s) is out of stock. Minimum required: %d", p.Name, p.SKU, p.MinimumStock),
			Payload:  payload,
		}
	case p.StockQuantity <= p.MinimumStock:
		msg := fmt.Sprintf("Product %s (SKU: %s) is running low on stock. Current quantity: %d, Minimum required: %d",
			p.Name, p.SKU, p.StockQuantity, p.MinimumStock)
		return &TriggeredAlert{
			Type:     model.NotifLowStock,
			Priority: model.PriorityHigh,
			Title:    fmt.Sprintf("Low Stock Alert: %s", p.Name),
			Message:  msg,
			Payload:  payload,
		}
	}
	return nil
}

func EvaluateReorder(p *model.Product) *TriggeredAlert {
	if p.StockQuantity > p.ReorderLevel {
		return nil
	}
	suggested := p.MaximumStock - p.StockQuantity
	if suggested < 0 {
		suggested = 0
	}
	msg := fmt.Sprintf("Product %s (SKU: %s) reached its reorder level. Current quantity: %d, Reorder level: %d",
		p.Name, p.SKU, p.StockQuantity, p.ReorderLevel)
	return &TriggeredAlert{
		Type:     model.NotifReorderPoint,
		Priority: model.PriorityMedium,
		Title:    fmt.Sprintf("Reorder Needed: %s", p.Name),
		Message:  msg,
		Payload: model.NewReorderPayload(model.ReorderPayload{
			CurrentStock:      p.StockQuantity,
			ReorderLevel:      p.ReorderLevel,
			SuggestedQuantity: suggested,
			Category:          p.Category,
		}),
	}
}

// EvaluateExpiry compares calendar days: expiry before today is expired,
// expiry within (today, today+WarningDays] is expiry_soon. Expiry today fires neither.
func EvaluateExpiry(p *model.Product, now time.Time, w AlertWindows) *TriggeredAlert {
	if !p.HasExpiry || p.ExpiryDate == nil {
		return nil
	}
	days := DaysUntil(*p.ExpiryDate, now, w.location())
	expiry := p.ExpiryDate.UTC().Format("2006-01-02")
	payload := model.NewExpiryPayload(model.ExpiryPayload{
		ExpiryDate:    expiry,
		DaysRemaining: days,
		CurrentStock:  p.StockQuantity,
		Category:      p.Category,
	})

	switch {
	case days < 0:
		return &TriggeredAlert{
			Type:     model.NotifExpired,
			Priority: model.PriorityUrgent,
			Title:    fmt.Sprintf("Expired Product: %s", p.Name),
			Message:  fmt.Sprintf("Product %s (SKU: %s) has expired on %s. Please remove from inventory.", p.Name, p.SKU, expiry),
			Payload:  payload,
		}
	case days > 0 && days <= w.WarningDays:
		return &TriggeredAlert{
			Type:     model.NotifExpirySoon,
			Priority: ExpiryPriority(days, w),
			Title:    fmt.Sprintf("Product Expiring Soon: %s", p.Name),
			Message:  fmt.Sprintf("Product %s (SKU: %s) will expire in %d days on %s", p.Name, p.SKU, days, expiry),
			Payload:  payload,
		}
	}
	return nil
}

// ExpiryPriority maps days left to urgency.
func ExpiryPriority(days int, w AlertWindows) model.Priority {
	switch {
	case days <= w.UrgentDays:
		return model.PriorityUrgent
	case days <= w.WarningDays:
		return model.PriorityHigh
	default:
		return model.PriorityMedium
	}
}

// DaysUntil counts calendar days from today (in loc) to the expiry date.
// Expiry dates are stored as UTC midnight, so their UTC calendar date is used.
func DaysUntil(expiry, now time.Time, loc *time.Location) int {
	ey, em, ed := expiry.UTC().Date()
	ny, nm, nd := now.In(loc).Date()
	e := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(e.Sub(n).Hours() / 24)
}
