package service

import (
	"context"
	"fmt"
	"time"

	"inventory-plus/internal/metrics"
	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"
	"inventory-plus/internal/ws"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckGroup selects which predicates a scan runs.
type CheckGroup string

const (
	CheckAll      CheckGroup = "all"
	CheckLowStock CheckGroup = "low_stock" // low_stock + out_of_stock
	CheckExpiry   CheckGroup = "expiry"    // expiry_soon + expired
	CheckReorder  CheckGroup = "reorder"
)

func (g CheckGroup) Valid() bool {
	switch g {
	case CheckAll, CheckLowStock, CheckExpiry, CheckReorder:
		return true
	}
	return false
}

func (g CheckGroup) covers(t model.NotificationType) bool {
	switch g {
	case CheckAll:
		return true
	case CheckLowStock:
		return t.IsStockLevel()
	case CheckExpiry:
		return t == model.NotifExpirySoon || t == model.NotifExpired
	case CheckReorder:
		return t == model.NotifReorderPoint
	}
	return false
}

// SelectAlerts keeps the alerts covered by checks. When a stock-level alert
// is kept, reorder_point is dropped.
func SelectAlerts(alerts []TriggeredAlert, checks CheckGroup) []TriggeredAlert {
	var selected []TriggeredAlert
	stockLevel := false
	for _, a := range alerts {
		if checks.covers(a.Type) {
			selected = append(selected, a)
			stockLevel = stockLevel || a.Type.IsStockLevel()
		}
	}
	if !stockLevel {
		return selected
	}
	out := selected[:0]
	for _, a := range selected {
		if a.Type != model.NotifReorderPoint {
			out = append(out, a)
		}
	}
	return out
}

type GenerateOptions struct {
	Checks    CheckGroup
	DryRun    bool
	SendEmail bool
}

// GenerateReport counts notifications per check group. In a dry run the
// counts are what would have been created.
type GenerateReport struct {
	LowStock   int  `json:"low_stock_alerts"`
	Expiry     int  `json:"expiry_alerts"`
	Reorder    int  `json:"reorder_alerts"`
	Total      int  `json:"total"`
	Suppressed int  `json:"suppressed"`
	Emailed    int  `json:"emailed"`
	// EmailOff counts notifications whose alert config disables email.
	EmailOff int  `json:"email_off"`
	Scanned  int  `json:"products_scanned"`
	DryRun   bool `json:"dry_run"`
}

func (r *GenerateReport) add(t model.NotificationType) {
	switch {
	case t.IsStockLevel():
		r.LowStock++
	case t == model.NotifExpirySoon || t == model.NotifExpired:
		r.Expiry++
	case t == model.NotifReorderPoint:
		r.Reorder++
	}
	r.Total++
}

type GeneratorConfig struct {
	Windows     AlertWindows
	DedupWindow time.Duration
	BatchSize   int
}

type NotificationGenerator interface {
	Generate(ctx context.Context, opts GenerateOptions) (*GenerateReport, error)
}

type notificationGenerator struct {
	products      repository.ProductRepository
	notifications repository.NotificationRepository
	alerts        repository.AlertRepository
	dispatcher    Dispatcher
	hub           ws.Broadcaster
	cfg           GeneratorConfig
	log           zerolog.Logger
	now           func() time.Time
}

func NewNotificationGenerator(
	productRepo repository.ProductRepository,
	notificationRepo repository.NotificationRepository,
	alertRepo repository.AlertRepository,
	dispatcher Dispatcher,
	hub ws.Broadcaster,
	cfg GeneratorConfig,
	log zerolog.Logger,
) NotificationGenerator {
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = 24 * time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.Windows.WarningDays == 0 && cfg.Windows.UrgentDays == 0 {
		cfg.Windows = DefaultAlertWindows()
	}
	if hub == nil {
		hub = ws.Nop{}
	}
	return &notificationGenerator{
		products:      productRepo,
		notifications: notificationRepo,
		alerts:        alertRepo,
		dispatcher:    dispatcher,
		hub:           hub,
		cfg:           cfg,
		log:           log.With().Str("component", "generator").Logger(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

type alertKey struct {
	productID uuid.UUID
	alertType model.NotificationType
}

func (g *notificationGenerator) Generate(ctx context.Context, opts GenerateOptions) (*GenerateReport, error) {
	if opts.Checks == "" {
		opts.Checks = CheckAll
	}
	if !opts.Checks.Valid() {
		return nil, fmt.Errorf("%w: unknown check group %q", ErrValidation, opts.Checks)
	}

	started := time.Now()
	now := g.now()
	since := now.Add(-g.cfg.DedupWindow)
	report := &GenerateReport{DryRun: opts.DryRun}

	err := g.products.ScanActive(ctx, g.cfg.BatchSize, func(batch []model.Product) error {
		configs, err := g.alertConfigs(ctx, batch)
		if err != nil {
			return err
		}
		for i := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := &batch[i]
			report.Scanned++
			q, w := configs.thresholds(p.ID).Apply(p, g.cfg.Windows)
			for _, alert := range SelectAlerts(EvaluateProduct(&q, now, w), opts.Checks) {
				if err := g.handle(ctx, p, alert, since, configs[alertKey{p.ID, alert.Type}], opts, report); err != nil {
					return err
				}
			}
		}
		return nil
	})
	metrics.AlertScanDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return report, fmt.Errorf("alert scan: %w", err)
	}

	g.log.Info().
		Str("checks", string(opts.Checks)).
		Bool("dry_run", opts.DryRun).
		Int("scanned", report.Scanned).
		Int("low_stock", report.LowStock).
		Int("expiry", report.Expiry).
		Int("reorder", report.Reorder).
		Int("suppressed", report.Suppressed).
		Int("email_off", report.EmailOff).
		Int("total", report.Total).
		Msg("alert scan finished")
	return report, nil
}

// alertConfigSet indexes StockAlert rows by (product, alert type).
type alertConfigSet map[alertKey]*model.StockAlert

// thresholds collects the threshold overrides of the product's active configs.
func (s alertConfigSet) thresholds(productID uuid.UUID) Thresholds {
	var t Thresholds
	pick := func(typ model.NotificationType) *int {
		c := s[alertKey{productID, typ}]
		if c == nil || !c.IsActive {
			return nil
		}
		return c.ThresholdValue
	}
	t.LowStock = pick(model.NotifLowStock)
	t.Reorder = pick(model.NotifReorderPoint)
	t.ExpiryDays = pick(model.NotifExpirySoon)
	return t
}

// alertConfigs loads the StockAlert configs for the batch.
func (g *notificationGenerator) alertConfigs(ctx context.Context, batch []model.Product) (alertConfigSet, error) {
	ids := make([]uuid.UUID, 0, len(batch))
	for _, p := range batch {
		ids = append(ids, p.ID)
	}
	rows, err := g.alerts.FindByProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	set := make(alertConfigSet, len(rows))
	for i := range rows {
		set[alertKey{rows[i].ProductID, rows[i].AlertType}] = &rows[i]
	}
	return set, nil
}

func (g *notificationGenerator) handle(
	ctx context.Context,
	p *model.Product,
	alert TriggeredAlert,
	since time.Time,
	config *model.StockAlert,
	opts GenerateOptions,
	report *GenerateReport,
) error {
	if config != nil && !config.IsActive {
		report.Suppressed++
		metrics.NotificationsSuppressed.WithLabelValues(string(alert.Type), "muted").Inc()
		return nil
	}

	exists, err := g.notifications.ExistsSince(ctx, p.ID, alert.Type, since)
	if err != nil {
		return err
	}
	if exists {
		report.Suppressed++
		metrics.NotificationsSuppressed.WithLabelValues(string(alert.Type), "dedup").Inc()
		return nil
	}

	if opts.DryRun {
		report.add(alert.Type)
		return nil
	}

	productID := p.ID
	n := &model.Notification{
		Type:      alert.Type,
		Title:     alert.Title,
		Message:   alert.Message,
		Priority:  alert.Priority,
		ProductID: &productID,
		Payload:   alert.Payload,
	}
	if err := g.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("create %s notification for %s: %w", alert.Type, p.SKU, err)
	}
	report.add(alert.Type)
	metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()

	if err := g.alerts.TouchLastTriggered(ctx, p.ID, alert.Type, n.CreatedAt); err != nil {
		g.log.Warn().Err(err).Str("sku", p.SKU).Msg("stamp alert last_triggered")
	}

	g.hub.Publish(ws.Event{
		Type:   "notification",
		Action: "created",
		Data: map[string]interface{}{
			"id":         n.ID,
			"type":       n.Type,
			"priority":   n.Priority,
			"product_id": p.ID,
		},
		Message: n.Title,
	})

	if !opts.SendEmail || g.dispatcher == nil {
		return nil
	}
	if config != nil && !config.EmailNotifications {
		report.EmailOff++
		return nil
	}
	if g.dispatcher.Dispatch(ctx, n) {
		report.Emailed++
	}
	return nil
}
