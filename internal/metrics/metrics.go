package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MovementsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_stock_movements_total",
			Help: "Stock movements recorded, by movement type",
		},
		[]string{"movement_type"},
	)

	MovementsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_stock_movements_rejected_total",
			Help: "Stock movements refused by validation, by reason code",
		},
		[]string{"reason"},
	)

	TransactionsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_transactions_finished_total",
			Help: "Inventory transactions completed or cancelled",
		},
		[]string{"status"},
	)

	NotificationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_notifications_created_total",
			Help: "Notifications persisted, by notification type",
		},
		[]string{"type"},
	)

	NotificationsSuppressed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_notifications_suppressed_total",
			Help: "Triggered alerts skipped by the dedup window or a muted alert config",
		},
		[]string{"type", "reason"},
	)

	EmailsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_notification_emails_total",
			Help: "Notification email attempts, by outcome",
		},
		[]string{"outcome"}, // sent, failed, skipped
	)

	AlertScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inventory_alert_scan_duration_seconds",
			Help:    "Duration of a full alert scan",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(MovementsRecorded)
	prometheus.MustRegister(MovementsRejected)
	prometheus.MustRegister(TransactionsFinished)
	prometheus.MustRegister(NotificationsCreated)
	prometheus.MustRegister(NotificationsSuppressed)
	prometheus.MustRegister(EmailsDispatched)
	prometheus.MustRegister(AlertScanDuration)
}
