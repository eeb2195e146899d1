package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"inventory-plus/internal/metrics"
	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"
	"inventory-plus/pkg/mailer"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// SendOptions filters the send-pending job. Force resends notifications
// already marked as sent.
type SendOptions struct {
	Type  model.NotificationType
	Force bool
}

// DispatchReport summarizes one send-pending run.
type DispatchReport struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Dispatcher emails persisted notifications. Delivery is best effort:
// failures are logged and reported as false, never returned.
type Dispatcher interface {
	Dispatch(ctx context.Context, n *model.Notification) bool
	SendPending(ctx context.Context, opts SendOptions) (*DispatchReport, error)
}

type dispatcher struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	mail          mailer.Mailer
	siteName      string
	siteURL       string
	log           zerolog.Logger
	now           func() time.Time
}

func NewDispatcher(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	mail mailer.Mailer,
	siteName, siteURL string,
	log zerolog.Logger,
) Dispatcher {
	if siteName == "" {
		siteName = "Inventory Plus"
	}
	return &dispatcher{
		notifications: notificationRepo,
		users:         userRepo,
		mail:          mail,
		siteName:      siteName,
		siteURL:       siteURL,
		log:           log.With().Str("component", "dispatcher").Logger(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// recipients resolves the addressed user, or every active admin and manager.
func (d *dispatcher) recipients(ctx context.Context, n *model.Notification) ([]string, error) {
	if n.UserID != nil {
		user := n.User
		if user == nil {
			u, err := d.users.FindByID(ctx, *n.UserID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			user = u
		}
		if !user.IsActive || user.Email == "" {
			return nil, nil
		}
		return []string{user.Email}, nil
	}

	users, err := d.users.FindPrivilegedRecipients(ctx)
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	return emails, nil
}

func (d *dispatcher) Dispatch(ctx context.Context, n *model.Notification) bool {
	log := d.log.With().Str("notification_id", n.ID.String()).Str("type", string(n.Type)).Logger()

	to, err := d.recipients(ctx, n)
	if err != nil {
		log.Error().Err(err).Msg("resolve recipients")
		metrics.EmailsDispatched.WithLabelValues("failed").Inc()
		return false
	}
	if len(to) == 0 {
		log.Warn().Msg("no recipients found, email skipped")
		metrics.EmailsDispatched.WithLabelValues("skipped").Inc()
		return false
	}

	msg, err := d.compose(n, to)
	if err != nil {
		log.Error().Err(err).Msg("render notification email")
		metrics.EmailsDispatched.WithLabelValues("failed").Inc()
		return false
	}
	if err := d.mail.Send(ctx, msg); err != nil {
		log.Error().Err(err).Int("recipients", len(to)).Msg("send notification email")
		metrics.EmailsDispatched.WithLabelValues("failed").Inc()
		return false
	}

	sentAt := d.now()
	if err := d.notifications.MarkEmailSent(ctx, n.ID, sentAt); err != nil {
		// The email left; a failed status write only risks a resend.
		log.Error().Err(err).Msg("mark notification email sent")
	}
	n.IsEmailSent = true
	n.EmailSentAt = &sentAt

	log.Info().Int("recipients", len(to)).Msg("notification email sent")
	metrics.EmailsDispatched.WithLabelValues("sent").Inc()
	return true
}

func (d *dispatcher) SendPending(ctx context.Context, opts SendOptions) (*DispatchReport, error) {
	pending, err := d.notifications.FindPending(ctx, opts.Type, opts.Force)
	if err != nil {
		return nil, fmt.Errorf("load pending notifications: %w", err)
	}

	report := &DispatchReport{Total: len(pending)}
	for i := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if d.Dispatch(ctx, &pending[i]) {
			report.Sent++
		} else {
			report.Failed++
		}
	}

	d.log.Info().
		Int("total", report.Total).
		Int("sent", report.Sent).
		Int("failed", report.Failed).
		Bool("force", opts.Force).
		Str("type", string(opts.Type)).
		Msg("send pending notifications finished")
	return report, nil
}

const plainEmail = `%s

%s

Priority: %s
Type: %s
Created: %s

---
%s System
`

var htmlEmail = template.Must(template.New("notification_email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <h2>{{.Title}}</h2>
  <p>{{.Message}}</p>
  <table>
    <tr><td><strong>Priority:</strong></td><td>{{.Priority}}</td></tr>
    <tr><td><strong>Type:</strong></td><td>{{.Type}}</td></tr>
    <tr><td><strong>Created:</strong></td><td>{{.Created}}</td></tr>
  </table>
  {{if .SiteURL}}<p><a href="{{.SiteURL}}/notifications/{{.ID}}">View notification</a></p>{{end}}
  <hr>
  <p>{{.SiteName}} System</p>
</body>
</html>`))

func (d *dispatcher) compose(n *model.Notification, to []string) (mailer.Message, error) {
	created := n.CreatedAt.UTC().Format(time.RFC3339)
	data := map[string]interface{}{
		"ID":       n.ID,
		"Title":    n.Title,
		"Message":  n.Message,
		"Priority": n.Priority.Label(),
		"Type":     n.Type.Label(),
		"Created":  created,
		"SiteName": d.siteName,
		"SiteURL":  d.siteURL,
	}
	var html bytes.Buffer
	if err := htmlEmail.Execute(&html, data); err != nil {
		return mailer.Message{}, err
	}

	return mailer.Message{
		Subject:   fmt.Sprintf("[%s] %s", d.siteName, n.Title),
		PlainBody: fmt.Sprintf(plainEmail, n.Title, n.Message, n.Priority.Label(), n.Type.Label(), created, d.siteName),
		HTMLBody:  html.String(),
		To:        to,
	}, nil
}
