package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"inventory-plus/internal/metrics"
	"inventory-plus/internal/model"
	"inventory-plus/internal/repository"
	"inventory-plus/internal/ws"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Rendered is a template's output for one set of variables.
type Rendered struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type TemplateService interface {
	Create(ctx context.Context, tmpl *model.NotificationTemplate) error
	Update(ctx context.Context, name string, tmpl *model.NotificationTemplate) (*model.NotificationTemplate, error)
	List(ctx context.Context) ([]model.NotificationTemplate, error)
	Render(ctx context.Context, name string, vars map[string]string) (*Rendered, error)
	CreateFromTemplate(ctx context.Context, name string, vars map[string]string, productID, userID *uuid.UUID) (*model.Notification, error)
}

type templateService struct {
	repo          repository.TemplateRepository
	notifications repository.NotificationRepository
	dispatcher    Dispatcher
	hub           ws.Broadcaster
	log           zerolog.Logger
}

func NewTemplateService(
	repo repository.TemplateRepository,
	notifications repository.NotificationRepository,
	dispatcher Dispatcher,
	hub ws.Broadcaster,
	log zerolog.Logger,
) TemplateService {
	return &templateService{
		repo:          repo,
		notifications: notifications,
		dispatcher:    dispatcher,
		hub:           hub,
		log:           log.With().Str("component", "templates").Logger(),
	}
}

func checkTemplate(tmpl *model.NotificationTemplate) error {
	if err := validate(tmpl); err != nil {
		return err
	}
	if !tmpl.Type.Valid() {
		return fmt.Errorf("%w: unknown notification type %q", ErrValidation, tmpl.Type)
	}
	if _, err := parse("title", tmpl.TitleTemplate); err != nil {
		return err
	}
	if _, err := parse("message", tmpl.MessageTemplate); err != nil {
		return err
	}
	return nil
}

func parse(name, src string) (*template.Template, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return t, nil
}

func execute(name, src string, vars map[string]string) (string, error) {
	t, err := parse(name, src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.String(), nil
}

func (s *templateService) Create(ctx context.Context, tmpl *model.NotificationTemplate) error {
	if err := checkTemplate(tmpl); err != nil {
		return err
	}
	return s.repo.Create(ctx, tmpl)
}

func (s *templateService) Update(ctx context.Context, name string, tmpl *model.NotificationTemplate) (*model.NotificationTemplate, error) {
	existing, err := s.find(ctx, name)
	if err != nil {
		return nil, err
	}
	tmpl.ID = existing.ID
	tmpl.CreatedAt = existing.CreatedAt
	if err := checkTemplate(tmpl); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (s *templateService) List(ctx context.Context) ([]model.NotificationTemplate, error) {
	return s.repo.FindAll(ctx)
}

func (s *templateService) find(ctx context.Context, name string) (*model.NotificationTemplate, error) {
	tmpl, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return tmpl, nil
}

func render(tmpl *model.NotificationTemplate, vars map[string]string) (*Rendered, error) {
	title, err := execute("title", tmpl.TitleTemplate, vars)
	if err != nil {
		return nil, err
	}
	message, err := execute("message", tmpl.MessageTemplate, vars)
	if err != nil {
		return nil, err
	}
	return &Rendered{Title: title, Message: message}, nil
}

// Render fills an active template. Unknown variables render as empty strings.
func (s *templateService) Render(ctx context.Context, name string, vars map[string]string) (*Rendered, error) {
	tmpl, err := s.find(ctx, name)
	if err != nil {
		return nil, err
	}
	if !tmpl.IsActive {
		return nil, ErrTemplateInactive
	}
	return render(tmpl, vars)
}

func (s *templateService) CreateFromTemplate(ctx context.Context, name string, vars map[string]string, productID, userID *uuid.UUID) (*model.Notification, error) {
	tmpl, err := s.find(ctx, name)
	if err != nil {
		return nil, err
	}
	if !tmpl.IsActive {
		return nil, ErrTemplateInactive
	}
	out, err := render(tmpl, vars)
	if err != nil {
		return nil, err
	}

	n := &model.Notification{
		Type:      tmpl.Type,
		Title:     out.Title,
		Message:   out.Message,
		Priority:  tmpl.Priority,
		ProductID: productID,
		UserID:    userID,
		Payload: model.NewMessagePayload(model.MessagePayload{
			Template: tmpl.Name,
			Vars:     vars,
		}),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, err
	}
	metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()

	s.hub.Publish(ws.Event{
		Type:   "notification",
		Action: "created",
		Data: map[string]interface{}{
			"id":       n.ID,
			"type":     n.Type,
			"priority": n.Priority,
			"title":    n.Title,
		},
		Message: n.Title,
	})

	if tmpl.SendEmail {
		s.dispatcher.Dispatch(ctx, n)
	}
	return n, nil
}
