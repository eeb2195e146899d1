package testutil

import (
	"context"
	"sync"

	"inventory-plus/internal/ws"
	"inventory-plus/pkg/mailer"
)

// Broadcaster records published events.
type Broadcaster struct {
	mu     sync.Mutex
	events []ws.Event
}

func (b *Broadcaster) Publish(e ws.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *Broadcaster) Events() []ws.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ws.Event(nil), b.events...)
}

// Actions lists the Action of every recorded event, in order.
func (b *Broadcaster) Actions() []string {
	var out []string
	for _, e := range b.Events() {
		out = append(out, e.Action)
	}
	return out
}

// Mailer records messages. A non-nil Err fails every send.
type Mailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	Err  error
}

func (m *Mailer) Send(_ context.Context, msg mailer.Message) error {
	if len(msg.To) == 0 {
		return mailer.ErrNoRecipients
	}
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *Mailer) Sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}
