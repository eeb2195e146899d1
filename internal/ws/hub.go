package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"
)

// Event is one live update pushed to every connected client.
type Event struct {
	Type    string      `json:"type"`   // stock_update, transaction_update, notification
	Action  string      `json:"action"` // movement_recorded, transaction_cancelled, ...
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Broadcaster publishes events to live clients. Publish must not block.
type Broadcaster interface {
	Publish(event Event)
}

type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, 64),
		log:        log.With().Str("component", "ws_hub").Logger(),
	}
}

// Publish encodes the event and hands it to Run without waiting for delivery.
func (h *Hub) Publish(event Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("type", event.Type).Msg("encode ws event")
		return
	}
	go func() {
		h.Broadcast <- msg
	}()
}

// ClientCount is the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			h.log.Debug().Int("clients", h.ClientCount()).Msg("ws client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Nop discards events; used by jobs that run without live clients.
type Nop struct{}

func (Nop) Publish(Event) {}
