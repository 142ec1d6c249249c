// Package notify pushes ledger change events to connected websocket clients.
package notify

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"bitbucket.org/rodmar/rodmar_backend/config"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	sendBuffer = 64
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type EventType string

const (
	TransaccionCreated   EventType = "transaccion.created"
	TransaccionUpdated   EventType = "transaccion.updated"
	TransaccionDeleted   EventType = "transaccion.deleted"
	TransaccionHidden    EventType = "transaccion.hidden"
	TransaccionShown     EventType = "transaccion.shown"
	TransaccionCompleted EventType = "transaccion.completed"
	ViajeCreated         EventType = "viaje.created"
	ViajeUnloaded        EventType = "viaje.unloaded"
	ViajeHidden          EventType = "viaje.hidden"
	ViajeShown           EventType = "viaje.shown"
	CounterpartyCreated  EventType = "socio.created"
)

// Event tells clients which cached lists to refetch.
type Event struct {
	Type   EventType `json:"type"`
	Ids    []string  `json:"ids,omitempty"`
	Modulo string    `json:"modulo,omitempty"`
	// UserId is the user whose request made the change.
	UserId int       `json:"userId,omitempty"`
	At     time.Time `json:"at"`
}

type client struct {
	send chan []byte
}

// Hub fans events out to every registered client. Publish never blocks: a
// client whose buffer is full is dropped.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *logrus.Logger
}

func NewHub(allowedOrigins []string) *Hub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(origins) == 0 || origins[origin]
			},
		},
		logger: config.GetLogger(),
	}
}

func (h *Hub) register() *client {
	c := &client{send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		config.LogError(h.logger, "notify/hub.go", "Publish", "marshal event", event, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			delete(h.clients, c)
			close(c.send)
			h.logger.WithField("event", event.Type).Warn("dropping slow websocket client")
		}
	}
}

// ServeHTTP upgrades the request and streams events until the peer goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		config.LogError(h.logger, "notify/hub.go", "ServeHTTP", "upgrade", r.RemoteAddr, err)
		return
	}
	c := h.register()
	go h.writePump(conn, c)
	h.readPump(conn, c)
}

// readPump only consumes control frames; clients never send events.
func (h *Hub) readPump(conn *websocket.Conn, c *client) {
	defer func() {
		h.unregister(c)
		conn.Close()
	}()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.WithError(err).Debug("websocket closed")
			}
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
