package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/nandanugg/landmark-radar/module/core/domain"
)

const (
	writeWait     = 5 * time.Second
	defaultReplay = 20
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// AlertHub pushes proximity alerts to connected WebSocket clients. New clients
// first receive the most recent alerts of the session.
type AlertHub struct {
	logger zerolog.Logger
	replay int
	send   func(c *client, data []byte) error

	mu      sync.Mutex
	clients map[*websocket.Conn]*client
	recent  [][]byte
}

// client serialises writes to one connection; gorilla allows a single writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewAlertHub(logger zerolog.Logger) *AlertHub {
	return &AlertHub{
		logger:  logger,
		replay:  defaultReplay,
		send:    write,
		clients: make(map[*websocket.Conn]*client),
	}
}

func (h *AlertHub) Register(r *gin.RouterGroup) {
	r.GET("/ws/alerts", h.HandleWebSocket)
}

func (h *AlertHub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("ws upgrade error")
		return
	}
	h.add(conn)
	go h.readPump(conn)
}

// PublishAlert broadcasts the alert. Writes happen outside the hub lock so a
// slow client only delays this call. Clients that fail a write are dropped;
// that is not an error for the caller.
func (h *AlertHub) PublishAlert(_ context.Context, alert *domain.ProximityAlert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	h.mu.Lock()
	h.recent = append(h.recent, data)
	if len(h.recent) > h.replay {
		h.recent = h.recent[len(h.recent)-h.replay:]
	}
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := h.send(c, data); err != nil {
			h.logger.Debug().Err(err).Str("remote", c.conn.RemoteAddr().String()).Msg("dropping ws client")
			_ = c.conn.Close()
			h.remove(c.conn)
		}
	}
	return nil
}

func (h *AlertHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *AlertHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}

// add replays the recent alerts and then registers the connection. The client
// lock is held across both so a concurrent broadcast lands after the replay.
func (h *AlertHub) add(conn *websocket.Conn) {
	c := &client{conn: conn}
	c.mu.Lock()
	defer c.mu.Unlock()

	h.mu.Lock()
	backlog := append([][]byte(nil), h.recent...)
	h.clients[conn] = c
	h.mu.Unlock()

	for _, data := range backlog {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			_ = conn.Close()
			h.remove(conn)
			return
		}
	}
}

func (h *AlertHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

func (h *AlertHub) readPump(conn *websocket.Conn) {
	defer func() {
		h.remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func write(c *client, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}
