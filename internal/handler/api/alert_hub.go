package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"Manifold/internal/domain/models"
	xlogger "Manifold/pkg/logger"
)

const (
	hubSendBuffer = 64
	hubWriteWait  = 10 * time.Second
)

// AlertHub streams alerts to websocket clients on /ws/alerts. It is an
// AlertSink: the monitor publishes into it like any other sink. A client may
// narrow the stream with ?symbol= and ?horizon=.
type AlertHub struct {
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	l            *xlogger.Logger

	mu      sync.RWMutex
	clients map[*hubClient]struct{}
	closed  bool
}

type hubClient struct {
	conn    *websocket.Conn
	send    chan []byte
	symbol  string
	horizon models.Horizon
	once    sync.Once
}

func NewAlertHub(l *xlogger.Logger, pingInterval time.Duration) *AlertHub {
	if l == nil {
		l = xlogger.Nop()
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &AlertHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		pingInterval: pingInterval,
		l:            l.With(xlogger.String("component", "alert_hub")),
		clients:      make(map[*hubClient]struct{}),
	}
}

func (h *AlertHub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/alerts", h.Serve)
}

// Serve upgrades the request and streams matching alerts until the client
// goes away.
func (h *AlertHub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.l.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	cl := &hubClient{
		conn:    conn,
		send:    make(chan []byte, hubSendBuffer),
		symbol:  c.QueryParam("symbol"),
		horizon: models.Horizon(c.QueryParam("horizon")),
	}
	if !h.add(cl) {
		_ = conn.Close()
		return nil
	}
	h.l.Debug("websocket client joined", xlogger.String("symbol", cl.symbol), xlogger.Int("clients", h.Clients()))

	go h.writeLoop(cl)
	h.readLoop(cl)
	return nil
}

// Publish fans evt out to every matching client. A client whose buffer is
// full is dropped rather than blocking the monitor.
func (h *AlertHub) Publish(_ context.Context, evt models.AlertEvent) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	h.mu.RLock()
	var slow []*hubClient
	for cl := range h.clients {
		if !cl.wants(evt) {
			continue
		}
		select {
		case cl.send <- b:
		default:
			slow = append(slow, cl)
		}
	}
	h.mu.RUnlock()

	for _, cl := range slow {
		h.l.Warn("websocket client too slow, dropping", xlogger.String("symbol", cl.symbol))
		h.remove(cl)
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *AlertHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *AlertHub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*hubClient, 0, len(h.clients))
	for cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.Unlock()
	for _, cl := range clients {
		h.remove(cl)
	}
}

func (h *AlertHub) add(cl *hubClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[cl] = struct{}{}
	return true
}

func (h *AlertHub) remove(cl *hubClient) {
	h.mu.Lock()
	delete(h.clients, cl)
	h.mu.Unlock()
	cl.once.Do(func() { close(cl.send) })
}

func (cl *hubClient) wants(evt models.AlertEvent) bool {
	if cl.symbol != "" && cl.symbol != evt.Symbol {
		return false
	}
	if cl.horizon != "" && cl.horizon != evt.Horizon {
		return false
	}
	return true
}

// readLoop discards client frames; it exists to notice disconnects and to
// extend the read deadline on pong.
func (h *AlertHub) readLoop(cl *hubClient) {
	defer h.remove(cl)
	wait := 2 * h.pingInterval
	_ = cl.conn.SetReadDeadline(time.Now().Add(wait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(wait))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *AlertHub) writeLoop(cl *hubClient) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()
	for {
		select {
		case b, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(hubWriteWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(hubWriteWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
