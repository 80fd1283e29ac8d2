// Package stream broadcasts run progress to WebSocket subscribers.
package stream

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"options-sim-lab/internal/domain"
)

// Message types
const (
	TypeEquity       = "equity"
	TypeRunCompleted = "run_completed"
)

// ErrHubClosed is returned when publishing to a closed hub.
var ErrHubClosed = errors.New("hub closed")

// Message is one frame sent to subscribers.
type Message struct {
	Type   string              `json:"type"`
	RunID  string              `json:"run_id"`
	Equity *domain.EquityPoint `json:"equity,omitempty"`
	Run    *domain.BacktestRun `json:"run,omitempty"`
}

// Config holds hub settings.
type Config struct {
	SendBuffer   int           // queued frames per client before it is dropped
	WriteTimeout time.Duration // per frame
	PingInterval time.Duration
}

// DefaultConfig returns default hub settings.
func DefaultConfig() Config {
	return Config{
		SendBuffer:   256,
		WriteTimeout: 10 * time.Second,
		PingInterval: 30 * time.Second,
	}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub fans messages out to every connected client. Publishing never
// blocks on a slow client: a client whose buffer is full is disconnected.
type Hub struct {
	config   Config
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// NewHub creates a hub. A nil logger disables logging.
func NewHub(config Config, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.SendBuffer <= 0 {
		config.SendBuffer = DefaultConfig().SendBuffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultConfig().WriteTimeout
	}
	if config.PingInterval <= 0 {
		config.PingInterval = DefaultConfig().PingInterval
	}
	return &Hub{
		config: config,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and subscribes the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.config.SendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.wg.Add(2)
	h.mu.Unlock()

	h.logger.Debug("subscriber connected", zap.String("remote", r.RemoteAddr))

	go h.writeLoop(c)
	go h.readLoop(c)
}

// writeLoop drains the client's queue and keeps the connection alive.
func (h *Hub) writeLoop(c *client) {
	defer h.wg.Done()
	defer c.conn.Close()

	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// readLoop discards inbound frames and detects disconnects.
func (h *Hub) readLoop(c *client) {
	defer h.wg.Done()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

// Publish encodes msg and queues it for every client.
func (h *Hub) Publish(msg Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.logger.Warn("dropping slow subscriber", zap.String("remote", c.conn.RemoteAddr().String()))
			delete(h.clients, c)
			c.close()
		}
	}
	return nil
}

// PublishEquity is a simulation OnEquity callback.
func (h *Hub) PublishEquity(p domain.EquityPoint) {
	if err := h.Publish(Message{Type: TypeEquity, RunID: p.RunID, Equity: &p}); err != nil && !errors.Is(err, ErrHubClosed) {
		h.logger.Warn("publish equity point", zap.Error(err))
	}
}

// PublishRun announces a finished run.
func (h *Hub) PublishRun(run *domain.BacktestRun) error {
	return h.Publish(Message{Type: TypeRunCompleted, RunID: run.RunID, Run: run})
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and waits for their goroutines.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()

	h.wg.Wait()
}
