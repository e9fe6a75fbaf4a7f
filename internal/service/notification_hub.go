package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"learnhub_backend/internal/events"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32

	notificationChannel = "learnhub:notifications"
)

// Notification is pushed to a learner's open sockets.
type Notification struct {
	Type events.EventType `json:"type"`
	Data interface{}      `json:"data"`
}

type routedNotification struct {
	UserID  uint            `json:"userId"`
	Payload json.RawMessage `json:"payload"`
}

type notifyClient struct {
	hub    *NotificationHub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
}

// NotificationHub keeps the open learner sockets of this instance. With Redis
// configured, notifications go through a pub/sub channel so every instance
// delivers to its own sockets.
type NotificationHub struct {
	Redis *redis.Client

	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[uint]map[*notifyClient]struct{}
}

// NewNotificationHub accepts upgrades from the given origins; "*" allows any.
func NewNotificationHub(rdb *redis.Client, allowedOrigins []string) *NotificationHub {
	h := &NotificationHub{
		Redis:   rdb,
		clients: make(map[uint]map[*notifyClient]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
	return h
}

// Run relays pub/sub messages to local sockets until ctx is cancelled. It
// returns immediately without Redis.
func (h *NotificationHub) Run(ctx context.Context) {
	if h.Redis == nil {
		return
	}
	pubsub := h.Redis.Subscribe(ctx, notificationChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var routed routedNotification
			if err := json.Unmarshal([]byte(msg.Payload), &routed); err != nil {
				logger.Log.Error("notification unmarshal error", zap.Error(err))
				continue
			}
			h.deliver(routed.UserID, routed.Payload)
		}
	}
}

// Notify sends n to every socket userID has open, on any instance.
func (h *NotificationHub) Notify(ctx context.Context, userID uint, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if h.Redis == nil {
		h.deliver(userID, payload)
		return nil
	}
	routed, err := json.Marshal(routedNotification{UserID: userID, Payload: payload})
	if err != nil {
		return err
	}
	return h.Redis.Publish(ctx, notificationChannel, routed).Err()
}

// deliver drops the message for clients whose buffer is full.
func (h *NotificationHub) deliver(userID uint, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- payload:
		default:
			logger.Log.Debug("notification dropped, client too slow", zap.Uint("userId", userID))
		}
	}
}

func (h *NotificationHub) register(c *notifyClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*notifyClient]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
	monitoring.NotificationClients.Inc()
}

func (h *NotificationHub) unregister(c *notifyClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
	monitoring.NotificationClients.Dec()
}

// Connections counts the open sockets of userID on this instance.
func (h *NotificationHub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Stop closes every socket.
func (h *NotificationHub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	closed := 0
	for userID, set := range h.clients {
		for c := range set {
			close(c.send)
			closed++
		}
		delete(h.clients, userID)
	}
	monitoring.NotificationClients.Set(0)
	logger.Log.Info("notification hub stopped", zap.Int("closedConnections", closed))
}

// Serve upgrades the request and streams userID's notifications until the
// socket closes.
func (h *NotificationHub) Serve(w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("websocket upgrade failed", zap.Error(err), zap.Uint("userId", userID))
		return
	}
	c := &notifyClient{hub: h, conn: conn, send: make(chan []byte, sendBuffer), userID: userID}
	h.register(c)

	go c.writePump()
	go c.readPump()
}

// readPump only handles control frames; learners never send notifications.
func (c *notifyClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.Debug("websocket closed", zap.Error(err), zap.Uint("userId", c.userID))
			}
			return
		}
	}
}

func (c *notifyClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// NotifyingPublisher forwards every domain event to the next publisher and
// pushes the ones addressed to a learner onto their sockets.
type NotifyingPublisher struct {
	Next events.Publisher
	Hub  *NotificationHub
}

func NewNotifyingPublisher(next events.Publisher, hub *NotificationHub) *NotifyingPublisher {
	return &NotifyingPublisher{Next: next, Hub: hub}
}

func (p *NotifyingPublisher) Publish(ctx context.Context, eventType events.EventType, payload interface{}) error {
	err := p.Next.Publish(ctx, eventType, payload)
	if userID, ok := recipient(payload); ok {
		if nerr := p.Hub.Notify(ctx, userID, Notification{Type: eventType, Data: payload}); nerr != nil {
			logger.Log.Warn("failed to push notification", zap.String("type", string(eventType)), zap.Error(nerr))
		}
	}
	return err
}

func (p *NotifyingPublisher) Close() error {
	return p.Next.Close()
}

func recipient(payload interface{}) (uint, bool) {
	switch p := payload.(type) {
	case events.AttemptGradedPayload:
		return p.UserID, true
	case *events.AttemptGradedPayload:
		return p.UserID, true
	case events.ProgressResetPayload:
		return p.UserID, true
	case *events.ProgressResetPayload:
		return p.UserID, true
	case events.CertificateIssuedPayload:
		return p.UserID, true
	case *events.CertificateIssuedPayload:
		return p.UserID, true
	}
	return 0, false
}
