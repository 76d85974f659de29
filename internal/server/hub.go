// Package server exposes setup sessions over a websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/MHostile/root-automated-setup/internal/catalog"
	"github.com/MHostile/root-automated-setup/internal/config"
	"github.com/MHostile/root-automated-setup/internal/session"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	commandTimeout = 10 * time.Second
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// Client is one websocket connection
type Client struct {
	conn *websocket.Conn
	send chan []byte
	id   string
}

type attachment struct {
	client    *Client
	sessionID string
}

type delivery struct {
	client  *Client
	payload []byte
}

type broadcast struct {
	sessionID string
	payload   []byte
}

// Hub tracks connected clients and the session each one is attached to. All
// bookkeeping happens on the Run goroutine.
type Hub struct {
	manager  *session.Manager
	catalog  *catalog.Catalog
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader
	logger   *zap.Logger

	clients    map[*Client]string
	register   chan *Client
	unregister chan *Client
	attach     chan attachment
	direct     chan delivery
	broadcast  chan broadcast
	done       chan struct{}
}

// NewHub creates a hub serving sessions from manager
func NewHub(manager *session.Manager, cat *catalog.Catalog, cfg config.WebSocketConfig, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}

	h := &Hub{
		manager:    manager,
		catalog:    cat,
		cfg:        cfg,
		logger:     logger,
		clients:    make(map[*Client]string),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		attach:     make(chan attachment),
		direct:     make(chan delivery),
		broadcast:  make(chan broadcast),
		done:       make(chan struct{}),
	}
	if len(cfg.AllowedOrigins) > 0 {
		h.upgrader.CheckOrigin = h.checkOrigin
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(h.cfg.AllowedOrigins, "*") || slices.Contains(h.cfg.AllowedOrigins, origin)
}

// Run processes hub events until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
			}
			h.clients = make(map[*Client]string)
			return

		case client := <-h.register:
			h.clients[client] = ""
			h.logger.Debug("client registered", zap.String("client_id", client.id))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debug("client unregistered", zap.String("client_id", client.id))
			}

		case a := <-h.attach:
			if _, ok := h.clients[a.client]; ok {
				h.clients[a.client] = a.sessionID
			}

		case d := <-h.direct:
			if _, ok := h.clients[d.client]; ok {
				h.deliver(d.client, d.payload)
			}

		case b := <-h.broadcast:
			for client, sessionID := range h.clients {
				if sessionID == b.sessionID {
					h.deliver(client, b.payload)
				}
			}
		}
	}
}

// deliver drops clients that cannot keep up
func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		close(client.send)
		delete(h.clients, client)
		h.logger.Warn("dropped slow client", zap.String("client_id", client.id))
	}
}

// post hands an event to Run unless the hub has stopped
func post[T any](h *Hub, ch chan T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-h.done:
		return false
	}
}

// Handler serves /ws, /healthz and /sessions
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.serveWS)
	mux.HandleFunc("/healthz", h.serveHealth)
	mux.HandleFunc("GET /sessions", h.serveSessions)
	return mux
}

func (h *Hub) serveHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": h.manager.Count(),
	})
}

// serveSessions reports the sessions held in memory and every session id in
// storage
func (h *Hub) serveSessions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()

	stored, err := h.manager.StoredSessions(ctx)
	if err != nil {
		h.logger.Warn("failed to list stored sessions", zap.Error(err))
		http.Error(w, "failed to list sessions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"active": h.manager.GetAllSessions(),
		"stored": stored,
	})
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		id:   conn.RemoteAddr().String(),
	}
	if !post(h, h.register, client) {
		conn.Close()
		return
	}

	go h.writePump(client)
	h.readPump(client)
}

func (h *Hub) readPump(c *Client) {
	defer func() {
		post(h, h.unregister, c)
		c.conn.Close()
	}()

	pongWait := h.cfg.PingInterval * 2
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	var sessionID string
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.reply(c, Message{Type: TypeError, Error: "malformed message: " + err.Error()})
			continue
		}
		sessionID = h.handleMessage(c, sessionID, msg)
	}
}

// handleMessage runs one request and returns the session the client is
// attached to afterwards
func (h *Hub) handleMessage(c *Client, sessionID string, msg Message) string {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch msg.Type {
	case TypeCreate:
		sess, view, err := h.manager.Create(ctx)
		if err != nil {
			h.fail(c, sessionID, msg, err)
			return sessionID
		}
		post(h, h.attach, attachment{client: c, sessionID: sess.ID})
		h.reply(c, Message{Type: TypeState, SessionID: sess.ID, Data: view})
		return sess.ID

	case TypeResume:
		view, err := h.manager.View(ctx, msg.SessionID)
		if err != nil {
			h.fail(c, sessionID, msg, err)
			return sessionID
		}
		post(h, h.attach, attachment{client: c, sessionID: msg.SessionID})
		h.reply(c, Message{Type: TypeState, SessionID: msg.SessionID, Data: view})
		return msg.SessionID
	}

	if msg.SessionID != "" && msg.SessionID != sessionID {
		h.fail(c, sessionID, msg, errors.New("resume the session before sending commands to it"))
		return sessionID
	}
	if sessionID == "" {
		h.fail(c, sessionID, msg, errors.New("no session: send create or resume first"))
		return sessionID
	}

	cmd, err := msg.Command(h.catalog)
	if err != nil {
		h.fail(c, sessionID, msg, err)
		return sessionID
	}
	view, err := h.manager.Apply(ctx, sessionID, cmd)
	if err != nil {
		h.fail(c, sessionID, msg, err)
		return sessionID
	}

	payload, err := json.Marshal(Message{Type: TypeState, SessionID: sessionID, Data: view})
	if err != nil {
		h.logger.Error("failed to encode state", zap.Error(err))
		return sessionID
	}
	post(h, h.broadcast, broadcast{sessionID: sessionID, payload: payload})
	return sessionID
}

func (h *Hub) fail(c *Client, sessionID string, msg Message, err error) {
	h.logger.Debug("request failed",
		zap.String("client_id", c.id),
		zap.String("session_id", sessionID),
		zap.String("type", msg.Type),
		zap.Error(err),
	)
	h.reply(c, Message{Type: TypeError, SessionID: sessionID, Error: err.Error()})
}

func (h *Hub) reply(c *Client, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode reply", zap.Error(err))
		return
	}
	post(h, h.direct, delivery{client: c, payload: payload})
}

func (h *Hub) writePump(c *Client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
