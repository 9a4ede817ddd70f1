package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/learnable-ai/companion/internal/logger"
	"go.uber.org/zap"
)

// WebSocket message types
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypePong      = "pong"
	MsgTypeStatus    = "status"
	MsgTypeResults   = "results"
	MsgTypeFiles     = "files"
	MsgTypeSettings  = "settings"
	MsgTypeError     = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	clientSendSize = 64
)

// WebSocket message structure
type WSMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WebSocket error payload
type WSErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan WSMessage
}

// Hub pushes state changes to every connected browser
type Hub struct {
	upgrader   websocket.Upgrader
	maxMessage int64

	mu       sync.RWMutex
	clients  map[*wsClient]struct{}
	snapshot func() []WSMessage
}

// NewHub creates a hub. maxMessageKB bounds inbound client messages.
func NewHub(maxMessageKB int) *Hub {
	if maxMessageKB <= 0 {
		maxMessageKB = 64
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Local single-user server; the dev UI runs on another port.
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
		},
		maxMessage: int64(maxMessageKB) * 1024,
		clients:    make(map[*wsClient]struct{}),
	}
}

// SetSnapshot sets the messages sent to a client right after it connects.
func (h *Hub) SetSnapshot(fn func() []WSMessage) {
	h.mu.Lock()
	h.snapshot = fn
	h.mu.Unlock()
}

// NewMessage encodes payload into a message of the given type.
func NewMessage(msgType string, payload interface{}) (WSMessage, error) {
	msg := WSMessage{Type: msgType, Timestamp: time.Now().UnixMilli()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return msg, err
		}
		msg.Payload = raw
	}
	return msg, nil
}

// Broadcast sends a message to every client. Clients that cannot keep up are
// disconnected.
func (h *Hub) Broadcast(msgType string, payload interface{}) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		logger.Error("failed to encode websocket message",
			zap.String("function", "Hub.Broadcast"),
			zap.String("type", msgType),
			zap.Error(err),
		)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the connection and streams state changes to it
func (h *Hub) HandleWebSocket(c echo.Context) error {
	const funcName = "Hub.HandleWebSocket"

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &wsClient{conn: ws, send: make(chan WSMessage, clientSendSize)}

	h.mu.Lock()
	snapshot := h.snapshot
	h.mu.Unlock()

	hello, _ := NewMessage(MsgTypeConnected, nil)
	client.send <- hello
	if snapshot != nil {
		for _, m := range snapshot() {
			select {
			case client.send <- m:
			default:
			}
		}
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	logger.Debug("websocket client connected",
		zap.String("function", funcName),
		zap.String("remote", c.RealIP()),
	)

	go h.writeLoop(client)
	h.readLoop(client)

	h.remove(client)
	logger.Debug("websocket client disconnected", zap.String("function", funcName))
	return nil
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) readLoop(c *wsClient) {
	c.conn.SetReadLimit(h.maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket connection error", zap.Error(err))
			}
			return
		}

		var reply WSMessage
		switch msg.Type {
		case MsgTypePing:
			reply, _ = NewMessage(MsgTypePong, nil)
		default:
			reply, _ = NewMessage(MsgTypeError, WSErrorResponse{
				Message: "Unknown message type: " + msg.Type,
				Code:    "INVALID_TYPE",
			})
		}

		h.mu.RLock()
		_, live := h.clients[c]
		if live {
			select {
			case c.send <- reply:
			default:
			}
		}
		h.mu.RUnlock()
	}
}

func (h *Hub) writeLoop(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
