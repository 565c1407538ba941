package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"sudooom.mahjong/internal/game"
)

// ClientMessage 客户端上行消息
type ClientMessage struct {
	Type    string `json:"type"`
	Visible *bool  `json:"visible,omitempty"`
}

const (
	MessageVisibility = "visibility"
	MessagePing       = "ping"
)

// ServerMessage 下行消息
type ServerMessage struct {
	Type   string       `json:"type"`
	Update *game.Update `json:"update,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// VisibilityFunc 页面可见性变化回调
type VisibilityFunc func(visible bool)

// Hub 按牌局分组的 websocket 连接，推送牌局更新
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[int64]*Connection // sessionId -> connId -> Connection
	logger   *slog.Logger
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]map[int64]*Connection),
		logger:   slog.Default().With("component", "WSHub"),
	}
}

func (h *Hub) add(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.sessions[c.sessionID]
	if !ok {
		conns = make(map[int64]*Connection)
		h.sessions[c.sessionID] = conns
	}
	conns[c.id] = c
}

func (h *Hub) remove(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.sessions[c.sessionID]
	if !ok {
		return
	}
	delete(conns, c.id)
	if len(conns) == 0 {
		delete(h.sessions, c.sessionID)
	}
}

// Count 某个牌局的连接数
func (h *Hub) Count(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Serve 接管一个已升级的连接，直到断开才返回
func (h *Hub) Serve(conn *websocket.Conn, sessionID string, onVisibility VisibilityFunc) {
	c := newConnection(conn, sessionID, h.logger)
	h.add(c)
	h.logger.Info("Client connected", "connId", c.id, "sessionId", sessionID)

	go c.writeLoop()
	c.readLoop(func(data []byte) {
		h.handleMessage(c, data, onVisibility)
	})

	h.remove(c)
	h.logger.Info("Client disconnected", "connId", c.id, "sessionId", sessionID)
}

func (h *Hub) handleMessage(c *Connection, data []byte, onVisibility VisibilityFunc) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.send(c, ServerMessage{Type: "error", Error: "invalid json"})
		return
	}

	switch msg.Type {
	case MessagePing:
		h.send(c, ServerMessage{Type: "pong"})
	case MessageVisibility:
		if msg.Visible == nil {
			h.send(c, ServerMessage{Type: "error", Error: "missing visible"})
			return
		}
		if onVisibility != nil {
			onVisibility(*msg.Visible)
		}
	default:
		h.send(c, ServerMessage{Type: "error", Error: "unknown message type: " + msg.Type})
	}
}

func (h *Hub) send(c *Connection, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal message", "error", err)
		return
	}
	if err := c.Send(data); err != nil {
		h.logger.Debug("Send failed", "connId", c.id, "error", err)
	}
}

// OnUpdate 实现 game.Observer：推送给该牌局的所有连接
func (h *Hub) OnUpdate(_ context.Context, u game.Update) {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.sessions[u.SessionID]))
	for _, c := range h.sessions[u.SessionID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	if len(conns) == 0 {
		return
	}

	data, err := json.Marshal(ServerMessage{Type: "update", Update: &u})
	if err != nil {
		h.logger.Error("Failed to marshal update", "sessionId", u.SessionID, "error", err)
		return
	}

	for _, c := range conns {
		if err := c.Send(data); err != nil {
			h.logger.Warn("Dropped update", "connId", c.id, "sessionId", u.SessionID, "error", err)
		}
	}
}

// CloseSession 断开某个牌局的所有连接
func (h *Hub) CloseSession(sessionID string) {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.sessions[sessionID]))
	for _, c := range h.sessions[sessionID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.Close()
	}
}
