package ws

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 4096
)

var connIDCounter int64

// Connection 一个 websocket 客户端
type Connection struct {
	id         int64
	sessionID  string
	conn       *websocket.Conn
	logger     *slog.Logger
	writeChan  chan []byte
	closeChan  chan struct{}
	closeOnce  sync.Once
	createTime time.Time
}

func newConnection(conn *websocket.Conn, sessionID string, logger *slog.Logger) *Connection {
	id := atomic.AddInt64(&connIDCounter, 1)
	return &Connection{
		id:         id,
		sessionID:  sessionID,
		conn:       conn,
		logger:     logger.With("connId", id, "sessionId", sessionID),
		writeChan:  make(chan []byte, 64),
		closeChan:  make(chan struct{}),
		createTime: time.Now(),
	}
}

func (c *Connection) ID() int64 {
	return c.id
}

func (c *Connection) SessionID() string {
	return c.sessionID
}

// Send 非阻塞写入，缓冲区满时丢弃
func (c *Connection) Send(data []byte) error {
	select {
	case <-c.closeChan:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.writeChan <- data:
		return nil
	case <-c.closeChan:
		return ErrConnectionClosed
	default:
		return ErrSendBufferFull
	}
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data := <-c.writeChan:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("Write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closeChan:
			return
		}
	}
}

// readLoop 读取客户端消息直到连接断开
func (c *Connection) readLoop(onMessage func([]byte)) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("Unexpected close", "error", err)
			}
			return
		}
		onMessage(data)
	}
}

func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.closeChan)
		_ = c.conn.Close()
	})
}

func (c *Connection) CreateTime() time.Time {
	return c.createTime
}
