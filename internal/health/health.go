package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
	StatusDisabled     = "disabled"
)

// Status 健康状态
type Status struct {
	NATS     string `json:"nats"`
	Redis    string `json:"redis"`
	Database string `json:"database"`
	Sessions int    `json:"sessions"`
}

// Healthy 所有启用的依赖都已连接
func (s *Status) Healthy() bool {
	for _, v := range []string{s.NATS, s.Redis, s.Database} {
		if v == StatusDisconnected {
			return false
		}
	}
	return true
}

// NATSConn *nats.Conn 满足
type NATSConn interface {
	IsConnected() bool
}

// RedisPinger *redis.Client 满足
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// DBPinger *pgxpool.Pool 满足
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker 健康检查器，未启用的依赖为 nil
type Checker struct {
	nc       NATSConn
	redis    RedisPinger
	db       DBPinger
	sessions func() int
	timeout  time.Duration
}

// NewChecker 创建健康检查器
func NewChecker(nc NATSConn, redisClient RedisPinger, db DBPinger, sessions func() int) *Checker {
	return &Checker{
		nc:       nc,
		redis:    redisClient,
		db:       db,
		sessions: sessions,
		timeout:  2 * time.Second,
	}
}

// Check 执行健康检查
func (h *Checker) Check(ctx context.Context) *Status {
	status := &Status{NATS: StatusDisabled, Redis: StatusDisabled, Database: StatusDisabled}

	if h.nc != nil {
		status.NATS = connected(h.nc.IsConnected())
	}

	if h.redis != nil {
		redisCtx, cancel := context.WithTimeout(ctx, h.timeout)
		status.Redis = connected(h.redis.Ping(redisCtx).Err() == nil)
		cancel()
	}

	if h.db != nil {
		dbCtx, cancel := context.WithTimeout(ctx, h.timeout)
		status.Database = connected(h.db.Ping(dbCtx) == nil)
		cancel()
	}

	if h.sessions != nil {
		status.Sessions = h.sessions()
	}

	return status
}

func connected(ok bool) string {
	if ok {
		return StatusConnected
	}
	return StatusDisconnected
}

// Live 存活检查
// GET /health
func (h *Checker) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready 就绪检查，启用的依赖断开时返回 503
// GET /ready
func (h *Checker) Ready(c *gin.Context) {
	status := h.Check(c.Request.Context())
	if !status.Healthy() {
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	c.JSON(http.StatusOK, status)
}
