package game

import (
	"context"
	"log/slog"
	"sync"
	"time"

	apperrors "sudooom.mahjong/internal/errors"
	"sudooom.mahjong/internal/game/mahjong/ai"
	"sudooom.mahjong/internal/snowflake"
)

// ManagerConfig 牌局管理器配置
type ManagerConfig struct {
	MaxSessions   int           `mapstructure:"max_sessions"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	EvictInterval time.Duration `mapstructure:"evict_interval"`
	Pacing        Pacing        `mapstructure:"pacing"`
}

// Manager 牌局管理器
type Manager struct {
	sessions sync.Map // sessionId -> *Game

	cfg       ManagerConfig
	idGen     *snowflake.Node
	scheduler Scheduler

	obsMu     sync.RWMutex
	observers []Observer

	evictTicker *time.Ticker
	stopChan    chan struct{}
	stopOnce    sync.Once

	logger *slog.Logger
}

// NewManager 创建牌局管理器并启动闲置淘汰循环
func NewManager(cfg ManagerConfig, idGen *snowflake.Node, scheduler Scheduler) *Manager {
	if cfg.EvictInterval <= 0 {
		cfg.EvictInterval = time.Minute
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}

	m := &Manager{
		cfg:         cfg,
		idGen:       idGen,
		scheduler:   scheduler,
		evictTicker: time.NewTicker(cfg.EvictInterval),
		stopChan:    make(chan struct{}),
		logger:      slog.Default().With("component", "Manager"),
	}

	go m.evictLoop()

	return m
}

// AddObserver 注册观察者，只对之后创建的牌局生效
func (m *Manager) AddObserver(o Observer) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	m.observers = append(m.observers, o)
}

// Create 创建牌局，seed 为 0 时使用会话 ID 作为种子
func (m *Manager) Create(difficulty ai.Difficulty, seed int64) (*Game, error) {
	if m.cfg.MaxSessions > 0 && m.Count() >= m.cfg.MaxSessions {
		return nil, apperrors.ErrServerError.Withf("session limit %d reached", m.cfg.MaxSessions)
	}

	id := m.idGen.Generate()
	if seed == 0 {
		seed = id.Int64()
	}

	m.obsMu.RLock()
	observers := append([]Observer(nil), m.observers...)
	m.obsMu.RUnlock()

	g, err := NewGame(id.String(), difficulty, seed, Options{
		Scheduler: m.scheduler,
		Observers: observers,
		Pacing:    m.cfg.Pacing,
	})
	if err != nil {
		return nil, err
	}

	m.sessions.Store(g.ID(), g)
	m.logger.Info("Session created", "sessionId", g.ID(), "difficulty", difficulty, "seed", seed)
	return g, nil
}

// Get 获取牌局
func (m *Manager) Get(sessionID string) (*Game, error) {
	val, ok := m.sessions.Load(sessionID)
	if !ok {
		return nil, apperrors.ErrSessionNotFound.Withf("session %s", sessionID)
	}
	return val.(*Game), nil
}

// Remove 关闭并移除牌局
func (m *Manager) Remove(sessionID string) bool {
	val, ok := m.sessions.LoadAndDelete(sessionID)
	if !ok {
		return false
	}
	val.(*Game).Close()
	m.logger.Info("Session removed", "sessionId", sessionID)
	return true
}

// Count 当前牌局数
func (m *Manager) Count() int {
	count := 0
	m.sessions.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

func (m *Manager) evictLoop() {
	for {
		select {
		case <-m.evictTicker.C:
			m.evictIdle(time.Now())
		case <-m.stopChan:
			m.logger.Info("Evict loop stopped")
			return
		}
	}
}

// evictIdle 淘汰超过 IdleTimeout 未活动的牌局，返回淘汰数量
func (m *Manager) evictIdle(now time.Time) int {
	var idle []string
	m.sessions.Range(func(key, value any) bool {
		if now.Sub(value.(*Game).LastActiveTime()) > m.cfg.IdleTimeout {
			idle = append(idle, key.(string))
		}
		return true
	})

	for _, id := range idle {
		if m.Remove(id) {
			m.logger.Info("Evicted idle session", "sessionId", id)
		}
	}
	return len(idle)
}

// Shutdown 停止淘汰循环并关闭所有牌局
func (m *Manager) Shutdown(ctx context.Context) error {
	m.stopOnce.Do(func() {
		close(m.stopChan)
		m.evictTicker.Stop()
	})

	closed := 0
	m.sessions.Range(func(key, value any) bool {
		if ctx.Err() != nil {
			return false
		}
		value.(*Game).Close()
		m.sessions.Delete(key)
		closed++
		return true
	})

	m.logger.Info("Manager shutdown complete", "closed", closed)
	return ctx.Err()
}
