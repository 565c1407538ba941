package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	apperrors "sudooom.mahjong/internal/errors"
	"sudooom.mahjong/internal/game/mahjong/ai"
	"sudooom.mahjong/internal/game/mahjong/table"
	"sudooom.mahjong/internal/task"
)

// Scheduler AI 动作调度器，同 ID 的任务后加入的替换先前的
type Scheduler interface {
	AddTask(t *task.Task) error
	RemoveTask(taskID string) error
}

// Options 牌局选项
type Options struct {
	Scheduler Scheduler
	Observers []Observer
	Pacing    Pacing
	Engine    *table.Engine
}

// Game 一个单人牌局
// 状态只在持有 mu 时修改；AI 动作经调度器延迟执行，执行前核对版本
type Game struct {
	mu       sync.Mutex
	notifyMu sync.Mutex // 保证观察者按顺序收到更新

	id         string
	engine     *table.Engine
	state      *table.State
	scheduler  Scheduler
	observers  []Observer
	pacing     Pacing
	delayRng   *rand.Rand
	paused     bool
	closed     bool
	createdAt  time.Time
	lastActive time.Time

	logger *slog.Logger
}

// NewGame 创建牌局并发牌
func NewGame(id string, difficulty ai.Difficulty, seed int64, opts Options) (*Game, error) {
	engine := opts.Engine
	if engine == nil {
		engine = table.NewEngine()
	}

	st, events, err := engine.StartSession(difficulty, seed)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	g := &Game{
		id:         id,
		engine:     engine,
		state:      st,
		scheduler:  opts.Scheduler,
		observers:  opts.Observers,
		pacing:     opts.Pacing,
		delayRng:   rand.New(rand.NewSource(seed ^ 0x5eed)),
		createdAt:  now,
		lastActive: now,
		logger:     slog.Default().With("component", "Game", "sessionId", id),
	}

	g.mu.Lock()
	g.afterTransition(context.Background(), events)
	return g, nil
}

// ID 牌局 ID
func (g *Game) ID() string {
	return g.id
}

// taskID 每个牌局只有一个待执行的 AI 任务
func (g *Game) taskID() string {
	return "ai:" + g.id
}

// Act 执行人类座位的动作
func (g *Game) Act(ctx context.Context, action table.Action) (*table.View, error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil, apperrors.ErrSessionNotFound.Withf("session %s closed", g.id)
	}

	if action.Type == table.ActionResolve {
		g.mu.Unlock()
		return nil, apperrors.ErrInvalidParams.Withf("action %s is reserved for AI", action.Type)
	}

	// 客户端只能代表人类座位
	action.Seat = table.HumanSeat
	events, err := g.engine.HandleAction(ctx, g.state, action)
	if err != nil {
		g.mu.Unlock()
		g.logger.Debug("Action rejected", "type", action.Type, "seat", action.Seat, "error", err)
		return nil, err
	}

	view, _ := g.state.View(table.HumanSeat)
	g.afterTransition(ctx, events)
	return view, nil
}

// NextRound 开下一局
func (g *Game) NextRound(ctx context.Context) (*table.View, error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil, apperrors.ErrSessionNotFound.Withf("session %s closed", g.id)
	}

	events, err := g.engine.NextRound(g.state)
	if err != nil {
		g.mu.Unlock()
		return nil, err
	}

	view, _ := g.state.View(table.HumanSeat)
	g.afterTransition(ctx, events)
	return view, nil
}

// View 获取 seat 视角的快照
func (g *Game) View(seat int) (*table.View, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state.View(seat)
}

// Pause 暂停 AI (页面不可见)
func (g *Game) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.paused || g.closed {
		return
	}
	g.paused = true
	g.cancelTaskLocked()
	g.logger.Info("Game paused", "version", g.state.Version)
}

// Resume 恢复 AI，按当前状态重新调度
func (g *Game) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.paused || g.closed {
		return
	}
	g.paused = false
	g.lastActive = time.Now()
	g.scheduleLocked()
	g.logger.Info("Game resumed", "version", g.state.Version)
}

// Close 放弃牌局，取消待执行的 AI 任务
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return
	}
	g.closed = true
	g.cancelTaskLocked()
	g.logger.Info("Game closed", "round", g.state.RoundNum, "scores", g.state.Scores)
}

// IsClosed 是否已关闭
func (g *Game) IsClosed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// IsPaused 是否暂停
func (g *Game) IsPaused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// LastActiveTime 最后活跃时间
func (g *Game) LastActiveTime() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActive
}

// Version 当前状态版本
func (g *Game) Version() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Version
}

// afterTransition 在持有 mu 时调用：重新调度 AI，释放 mu 后按顺序通知观察者
func (g *Game) afterTransition(ctx context.Context, events []table.Event) {
	g.lastActive = time.Now()
	g.scheduleLocked()

	var update Update
	if len(g.observers) > 0 {
		view, _ := g.state.View(table.HumanSeat)
		update = Update{SessionID: g.id, Events: events, View: view, At: g.lastActive}
	}

	g.notifyMu.Lock()
	g.mu.Unlock()
	defer g.notifyMu.Unlock()

	for _, o := range g.observers {
		o.OnUpdate(ctx, update)
	}
}

// scheduleLocked 为当前状态安排下一步 AI 动作
func (g *Game) scheduleLocked() {
	if g.scheduler == nil || g.paused || g.closed {
		return
	}

	step, seat := g.state.PendingAI()
	if step == table.AIStepNone {
		g.cancelTaskLocked()
		return
	}

	delay := g.pacing.delayFor(step, g.delayRng)
	t := task.NewTask(g.taskID(), fmt.Sprintf("%s:%d", g.id, seat), delay, g.runAI).
		WithVersion(g.state.Version).
		WithMetadata("step", string(step)).
		WithMetadata("seat", seat).
		WithMetadata("version", g.state.Version)

	if err := g.scheduler.AddTask(t); err != nil {
		g.logger.Error("Failed to schedule AI", "step", step, "seat", seat, "error", err)
		return
	}
	g.logger.Debug("AI scheduled", "step", step, "seat", seat, "delay", delay, "version", g.state.Version)
}

func (g *Game) cancelTaskLocked() {
	if g.scheduler == nil {
		return
	}
	// 任务可能已执行或从未安排
	_ = g.scheduler.RemoveTask(g.taskID())
}

// runAI 调度器回调，版本、步骤或座位不一致则丢弃
func (g *Game) runAI(ctx context.Context, _ string, metadata map[string]any) error {
	step, _ := metadata["step"].(string)
	seat, _ := metadata["seat"].(int)
	version, _ := metadata["version"].(int64)

	g.mu.Lock()
	if g.closed || g.paused {
		g.mu.Unlock()
		return nil
	}

	pending, pendingSeat := g.state.PendingAI()
	if version != g.state.Version || string(pending) != step || pendingSeat != seat {
		g.mu.Unlock()
		g.logger.Debug("Stale AI task dropped",
			"step", step,
			"seat", seat,
			"taskVersion", version,
			"version", g.state.Version)
		return nil
	}

	events, err := g.engine.PlayAI(g.state, pending, seat)
	if err != nil {
		g.mu.Unlock()
		return fmt.Errorf("AI %s for seat %d: %w", step, seat, err)
	}

	g.afterTransition(ctx, events)
	return nil
}
