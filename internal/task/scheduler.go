package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Config 调度器配置
type Config struct {
	WorkerCount int
	SlotCount   int
	Tick        time.Duration
}

// Scheduler 任务调度器
type Scheduler struct {
	wheel      *TimeWheel
	workerPool *WorkerPool
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
	running    bool
	runningMu  sync.RWMutex
}

// NewScheduler 创建任务调度器
func NewScheduler(cfg Config) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		wheel:      NewTimeWheel(cfg.SlotCount, cfg.Tick),
		workerPool: NewWorkerPool(cfg.WorkerCount),
		ctx:        ctx,
		cancel:     cancel,
		logger:     slog.Default().With("component", "Scheduler"),
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	s.runningMu.Lock()
	if s.running {
		s.runningMu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.runningMu.Unlock()

	s.workerPool.Start()

	s.wg.Add(1)
	go s.tickLoop()

	s.logger.Info("Scheduler started", "tick", s.wheel.tick, "slots", len(s.wheel.slots))
	return nil
}

func (s *Scheduler) tickLoop() {
	defer s.wg.Done()

	ticker := s.wheel.GetTicker()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.onTick()
		}
	}
}

func (s *Scheduler) onTick() {
	tasks := s.wheel.Tick()
	if len(tasks) == 0 {
		return
	}

	s.workerPool.SubmitBatch(tasks)
}

// Stop 停止调度器，未到期的任务被丢弃
func (s *Scheduler) Stop() {
	s.runningMu.Lock()
	if !s.running {
		s.runningMu.Unlock()
		return
	}
	s.running = false
	s.runningMu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.wheel.Stop()
	s.workerPool.Stop()

	s.logger.Info("Scheduler stopped")
}

// AddTask 添加任务，同 ID 的未执行任务被替换
func (s *Scheduler) AddTask(task *Task) error {
	s.runningMu.RLock()
	defer s.runningMu.RUnlock()

	if !s.running {
		return fmt.Errorf("scheduler not running")
	}
	if task == nil {
		return fmt.Errorf("nil task")
	}
	if task.ID == "" {
		return fmt.Errorf("empty task id")
	}

	s.logger.Debug("Task scheduled",
		"taskID", task.ID,
		"target", task.Target,
		"version", task.Version,
		"delay", task.Delay)

	return s.wheel.AddTask(task)
}

// RemoveTask 删除任务
func (s *Scheduler) RemoveTask(taskID string) error {
	s.runningMu.RLock()
	defer s.runningMu.RUnlock()

	if !s.running {
		return fmt.Errorf("scheduler not running")
	}
	if taskID == "" {
		return fmt.Errorf("empty task id")
	}

	if !s.wheel.RemoveTask(taskID) {
		return fmt.Errorf("task not found: %s", taskID)
	}

	s.logger.Debug("Task removed", "taskID", taskID)
	return nil
}

// IsRunning 检查调度器是否运行中
func (s *Scheduler) IsRunning() bool {
	s.runningMu.RLock()
	defer s.runningMu.RUnlock()

	return s.running
}

// GetStats 获取调度器统计信息
func (s *Scheduler) GetStats() map[string]any {
	return map[string]any{
		"running":        s.IsRunning(),
		"currentSlot":    s.wheel.GetCurrentSlot(),
		"totalTaskCount": s.wheel.GetTotalTaskCount(),
		"workerCount":    s.workerPool.workerCount,
		"executed":       s.workerPool.executed.Load(),
		"failed":         s.workerPool.failed.Load(),
	}
}
