package task

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// WorkerPool 工作协程池
type WorkerPool struct {
	workerCount int
	taskChan    chan *Task
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	logger      *slog.Logger

	executed atomic.Int64 // 已执行任务数
	failed   atomic.Int64 // 返回错误或 panic 的任务数
}

// NewWorkerPool 创建工作协程池
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 4
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		workerCount: workerCount,
		taskChan:    make(chan *Task, workerCount*2),
		ctx:         ctx,
		cancel:      cancel,
		logger:      slog.Default().With("component", "WorkerPool"),
	}
}

// Start 启动工作协程池
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}

	wp.logger.Info("Worker pool started", "workerCount", wp.workerCount)
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return

		case task := <-wp.taskChan:
			if task == nil {
				continue
			}
			wp.executeTask(id, task)
		}
	}
}

// executeTask 执行任务，panic 不会影响其他任务
func (wp *WorkerPool) executeTask(workerID int, task *Task) {
	defer func() {
		if r := recover(); r != nil {
			wp.failed.Add(1)
			wp.logger.Error("Task panicked",
				"workerID", workerID,
				"taskID", task.ID,
				"target", task.Target,
				"panic", r)
		}
	}()

	wp.executed.Add(1)
	if err := task.Execute(wp.ctx); err != nil {
		wp.failed.Add(1)
		wp.logger.Warn("Task failed",
			"workerID", workerID,
			"taskID", task.ID,
			"target", task.Target,
			"version", task.Version,
			"error", err)
		return
	}

	wp.logger.Debug("Task executed",
		"workerID", workerID,
		"taskID", task.ID,
		"target", task.Target,
		"version", task.Version)
}

// Submit 提交任务，通道满时阻塞直到有空位或协程池关闭
func (wp *WorkerPool) Submit(task *Task) {
	select {
	case wp.taskChan <- task:
	case <-wp.ctx.Done():
		wp.logger.Warn("Worker pool stopped, task dropped", "taskID", task.ID)
	default:
		wp.logger.Warn("Task channel full, task delayed", "taskID", task.ID)
		select {
		case wp.taskChan <- task:
		case <-wp.ctx.Done():
		}
	}
}

// SubmitBatch 批量提交任务
func (wp *WorkerPool) SubmitBatch(tasks []*Task) {
	for _, task := range tasks {
		wp.Submit(task)
	}
}

// Stop 停止工作协程池
func (wp *WorkerPool) Stop() {
	wp.cancel()
	wp.wg.Wait()
	wp.logger.Info("Worker pool stopped",
		"executed", wp.executed.Load(),
		"failed", wp.failed.Load())
}
