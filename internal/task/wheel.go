package task

import (
	"sync"
	"time"
)

const (
	// DefaultSlotCount 默认槽位数量
	DefaultSlotCount = 60
	// DefaultTick 默认刻度，AI 节奏以百毫秒计
	DefaultTick = 50 * time.Millisecond
)

// TimeWheel 时间轮
// 每个槽位是 taskID -> Task 的映射，index 记录任务所在槽位，
// 删除和替换不需要知道原来的延迟
type TimeWheel struct {
	slots       []map[string]*Task
	tick        time.Duration
	currentSlot int
	index       map[string]int // taskID -> 槽位
	mu          sync.Mutex     // 保护 slots、currentSlot 和 index
	ticker      *time.Ticker
}

// NewTimeWheel 创建时间轮
func NewTimeWheel(slotCount int, tick time.Duration) *TimeWheel {
	if slotCount <= 0 {
		slotCount = DefaultSlotCount
	}
	if tick <= 0 {
		tick = DefaultTick
	}

	tw := &TimeWheel{
		slots:  make([]map[string]*Task, slotCount),
		tick:   tick,
		index:  make(map[string]int),
		ticker: time.NewTicker(tick),
	}
	for i := range tw.slots {
		tw.slots[i] = make(map[string]*Task)
	}

	return tw
}

// ticksFor 延迟换算为刻度数，范围 [1, slotCount]
func (tw *TimeWheel) ticksFor(delay time.Duration) int {
	ticks := int((delay + tw.tick - 1) / tw.tick)
	if ticks < 1 {
		return 1
	}
	if ticks > len(tw.slots) {
		return len(tw.slots)
	}
	return ticks
}

// AddTask 添加任务到时间轮，同 ID 的旧任务被替换
func (tw *TimeWheel) AddTask(task *Task) error {
	ticks := tw.ticksFor(task.Delay)

	tw.mu.Lock()
	defer tw.mu.Unlock()

	tw.removeLocked(task.ID)

	target := (tw.currentSlot + ticks) % len(tw.slots)
	tw.slots[target][task.ID] = task
	tw.index[task.ID] = target

	return nil
}

// RemoveTask 从时间轮删除任务
func (tw *TimeWheel) RemoveTask(taskID string) bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	return tw.removeLocked(taskID)
}

func (tw *TimeWheel) removeLocked(taskID string) bool {
	slot, ok := tw.index[taskID]
	if !ok {
		return false
	}
	delete(tw.index, taskID)
	delete(tw.slots[slot], taskID)
	return true
}

// Tick 推进时间轮并取出到期任务 (由调度器调用)
func (tw *TimeWheel) Tick() []*Task {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	tw.currentSlot = (tw.currentSlot + 1) % len(tw.slots)
	slot := tw.slots[tw.currentSlot]
	if len(slot) == 0 {
		return nil
	}

	tasks := make([]*Task, 0, len(slot))
	for id, task := range slot {
		tasks = append(tasks, task)
		delete(tw.index, id)
	}
	tw.slots[tw.currentSlot] = make(map[string]*Task)
	return tasks
}

// GetCurrentSlot 获取当前槽位索引
func (tw *TimeWheel) GetCurrentSlot() int {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	return tw.currentSlot
}

// Stop 停止时间轮
func (tw *TimeWheel) Stop() {
	tw.ticker.Stop()
}

// GetTicker 获取定时器
func (tw *TimeWheel) GetTicker() *time.Ticker {
	return tw.ticker
}

// GetTotalTaskCount 等待执行的任务总数
func (tw *TimeWheel) GetTotalTaskCount() int {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	return len(tw.index)
}
