package ai

import "sudooom.mahjong/internal/game/mahjong/core"

// Memory AI 记住的已打出的牌
type Memory struct {
	seen map[core.TileKey]int
}

// NewMemory 创建空的记忆
func NewMemory() *Memory {
	return &Memory{seen: make(map[core.TileKey]int)}
}

// MarkDiscarded 记录一张打出的牌
func (m *Memory) MarkDiscarded(tile core.Tile) {
	m.seen[tile.Key()]++
}

// IsSeen 是否见过同值的牌被打出
func (m *Memory) IsSeen(tile core.Tile) bool {
	return m.seen[tile.Key()] > 0
}

// SeenCount 同值的牌被打出的次数
func (m *Memory) SeenCount(tile core.Tile) int {
	return m.seen[tile.Key()]
}

// Reset 新一局清空记忆
func (m *Memory) Reset() {
	clear(m.seen)
}
