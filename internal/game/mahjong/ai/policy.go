package ai

import (
	"fmt"

	"sudooom.mahjong/internal/game/mahjong/core"
)

// Difficulty AI 难度
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty 解析难度，空字符串视为 medium
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s), nil
	case "":
		return DifficultyMedium, nil
	default:
		return "", fmt.Errorf("unknown difficulty: %q", s)
	}
}

// Random AI 使用的随机源，*rand.Rand 满足该接口
type Random interface {
	Float64() float64
	Intn(n int) int
}

// Policy AI 决策接口
// 每个 AI 座位一个实例，观察所有人的出牌
type Policy interface {
	Difficulty() Difficulty
	// ChooseDiscard 选择打出的牌，手里没有可打的牌时返回 false
	ChooseDiscard(hand []core.Tile, melds []core.Meld, roundWind, seatWind int8) (core.Tile, bool)
	// ShouldPong 是否碰 tile
	ShouldPong(hand []core.Tile, melds []core.Meld, tile core.Tile, roundWind, seatWind int8) bool
	// ShouldChow 是否吃 tile
	ShouldChow(hand []core.Tile, melds []core.Meld, tile core.Tile) bool
	// TrackDiscard 记录一张打出的牌
	TrackDiscard(tile core.Tile)
}

// NewPolicy 按难度创建 AI
func NewPolicy(difficulty Difficulty, rng Random) (Policy, error) {
	if rng == nil {
		return nil, fmt.Errorf("nil random source")
	}
	switch difficulty {
	case DifficultyEasy:
		return &EasyPolicy{rng: rng, memory: NewMemory()}, nil
	case DifficultyMedium:
		return &MediumPolicy{smartPolicy{rng: rng, memory: NewMemory()}}, nil
	case DifficultyHard:
		return &HardPolicy{smartPolicy{rng: rng, memory: NewMemory()}}, nil
	default:
		return nil, fmt.Errorf("unknown difficulty: %q", difficulty)
	}
}
