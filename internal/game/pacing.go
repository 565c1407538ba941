package game

import (
	"math/rand"
	"time"

	"sudooom.mahjong/internal/game/mahjong/table"
)

// DelayRange AI 思考时间区间 [Min, Max)
type DelayRange struct {
	Min time.Duration `mapstructure:"min"`
	Max time.Duration `mapstructure:"max"`
}

// pick 在区间内取一个随机延迟
func (r DelayRange) pick(rng *rand.Rand) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(rng.Int63n(int64(r.Max-r.Min)))
}

// Pacing AI 各类动作的延迟
type Pacing struct {
	Draw    DelayRange `mapstructure:"draw"`
	Discard DelayRange `mapstructure:"discard"`
	Claim   DelayRange `mapstructure:"claim"`
}

// DefaultPacing 默认节奏：摸牌 400-1000ms，出牌 500-1200ms，认领 600-1000ms
func DefaultPacing() Pacing {
	return Pacing{
		Draw:    DelayRange{Min: 400 * time.Millisecond, Max: 1000 * time.Millisecond},
		Discard: DelayRange{Min: 500 * time.Millisecond, Max: 1200 * time.Millisecond},
		Claim:   DelayRange{Min: 600 * time.Millisecond, Max: 1000 * time.Millisecond},
	}
}

// delayFor 按 AI 步骤取延迟
func (p Pacing) delayFor(step table.AIStep, rng *rand.Rand) time.Duration {
	switch step {
	case table.AIStepDraw:
		return p.Draw.pick(rng)
	case table.AIStepDiscard:
		return p.Discard.pick(rng)
	default:
		return p.Claim.pick(rng)
	}
}
