package ai

import (
	"sudooom.mahjong/internal/game/mahjong/core"
	"sudooom.mahjong/internal/game/mahjong/hkmahjong"
)

// 决策阈值
const (
	easyPongChance  = 0.3
	easyChowChance  = 0.2
	mediumChowGate  = 0.5
	tieSwapChance   = 0.3
	hardPongMaxShan = 2

	// hard 难度只在向听数不超过该值时调整打牌评分
	hardAdjustMaxShanten = 2
	seenDiscardBonus     = 0.5
	honorKeepBonus       = 1.0
)

// EasyPolicy 随机打牌，按固定概率碰/吃
type EasyPolicy struct {
	rng    Random
	memory *Memory
}

func (p *EasyPolicy) Difficulty() Difficulty { return DifficultyEasy }

func (p *EasyPolicy) TrackDiscard(tile core.Tile) { p.memory.MarkDiscarded(tile) }

func (p *EasyPolicy) ChooseDiscard(hand []core.Tile, _ []core.Meld, _, _ int8) (core.Tile, bool) {
	playing := core.PlayingTiles(hand)
	if len(playing) == 0 {
		return core.Tile{}, false
	}
	return playing[p.rng.Intn(len(playing))], true
}

func (p *EasyPolicy) ShouldPong(_ []core.Tile, _ []core.Meld, _ core.Tile, _, _ int8) bool {
	return p.rng.Float64() < easyPongChance
}

func (p *EasyPolicy) ShouldChow(_ []core.Tile, _ []core.Meld, _ core.Tile) bool {
	return p.rng.Float64() < easyChowChance
}

// smartPolicy medium/hard 共用的向听评估
type smartPolicy struct {
	rng    Random
	memory *Memory
}

func (p *smartPolicy) TrackDiscard(tile core.Tile) { p.memory.MarkDiscarded(tile) }

// chooseDiscard 逐张试打，取打后向听最小的牌；分数相同时以 30% 概率换成后来的牌
// adjust 可对分数做额外修正
func (p *smartPolicy) chooseDiscard(hand []core.Tile, adjust func(core.Tile) float64) (core.Tile, bool) {
	playing := core.PlayingTiles(hand)
	if len(playing) == 0 {
		return core.Tile{}, false
	}

	best := 99.0
	var bestTile *core.Tile
	for i, tile := range playing {
		score := float64(hkmahjong.CalcShanten(core.RemoveFirst(playing, tile)))
		if adjust != nil {
			score -= adjust(tile)
		}
		if score < best || (score == best && p.rng.Float64() < tieSwapChance) {
			best = score
			bestTile = &playing[i]
		}
	}
	if bestTile == nil {
		return playing[0], true
	}
	return *bestTile, true
}

// pongShanten 返回当前向听和碰后向听，手里不足两张时 ok 为 false
func pongShanten(hand []core.Tile, tile core.Tile) (current, after int, ok bool) {
	playing := core.PlayingTiles(hand)
	if core.CountTile(playing, tile) < 2 {
		return 0, 0, false
	}
	current = hkmahjong.CalcShanten(hand)

	rest := make([]core.Tile, 0, len(playing))
	for _, t := range playing {
		if !t.Equal(tile) {
			rest = append(rest, t)
		}
	}
	after = hkmahjong.CalcShanten(rest)
	return current, after, true
}

// chowShanten 返回当前向听，吃不了时 ok 为 false
func chowShanten(hand []core.Tile, tile core.Tile) (int, bool) {
	if !tile.IsSuited() {
		return 0, false
	}
	if len(hkmahjong.ChowCandidates(hand, tile)) == 0 {
		return 0, false
	}
	return hkmahjong.CalcShanten(core.PlayingTiles(hand)), true
}

// MediumPolicy 按向听打牌，碰能进向听或字牌，吃有一半概率
type MediumPolicy struct {
	smartPolicy
}

func (p *MediumPolicy) Difficulty() Difficulty { return DifficultyMedium }

func (p *MediumPolicy) ChooseDiscard(hand []core.Tile, _ []core.Meld, _, _ int8) (core.Tile, bool) {
	return p.chooseDiscard(hand, nil)
}

func (p *MediumPolicy) ShouldPong(hand []core.Tile, _ []core.Meld, tile core.Tile, _, _ int8) bool {
	current, after, ok := pongShanten(hand, tile)
	if !ok {
		return false
	}
	return after <= current-1 || tile.IsHonor()
}

func (p *MediumPolicy) ShouldChow(hand []core.Tile, _ []core.Meld, tile core.Tile) bool {
	current, ok := chowShanten(hand, tile)
	if !ok {
		return false
	}
	return current >= 1 && p.rng.Float64() < mediumChowGate
}

// HardPolicy 在 medium 的基础上参考已见的牌和字牌价值，离胡远时不碰
type HardPolicy struct {
	smartPolicy
}

func (p *HardPolicy) Difficulty() Difficulty { return DifficultyHard }

func (p *HardPolicy) ChooseDiscard(hand []core.Tile, _ []core.Meld, roundWind, seatWind int8) (core.Tile, bool) {
	if hkmahjong.CalcShanten(hand) > hardAdjustMaxShanten {
		return p.chooseDiscard(hand, nil)
	}
	return p.chooseDiscard(hand, func(tile core.Tile) float64 {
		var bonus float64
		if p.memory.IsSeen(tile) {
			bonus += seenDiscardBonus
		}
		if tile.Suit == core.SuitDragon {
			bonus += honorKeepBonus
		}
		if tile.Suit == core.SuitWind && (tile.Rank == roundWind || tile.Rank == seatWind) {
			bonus += honorKeepBonus
		}
		return bonus
	})
}

func (p *HardPolicy) ShouldPong(hand []core.Tile, _ []core.Meld, tile core.Tile, _, _ int8) bool {
	current, after, ok := pongShanten(hand, tile)
	if !ok {
		return false
	}
	return (after < current || tile.IsHonor()) && current <= hardPongMaxShan
}

func (p *HardPolicy) ShouldChow(hand []core.Tile, _ []core.Meld, tile core.Tile) bool {
	current, ok := chowShanten(hand, tile)
	if !ok {
		return false
	}
	return current >= 1
}
