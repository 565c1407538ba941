package hkmahjong

import "sudooom.mahjong/internal/game/mahjong/core"

// FanResult 番数及明细
type FanResult struct {
	Fan       int      `json:"fan"`
	Breakdown []string `json:"breakdown"`
}

// 番种明细
const (
	FanAllTriplets    = "All Triplets +3"
	FanAllSequences   = "All Sequences +1"
	FanMixedOneSuit   = "Mixed One-Suit +3"
	FanPureOneSuit    = "Pure One-Suit +7"
	FanAllHonors      = "All Honors +10"
	FanDragonTriplet  = "Dragon Triplet +1"
	FanWindTriplet    = "Wind Triplet +1"
	FanDragonPair     = "Dragon Pair +1"
	FanKong           = "Kong +1"
	FanChickenHand    = "Chicken Hand (min 1)"
	FanSevenPairs     = "Seven Pairs +4"
	sevenPairsFanBase = 4
)

// CalcFan 计算番数
// 各番种独立累加，可以叠加；不足 1 番按雞胡计 1 番
func CalcFan(melds []core.Meld, pair *core.Tile, playing []core.Tile) FanResult {
	res := FanResult{Breakdown: []string{}}
	add := func(n int, name string) {
		res.Fan += n
		res.Breakdown = append(res.Breakdown, name)
	}

	allTriplets, allChows := true, true
	for _, m := range melds {
		if !m.IsTriplet() {
			allTriplets = false
		}
		if m.Type != core.MeldChow {
			allChows = false
		}
	}

	suits := make(map[core.TileSuit]bool)
	hasHonor, allHonor := false, true
	for _, t := range playing {
		if t.IsSuited() {
			suits[t.Suit] = true
		}
		if t.IsHonor() {
			hasHonor = true
		} else {
			allHonor = false
		}
	}
	oneSuit := len(suits) == 1

	if len(melds) > 0 && allTriplets {
		add(3, FanAllTriplets)
	}
	if len(melds) > 0 && allChows && (pair == nil || !pair.IsHonor()) {
		add(1, FanAllSequences)
	}
	if oneSuit && hasHonor {
		add(3, FanMixedOneSuit)
	}
	if oneSuit && !hasHonor {
		add(7, FanPureOneSuit)
	}
	if allHonor {
		add(10, FanAllHonors)
	}

	for _, m := range melds {
		if m.IsTriplet() && m.Suit() == core.SuitDragon {
			add(1, FanDragonTriplet)
		}
	}
	for _, m := range melds {
		if m.IsTriplet() && m.Suit() == core.SuitWind {
			add(1, FanWindTriplet)
		}
	}
	if pair != nil && pair.Suit == core.SuitDragon {
		add(1, FanDragonPair)
	}
	for _, m := range melds {
		if m.Type == core.MeldKong {
			add(1, FanKong)
		}
	}

	if res.Fan < 1 {
		res.Fan = 1
		res.Breakdown = append(res.Breakdown, FanChickenHand)
	}
	return res
}

// CalcFanSevenPairs 七对子固定 4 番
func CalcFanSevenPairs() FanResult {
	return FanResult{Fan: sevenPairsFanBase, Breakdown: []string{FanSevenPairs}}
}

// Points 胡牌得分 4 * 2^fan
func Points(fan int) int {
	return 4 << fan
}
