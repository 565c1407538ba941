package hkmahjong

import "sudooom.mahjong/internal/game/mahjong/core"

// HintKind 手牌提示类型
type HintKind string

const (
	HintNone    HintKind = "none"
	HintWin     HintKind = "win"     // 已可胡
	HintDiscard HintKind = "discard" // 持有摸到的牌，需要打出一张
	HintTenpai  HintKind = "tenpai"  // 听牌
	HintAway    HintKind = "away"    // 差几张
)

// Hint 手牌提示
type Hint struct {
	Kind    HintKind `json:"kind"`
	Shanten int      `json:"shanten"`
}

// HandHint 给玩家的手牌提示
// 持有摸到的牌时只看能否胡；否则按向听给出听牌或差几张 (<=2)
func HandHint(hand []core.Tile, melds []core.Meld) Hint {
	playing := core.PlayingTiles(hand)
	if len(playing) == 0 {
		return Hint{Kind: HintNone, Shanten: MaxShanten}
	}

	if len(playing)+3*len(melds) == 14 {
		if _, ok := CheckWin(playing, melds); ok {
			return Hint{Kind: HintWin, Shanten: -1}
		}
		return Hint{Kind: HintDiscard, Shanten: CalcShanten(playing)}
	}

	s := CalcShanten(playing)
	switch {
	case s <= 0:
		return Hint{Kind: HintTenpai, Shanten: s}
	case s <= 2 && len(melds) == 0:
		return Hint{Kind: HintAway, Shanten: s}
	default:
		return Hint{Kind: HintNone, Shanten: s}
	}
}
