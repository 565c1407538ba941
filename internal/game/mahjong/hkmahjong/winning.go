package hkmahjong

import (
	"iter"
	"sort"

	"sudooom.mahjong/internal/game/mahjong/core"
)

// SpecialSevenPairs 七对子的特殊牌型标记
const SpecialSevenPairs = "7pairs"

// Decomposition 胡牌拆解结果
type Decomposition struct {
	Melds    []core.Meld `json:"melds"`             // 手牌拆出的组合
	Pair     []core.Tile `json:"pair,omitempty"`    // 将 (七对子时为空)
	AllMelds []core.Meld `json:"allMelds"`          // 已亮出的组合 + 手牌组合
	Special  string      `json:"special,omitempty"` // 特殊牌型
	Fan      FanResult   `json:"fan"`
}

// IsSevenPairs 是否七对子
func (d *Decomposition) IsSevenPairs() bool {
	return d.Special == SpecialSevenPairs
}

// CheckWin 判断手牌能否胡牌
// 手牌需为 14-3*len(melds) 张 (不计花牌)，否则直接返回 false
func CheckWin(hand []core.Tile, melds []core.Meld) (*Decomposition, bool) {
	playing := core.PlayingTiles(hand)
	if len(playing) != 14-3*len(melds) {
		return nil, false
	}
	if len(playing)%3 != 2 {
		return nil, false
	}
	return FindWinningHand(playing, melds)
}

// FindWinningHand 在已亮组合的基础上拆解手牌
// 先试七对子，再按出现顺序逐个试将，取第一个能拆完的方案
func FindWinningHand(tiles []core.Tile, declared []core.Meld) (*Decomposition, bool) {
	if len(tiles)%3 != 2 {
		return nil, false
	}

	if len(tiles) == 14 && len(declared) == 0 {
		if pairs, ok := FindSevenPairs(tiles); ok {
			return &Decomposition{
				Melds:    pairs,
				AllMelds: pairs,
				Special:  SpecialSevenPairs,
				Fan:      CalcFanSevenPairs(),
			}, true
		}
	}

	for _, group := range core.GroupByKey(tiles) {
		if len(group.Tiles) < 2 {
			continue
		}
		pair := []core.Tile{group.Tiles[0], group.Tiles[1]}
		rest := core.RemoveTilesByID(tiles, pair)

		melds, ok := DecomposeMelds(rest)
		if !ok {
			continue
		}

		allMelds := make([]core.Meld, 0, len(declared)+len(melds))
		allMelds = append(allMelds, core.CloneMelds(declared)...)
		allMelds = append(allMelds, melds...)

		// 花色类番种只看暗手
		return &Decomposition{
			Melds:    melds,
			Pair:     pair,
			AllMelds: allMelds,
			Fan:      CalcFan(allMelds, &pair[0], tiles),
		}, true
	}
	return nil, false
}

// DecomposeMelds 把牌全部拆成刻子/顺子
// 空牌组视为成功 (零个组合)；张数不是 3 的倍数直接失败
// 总是从最小的牌开始，先试刻子再试顺子，取第一个成功的分支
func DecomposeMelds(tiles []core.Tile) ([]core.Meld, bool) {
	if len(tiles) == 0 {
		return []core.Meld{}, true
	}
	if len(tiles)%3 != 0 {
		return nil, false
	}

	sorted := core.SortedCopy(tiles)
	first := sorted[0]

	// 刻子
	var same []core.Tile
	for _, t := range sorted[1:] {
		if t.Equal(first) {
			same = append(same, t)
		}
	}
	if len(same) >= 2 {
		meld := []core.Tile{first, same[0], same[1]}
		if rest, ok := DecomposeMelds(core.RemoveTilesByID(sorted, meld)); ok {
			return append([]core.Meld{{Type: core.MeldPong, Tiles: meld}}, rest...), true
		}
	}

	// 顺子
	if first.IsSuited() {
		t1, ok1 := findRank(sorted, first, first.Rank+1, -1)
		if ok1 {
			t2, ok2 := findRank(sorted, first, first.Rank+2, t1.ID)
			if ok2 {
				meld := []core.Tile{first, t1, t2}
				if rest, ok := DecomposeMelds(core.RemoveTilesByID(sorted, meld)); ok {
					return append([]core.Meld{{Type: core.MeldChow, Tiles: meld}}, rest...), true
				}
			}
		}
	}

	return nil, false
}

// findRank 在 tiles 中找与 first 同花色、点数为 rank 的第一张牌 (排除 first 和 skipID)
func findRank(tiles []core.Tile, first core.Tile, rank int8, skipID int) (core.Tile, bool) {
	for _, t := range tiles {
		if t.ID == first.ID || t.ID == skipID {
			continue
		}
		if t.Suit == first.Suit && t.Rank == rank {
			return t, true
		}
	}
	return core.Tile{}, false
}

// FindSevenPairs 七对子：恰好 7 组，每组 2 张
func FindSevenPairs(tiles []core.Tile) ([]core.Meld, bool) {
	groups := core.GroupByKey(tiles)
	if len(groups) != 7 {
		return nil, false
	}
	pairs := make([]core.Meld, 0, 7)
	for _, g := range groups {
		if len(g.Tiles) != 2 {
			return nil, false
		}
		pairs = append(pairs, core.Meld{Type: core.MeldPair, Tiles: g.Tiles})
	}
	return pairs, true
}

// FindChowsWithTile 枚举手牌与 tile 可组成的顺子 (含 tile 本身，按点数排序)
// 窗口为 [r-2..r] [r-1..r+1] [r..r+2]，每个需要的点数只取一张手牌
func FindChowsWithTile(hand []core.Tile, tile core.Tile) iter.Seq[[]core.Tile] {
	return func(yield func([]core.Tile) bool) {
		if !tile.IsSuited() {
			return
		}
		r := tile.Rank
		for _, start := range []int8{r - 2, r - 1, r} {
			if start < 1 || start+2 > 9 {
				continue
			}
			used := []core.Tile{tile}
			valid := true
			for rank := start; rank < start+3; rank++ {
				if rank == r {
					continue
				}
				t, ok := firstOfRank(hand, tile.Suit, rank)
				if !ok {
					valid = false
					break
				}
				used = append(used, t)
			}
			if !valid {
				continue
			}
			sort.SliceStable(used, func(i, j int) bool { return used[i].Rank < used[j].Rank })
			if !yield(used) {
				return
			}
		}
	}
}

func firstOfRank(hand []core.Tile, suit core.TileSuit, rank int8) (core.Tile, bool) {
	for _, t := range hand {
		if t.Suit == suit && t.Rank == rank {
			return t, true
		}
	}
	return core.Tile{}, false
}

// UniqueChows 按点数组合去重
func UniqueChows(chows iter.Seq[[]core.Tile]) [][]core.Tile {
	seen := make(map[[3]int8]bool)
	var result [][]core.Tile
	for chow := range chows {
		var sig [3]int8
		for i, t := range chow {
			sig[i] = t.Rank
		}
		if seen[sig] {
			continue
		}
		seen[sig] = true
		result = append(result, chow)
	}
	return result
}

// ChowCandidates 手牌吃 tile 的所有去重方案
func ChowCandidates(hand []core.Tile, tile core.Tile) [][]core.Tile {
	return UniqueChows(FindChowsWithTile(core.PlayingTiles(hand), tile))
}
