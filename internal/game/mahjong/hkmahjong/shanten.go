package hkmahjong

import (
	"strings"

	"sudooom.mahjong/internal/game/mahjong/core"
)

// MaxShanten 向听数上限
const MaxShanten = 8

// CalcShanten 估算向听数：-1 已胡，0 听牌
// 取普通型和七对子型估算的较小值；估算是启发式的，不保证最优
func CalcShanten(tiles []core.Tile) int {
	if len(tiles) == 0 {
		return MaxShanten
	}
	playing := core.PlayingTiles(tiles)
	c := meldCounter{memo: make(map[string]meldCount)}
	return min(c.shantenNormal(playing), shantenSevenPairs(playing))
}

type meldCount struct {
	complete int
	partial  int
}

func (m meldCount) score() int {
	return m.complete*2 + m.partial
}

// meldCounter 单次计算内按牌值缓存拆分结果
type meldCounter struct {
	memo map[string]meldCount
}

func (c *meldCounter) shantenNormal(tiles []core.Tile) int {
	best := MaxShanten
	for _, group := range core.GroupByKey(tiles) {
		if len(group.Tiles) < 2 {
			continue
		}
		rest := core.RemoveFirst(core.RemoveFirst(tiles, group.Tiles[0]), group.Tiles[0])
		if s := c.shantenFromMelds(rest); s < best {
			best = s
		}
	}

	// 不指定将，作为上界
	if s := c.shantenFromMelds(tiles) + 1; s < best {
		best = s
	}
	return best
}

func (c *meldCounter) shantenFromMelds(tiles []core.Tile) int {
	n := len(tiles)
	if n == 0 {
		return -1
	}
	best := c.count(core.SortedCopy(tiles))
	return max(-1, n/3-1-best.complete-best.partial)
}

// count 返回已排序牌组的最佳 (面子, 搭子) 数
// 面子只从最小的牌开始找；搭子取相邻的对子或同花色距离不超过 2 的两张
func (c *meldCounter) count(tiles []core.Tile) meldCount {
	if len(tiles) == 0 {
		return meldCount{}
	}
	key := valueKey(tiles)
	if cached, ok := c.memo[key]; ok {
		return cached
	}

	best := meldCount{}
	consider := func(res meldCount) {
		if res.score() > best.score() {
			best = res
		}
	}

	a := tiles[0]

	// 刻子
	if j := indexEqual(tiles, a, 1); j != -1 {
		if k := indexEqual(tiles, a, j+1); k != -1 {
			sub := c.count(without(tiles, 0, j, k))
			consider(meldCount{complete: sub.complete + 1, partial: sub.partial})
		}
	}

	// 顺子
	if a.IsSuited() {
		j := indexRank(tiles, a.Suit, a.Rank+1, -1)
		if j != -1 {
			if k := indexRank(tiles, a.Suit, a.Rank+2, j); k != -1 {
				sub := c.count(without(tiles, 0, j, k))
				consider(meldCount{complete: sub.complete + 1, partial: sub.partial})
			}
		}
	}

	// 搭子
	for i := 0; i < len(tiles)-1; i++ {
		x, y := tiles[i], tiles[i+1]
		if x.Equal(y) || (x.Suit == y.Suit && x.IsSuited() && y.Rank-x.Rank <= 2) {
			sub := c.count(without(tiles, i, i+1))
			consider(meldCount{complete: sub.complete, partial: sub.partial + 1})
		}
	}

	c.memo[key] = best
	return best
}

// shantenSevenPairs 七对子向听：只对 13/14 张有效
func shantenSevenPairs(tiles []core.Tile) int {
	if len(tiles) != 13 && len(tiles) != 14 {
		return MaxShanten
	}
	pairs := 0
	for _, g := range core.GroupByKey(tiles) {
		if len(g.Tiles) >= 2 {
			pairs++
		}
	}
	return 6 - pairs
}

func indexEqual(tiles []core.Tile, target core.Tile, from int) int {
	for i := from; i < len(tiles); i++ {
		if tiles[i].Equal(target) {
			return i
		}
	}
	return -1
}

func indexRank(tiles []core.Tile, suit core.TileSuit, rank int8, skip int) int {
	for i := 1; i < len(tiles); i++ {
		if i == skip {
			continue
		}
		if tiles[i].Suit == suit && tiles[i].Rank == rank {
			return i
		}
	}
	return -1
}

func without(tiles []core.Tile, idx ...int) []core.Tile {
	result := make([]core.Tile, 0, len(tiles)-len(idx))
	for i, t := range tiles {
		skip := false
		for _, x := range idx {
			if i == x {
				skip = true
				break
			}
		}
		if !skip {
			result = append(result, t)
		}
	}
	return result
}

func valueKey(tiles []core.Tile) string {
	var b strings.Builder
	b.Grow(len(tiles) * 2)
	for _, t := range tiles {
		b.WriteByte(byte(t.Suit))
		b.WriteByte(byte(t.Rank))
	}
	return b.String()
}
