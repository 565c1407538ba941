package core

import "math/rand"

const (
	// WallSize 牌墙总数
	WallSize = 144
	// HandSize 手牌基础张数
	HandSize = 13
)

// BuildTiles 按固定顺序生成 144 张牌，ID 从 0 递增
// 萬筒索各 1-9 四张，風 1-4 四张，龍 1-3 四张，花、季各 1-4 一张
func BuildTiles() []Tile {
	tiles := make([]Tile, 0, WallSize)
	add := func(suit TileSuit, rank int8) {
		tiles = append(tiles, Tile{ID: len(tiles), Suit: suit, Rank: rank})
	}

	for _, suit := range []TileSuit{SuitMan, SuitPin, SuitSou} {
		for r := int8(1); r <= 9; r++ {
			for c := 0; c < 4; c++ {
				add(suit, r)
			}
		}
	}
	for r := int8(1); r <= 4; r++ {
		for c := 0; c < 4; c++ {
			add(SuitWind, r)
		}
	}
	for r := int8(1); r <= 3; r++ {
		for c := 0; c < 4; c++ {
			add(SuitDragon, r)
		}
	}
	for r := int8(1); r <= 4; r++ {
		add(SuitFlower, r)
	}
	for r := int8(1); r <= 4; r++ {
		add(SuitSeason, r)
	}
	return tiles
}

// Wall 牌墙
// 游标只进不退
type Wall struct {
	tiles  []Tile
	cursor int
}

// NewWall 生成并洗好一副牌墙
func NewWall(rng *rand.Rand) *Wall {
	tiles := BuildTiles()
	Shuffle(tiles, rng)
	return &Wall{tiles: tiles}
}

// NewWallFromTiles 以给定顺序构造牌墙 (测试、复盘用)
func NewWallFromTiles(tiles []Tile) *Wall {
	return &Wall{tiles: CloneTiles(tiles)}
}

// Shuffle Fisher-Yates 洗牌
func Shuffle(tiles []Tile, rng *rand.Rand) {
	for i := len(tiles) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		tiles[i], tiles[j] = tiles[j], tiles[i]
	}
}

// Draw 摸一张牌，牌墙空时返回 false
func (w *Wall) Draw() (Tile, bool) {
	if w.cursor >= len(w.tiles) {
		return Tile{}, false
	}
	t := w.tiles[w.cursor]
	w.cursor++
	return t, true
}

// Remaining 剩余张数
func (w *Wall) Remaining() int {
	return len(w.tiles) - w.cursor
}

// Len 牌墙总张数
func (w *Wall) Len() int {
	return len(w.tiles)
}

// Undrawn 返回未摸的牌 (副本)
func (w *Wall) Undrawn() []Tile {
	return CloneTiles(w.tiles[w.cursor:])
}

// Clone 拷贝牌墙
func (w *Wall) Clone() *Wall {
	return &Wall{tiles: CloneTiles(w.tiles), cursor: w.cursor}
}
