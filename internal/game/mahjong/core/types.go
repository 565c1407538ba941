package core

import (
	"fmt"
	"strconv"
)

// TileSuit 牌的花色
type TileSuit int8

const (
	SuitMan    TileSuit = iota // 萬
	SuitPin                    // 筒
	SuitSou                    // 索
	SuitWind                   // 風 (1東 2南 3西 4北)
	SuitDragon                 // 龍 (1中 2發 3白)
	SuitFlower                 // 花 (梅蘭菊竹)
	SuitSeason                 // 季 (春夏秋冬)
)

var suitNames = [...]string{"man", "pin", "sou", "wind", "dragon", "flower", "season"}

// String 返回花色的字符串表示
func (s TileSuit) String() string {
	if s < 0 || int(s) >= len(suitNames) {
		return "unknown"
	}
	return suitNames[s]
}

// MarshalText 花色以名字序列化
func (s TileSuit) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(suitNames) {
		return nil, fmt.Errorf("invalid suit %d", s)
	}
	return []byte(suitNames[s]), nil
}

// UnmarshalText 从名字解析花色
func (s *TileSuit) UnmarshalText(text []byte) error {
	for i, name := range suitNames {
		if name == string(text) {
			*s = TileSuit(i)
			return nil
		}
	}
	return fmt.Errorf("invalid suit %q", text)
}

// IsSuited 萬/筒/索
func (s TileSuit) IsSuited() bool {
	return s == SuitMan || s == SuitPin || s == SuitSou
}

// IsHonor 字牌 (風/龍)
func (s TileSuit) IsHonor() bool {
	return s == SuitWind || s == SuitDragon
}

// IsBonus 花牌/季牌
func (s TileSuit) IsBonus() bool {
	return s == SuitFlower || s == SuitSeason
}

// MaxRank 花色的最大点数
func (s TileSuit) MaxRank() int8 {
	switch s {
	case SuitMan, SuitPin, SuitSou:
		return 9
	case SuitWind, SuitFlower, SuitSeason:
		return 4
	case SuitDragon:
		return 3
	default:
		return 0
	}
}

// 风位
const (
	WindEast  int8 = 1
	WindSouth int8 = 2
	WindWest  int8 = 3
	WindNorth int8 = 4
)

var (
	windNames   = [...]string{"East", "South", "West", "North"}
	dragonNames = [...]string{"Chun", "Hatsu", "Haku"}
	flowerNames = [...]string{"Plum", "Orchid", "Chrysanthemum", "Bamboo"}
	seasonNames = [...]string{"Spring", "Summer", "Autumn", "Winter"}
)

// WindName 风位名
func WindName(wind int8) string {
	if wind < 1 || int(wind) > len(windNames) {
		return "?"
	}
	return windNames[wind-1]
}

// TileKey 牌的值 (花色+点数)，同值的牌 key 相同
type TileKey struct {
	Suit TileSuit
	Rank int8
}

// Tile 麻将牌
// ID 在建牌墙时分配，全局唯一；Equal 只比较花色和点数
type Tile struct {
	ID   int      `json:"id"`
	Suit TileSuit `json:"suit"`
	Rank int8     `json:"rank"`
}

// Key 返回牌值
func (t Tile) Key() TileKey {
	return TileKey{Suit: t.Suit, Rank: t.Rank}
}

// Equal 值相等 (花色和点数相同)
func (t Tile) Equal(other Tile) bool {
	return t.Suit == other.Suit && t.Rank == other.Rank
}

// Same 同一张牌
func (t Tile) Same(other Tile) bool {
	return t.ID == other.ID
}

func (t Tile) IsSuited() bool { return t.Suit.IsSuited() }
func (t Tile) IsHonor() bool  { return t.Suit.IsHonor() }
func (t Tile) IsBonus() bool  { return t.Suit.IsBonus() }

// String 返回牌的字符串表示
func (t Tile) String() string {
	idx := int(t.Rank) - 1
	switch t.Suit {
	case SuitMan:
		return strconv.Itoa(int(t.Rank)) + "m"
	case SuitPin:
		return strconv.Itoa(int(t.Rank)) + "p"
	case SuitSou:
		return strconv.Itoa(int(t.Rank)) + "s"
	case SuitWind:
		if idx >= 0 && idx < len(windNames) {
			return windNames[idx]
		}
	case SuitDragon:
		if idx >= 0 && idx < len(dragonNames) {
			return dragonNames[idx]
		}
	case SuitFlower:
		if idx >= 0 && idx < len(flowerNames) {
			return flowerNames[idx]
		}
	case SuitSeason:
		if idx >= 0 && idx < len(seasonNames) {
			return seasonNames[idx]
		}
	}
	return "?"
}

// MeldType 组合类型
type MeldType int8

const (
	MeldPair MeldType = iota // 对子
	MeldChow                 // 吃 (顺子)
	MeldPong                 // 碰 (刻子)
	MeldKong                 // 杠
)

var meldNames = [...]string{"pair", "chow", "pong", "kong"}

// String 返回组合类型的字符串表示
func (m MeldType) String() string {
	if m < 0 || int(m) >= len(meldNames) {
		return "unknown"
	}
	return meldNames[m]
}

// MarshalText 组合类型以名字序列化
func (m MeldType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText 从名字解析组合类型
func (m *MeldType) UnmarshalText(text []byte) error {
	for i, name := range meldNames {
		if name == string(text) {
			*m = MeldType(i)
			return nil
		}
	}
	return fmt.Errorf("invalid meld type %q", text)
}

// Meld 组合，持有具体的牌实例
type Meld struct {
	Type  MeldType `json:"type"`
	Tiles []Tile   `json:"tiles"`
}

// IsTriplet 碰或杠
func (m Meld) IsTriplet() bool {
	return m.Type == MeldPong || m.Type == MeldKong
}

// Suit 组合的花色
func (m Meld) Suit() TileSuit {
	if len(m.Tiles) == 0 {
		return -1
	}
	return m.Tiles[0].Suit
}

// CloneMelds 深拷贝组合
func CloneMelds(melds []Meld) []Meld {
	if melds == nil {
		return nil
	}
	result := make([]Meld, len(melds))
	for i, m := range melds {
		result[i] = Meld{Type: m.Type, Tiles: CloneTiles(m.Tiles)}
	}
	return result
}

// MeldTiles 展开所有组合中的牌
func MeldTiles(melds []Meld) []Tile {
	var tiles []Tile
	for _, m := range melds {
		tiles = append(tiles, m.Tiles...)
	}
	return tiles
}
