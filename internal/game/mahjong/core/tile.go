package core

import "sort"

// SortTiles 对牌进行排序 (萬<筒<索<風<龍<花<季，再按点数)
// 稳定排序，同值的牌保持原有顺序
func SortTiles(tiles []Tile) {
	sort.SliceStable(tiles, func(i, j int) bool {
		return Less(tiles[i], tiles[j])
	})
}

// Less 牌的全序比较
func Less(a, b Tile) bool {
	if a.Suit != b.Suit {
		return a.Suit < b.Suit
	}
	return a.Rank < b.Rank
}

// SortedCopy 返回排序后的副本
func SortedCopy(tiles []Tile) []Tile {
	result := CloneTiles(tiles)
	SortTiles(result)
	return result
}

// CountTile 统计与 target 同值的牌数
func CountTile(tiles []Tile, target Tile) int {
	count := 0
	for _, t := range tiles {
		if t.Equal(target) {
			count++
		}
	}
	return count
}

// MatchingTiles 返回与 target 同值的牌
func MatchingTiles(tiles []Tile, target Tile) []Tile {
	var result []Tile
	for _, t := range tiles {
		if t.Equal(target) {
			result = append(result, t)
		}
	}
	return result
}

// RemoveFirst 移除第一张与 target 同值的牌，返回新切片
func RemoveFirst(tiles []Tile, target Tile) []Tile {
	for i, t := range tiles {
		if t.Equal(target) {
			result := make([]Tile, 0, len(tiles)-1)
			result = append(result, tiles[:i]...)
			return append(result, tiles[i+1:]...)
		}
	}
	return CloneTiles(tiles)
}

// RemoveByID 按 ID 移除一张牌
func RemoveByID(tiles []Tile, id int) ([]Tile, bool) {
	for i, t := range tiles {
		if t.ID == id {
			result := make([]Tile, 0, len(tiles)-1)
			result = append(result, tiles[:i]...)
			return append(result, tiles[i+1:]...), true
		}
	}
	return tiles, false
}

// RemoveTilesByID 按 ID 移除多张牌
func RemoveTilesByID(tiles []Tile, targets []Tile) []Tile {
	result := CloneTiles(tiles)
	for _, target := range targets {
		result, _ = RemoveByID(result, target.ID)
	}
	return result
}

// FindByID 查找指定 ID 的牌
func FindByID(tiles []Tile, id int) (Tile, bool) {
	for _, t := range tiles {
		if t.ID == id {
			return t, true
		}
	}
	return Tile{}, false
}

// CloneTiles 克隆牌组
func CloneTiles(tiles []Tile) []Tile {
	if tiles == nil {
		return nil
	}
	result := make([]Tile, len(tiles))
	copy(result, tiles)
	return result
}

// PlayingTiles 过滤掉花牌
func PlayingTiles(tiles []Tile) []Tile {
	result := make([]Tile, 0, len(tiles))
	for _, t := range tiles {
		if !t.IsBonus() {
			result = append(result, t)
		}
	}
	return result
}

// TileGroup 同值的一组牌
type TileGroup struct {
	Key   TileKey
	Tiles []Tile
}

// GroupByKey 按牌值分组，组的顺序为首次出现的顺序
func GroupByKey(tiles []Tile) []TileGroup {
	index := make(map[TileKey]int)
	var groups []TileGroup
	for _, t := range tiles {
		k := t.Key()
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, TileGroup{Key: k})
		}
		groups[i].Tiles = append(groups[i].Tiles, t)
	}
	return groups
}
