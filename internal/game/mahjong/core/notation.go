package core

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// 解析出来的牌使用牌墙以外的 ID，避免和真实牌局冲突
var notationID atomic.Int64

func init() {
	notationID.Store(10000)
}

// ParseTiles 解析简写牌串，如 "123m 456p 789s 111z 99p"
// m/p/s 为萬筒索；z 为字牌 1-4 東南西北，5-7 中發白；f 为花，j 为季
func ParseTiles(s string) ([]Tile, error) {
	var tiles []Tile
	var digits []int8

	flush := func(suffix rune) error {
		if len(digits) == 0 {
			return fmt.Errorf("suffix %q without ranks", suffix)
		}
		for _, d := range digits {
			t, err := notationTile(d, suffix)
			if err != nil {
				return err
			}
			tiles = append(tiles, t)
		}
		digits = digits[:0]
		return nil
	}

	for _, r := range s {
		switch {
		case r >= '1' && r <= '9':
			digits = append(digits, int8(r-'0'))
		case strings.ContainsRune("mpszfj", r):
			if err := flush(r); err != nil {
				return nil, err
			}
		case r == ' ' || r == ',':
			if len(digits) > 0 {
				return nil, fmt.Errorf("ranks %v without suffix", digits)
			}
		default:
			return nil, fmt.Errorf("unexpected character %q", r)
		}
	}
	if len(digits) > 0 {
		return nil, fmt.Errorf("ranks %v without suffix", digits)
	}
	return tiles, nil
}

// MustParseTiles 同 ParseTiles，出错时 panic
func MustParseTiles(s string) []Tile {
	tiles, err := ParseTiles(s)
	if err != nil {
		panic(err)
	}
	return tiles
}

// MustParseTile 解析单张牌
func MustParseTile(s string) Tile {
	tiles := MustParseTiles(s)
	if len(tiles) != 1 {
		panic(fmt.Sprintf("expected one tile in %q", s))
	}
	return tiles[0]
}

func notationTile(rank int8, suffix rune) (Tile, error) {
	var suit TileSuit
	switch suffix {
	case 'm':
		suit = SuitMan
	case 'p':
		suit = SuitPin
	case 's':
		suit = SuitSou
	case 'z':
		if rank <= 4 {
			suit = SuitWind
		} else {
			suit, rank = SuitDragon, rank-4
		}
	case 'f':
		suit = SuitFlower
	case 'j':
		suit = SuitSeason
	}
	if rank < 1 || rank > suit.MaxRank() {
		return Tile{}, fmt.Errorf("rank %d out of range for %s", rank, suit)
	}
	return Tile{ID: int(notationID.Add(1)), Suit: suit, Rank: rank}, nil
}

// FormatTiles 输出简写牌串 (与 ParseTiles 对应)
func FormatTiles(tiles []Tile) string {
	var b strings.Builder
	var pending []byte
	var last rune
	emit := func() {
		if len(pending) == 0 {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.Write(pending)
		b.WriteRune(last)
		pending = pending[:0]
	}
	for _, t := range tiles {
		var suffix rune
		rank := t.Rank
		switch t.Suit {
		case SuitMan:
			suffix = 'm'
		case SuitPin:
			suffix = 'p'
		case SuitSou:
			suffix = 's'
		case SuitWind:
			suffix = 'z'
		case SuitDragon:
			suffix, rank = 'z', rank+4
		case SuitFlower:
			suffix = 'f'
		case SuitSeason:
			suffix = 'j'
		}
		if suffix != last {
			emit()
			last = suffix
		}
		pending = append(pending, byte('0'+rank))
	}
	emit()
	return b.String()
}
