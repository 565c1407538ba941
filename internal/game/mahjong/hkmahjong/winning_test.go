package hkmahjong

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.mahjong/internal/game/mahjong/core"
)

func tiles(s string) []core.Tile {
	return core.MustParseTiles(s)
}

func meldTypes(melds []core.Meld) []core.MeldType {
	types := make([]core.MeldType, len(melds))
	for i, m := range melds {
		types[i] = m.Type
	}
	return types
}

func ranks(ts []core.Tile) []int8 {
	r := make([]int8, len(ts))
	for i, t := range ts {
		r[i] = t.Rank
	}
	return r
}

func TestCheckWin_CanonicalHand(t *testing.T) {
	hand := tiles("123m 456m 789m 111z 99p")

	d, ok := CheckWin(hand, nil)
	require.True(t, ok)

	assert.Empty(t, d.Special)
	require.Len(t, d.Pair, 2)
	assert.Equal(t, core.SuitPin, d.Pair[0].Suit)
	assert.Equal(t, int8(9), d.Pair[0].Rank)
	assert.Equal(t, []core.MeldType{core.MeldChow, core.MeldChow, core.MeldChow, core.MeldPong}, meldTypes(d.Melds))
	assert.GreaterOrEqual(t, d.Fan.Fan, 1)
	assert.Equal(t, FanResult{Fan: 1, Breakdown: []string{FanWindTriplet}}, d.Fan)
}

func TestCheckWin_BonusTilesIgnored(t *testing.T) {
	hand := append(tiles("123m 456m 789m 111z 99p"), tiles("1f 3j")...)
	_, ok := CheckWin(hand, nil)
	assert.True(t, ok)
}

func TestCheckWin_WrongSize(t *testing.T) {
	_, ok := CheckWin(tiles("123m 456m 789m 111z 9p"), nil)
	assert.False(t, ok)

	// 一个已亮组合时需要 11 张
	declared := []core.Meld{{Type: core.MeldPong, Tiles: tiles("555p")}}
	_, ok = CheckWin(tiles("123m 456m 789m 111z 99p"), declared)
	assert.False(t, ok)
}

func TestCheckWin_NotWinning(t *testing.T) {
	_, ok := CheckWin(tiles("147m 147p 147s 1234z 5z"), nil)
	assert.False(t, ok)
}

func TestCheckWin_SevenPairs(t *testing.T) {
	d, ok := CheckWin(tiles("1122m 3344p 5566s 77z"), nil)
	require.True(t, ok)

	assert.True(t, d.IsSevenPairs())
	assert.Equal(t, SpecialSevenPairs, d.Special)
	assert.Nil(t, d.Pair)
	assert.Len(t, d.Melds, 7)
	for _, m := range d.Melds {
		assert.Equal(t, core.MeldPair, m.Type)
	}
	assert.Equal(t, 4, d.Fan.Fan)
	assert.Equal(t, []string{FanSevenPairs}, d.Fan.Breakdown)
}

func TestFindWinningHand_ThirteenTilesNeverSevenPairs(t *testing.T) {
	_, ok := FindWinningHand(tiles("1122m 3344p 5566s 7z"), nil)
	assert.False(t, ok)

	_, ok = FindSevenPairs(tiles("1122m 3344p 5566s 7z"))
	assert.False(t, ok)
}

func TestFindSevenPairs_FourOfAKindIsNotTwoPairs(t *testing.T) {
	_, ok := FindSevenPairs(tiles("1111m 3344p 5566s 77z"))
	assert.False(t, ok)
}

func TestCheckWin_PureOneSuit(t *testing.T) {
	d, ok := CheckWin(tiles("111m 234m 555m 678m 99m"), nil)
	require.True(t, ok)

	assert.Equal(t, int8(9), d.Pair[0].Rank)
	assert.Equal(t, []core.MeldType{core.MeldPong, core.MeldChow, core.MeldPong, core.MeldChow}, meldTypes(d.Melds))
	assert.Equal(t, FanResult{Fan: 7, Breakdown: []string{FanPureOneSuit}}, d.Fan)
}

func TestCheckWin_AllHonorTriplets(t *testing.T) {
	d, ok := CheckWin(tiles("111z 222z 555z 666z 77z"), nil)
	require.True(t, ok)

	assert.Equal(t, 18, d.Fan.Fan)
	assert.Equal(t, []string{
		FanAllTriplets,
		FanAllHonors,
		FanDragonTriplet,
		FanDragonTriplet,
		FanWindTriplet,
		FanWindTriplet,
		FanDragonPair,
	}, d.Fan.Breakdown)
}

func TestCheckWin_ChickenHand(t *testing.T) {
	d, ok := CheckWin(tiles("111m 456p 789s 234m 55s"), nil)
	require.True(t, ok)
	assert.Equal(t, FanResult{Fan: 1, Breakdown: []string{FanChickenHand}}, d.Fan)
}

func TestCheckWin_AllSequencesWithDeclaredChow(t *testing.T) {
	declared := []core.Meld{{Type: core.MeldChow, Tiles: tiles("123p")}}

	d, ok := CheckWin(tiles("456m 789m 234s 55s"), declared)
	require.True(t, ok)

	assert.Len(t, d.Melds, 3)
	assert.Len(t, d.AllMelds, 4)
	assert.Equal(t, core.MeldChow, d.AllMelds[0].Type)
	assert.Equal(t, FanResult{Fan: 1, Breakdown: []string{FanAllSequences}}, d.Fan)
}

func TestCheckWin_SuitFanIgnoresDeclaredTiles(t *testing.T) {
	declared := []core.Meld{{Type: core.MeldPong, Tiles: tiles("555p")}}

	d, ok := CheckWin(tiles("123456789m 99m"), declared)
	require.True(t, ok)
	assert.Equal(t, FanResult{Fan: 7, Breakdown: []string{FanPureOneSuit}}, d.Fan)
	assert.Equal(t, 512, Points(d.Fan.Fan))

	declared = []core.Meld{{Type: core.MeldPong, Tiles: tiles("111z")}}
	d, ok = CheckWin(tiles("123456789m 11m"), declared)
	require.True(t, ok)
	assert.Equal(t, FanResult{Fan: 8, Breakdown: []string{FanPureOneSuit, FanWindTriplet}}, d.Fan)
}

func TestCheckWin_DeclaredKong(t *testing.T) {
	declared := []core.Meld{{Type: core.MeldKong, Tiles: tiles("5555p")}}

	d, ok := CheckWin(tiles("123m 456m 789m 11z"), declared)
	require.True(t, ok)
	assert.Equal(t, FanResult{Fan: 4, Breakdown: []string{FanMixedOneSuit, FanKong}}, d.Fan)
}

func TestDecomposeMelds(t *testing.T) {
	melds, ok := DecomposeMelds(nil)
	assert.True(t, ok)
	assert.Empty(t, melds)

	_, ok = DecomposeMelds(tiles("1234m"))
	assert.False(t, ok)

	melds, ok = DecomposeMelds(tiles("333m 111m 222m"))
	require.True(t, ok)
	assert.Equal(t, []core.MeldType{core.MeldPong, core.MeldPong, core.MeldPong}, meldTypes(melds))
	assert.Equal(t, []int8{1, 1, 1}, ranks(melds[0].Tiles))

	melds, ok = DecomposeMelds(tiles("112233m"))
	require.True(t, ok)
	assert.Equal(t, []core.MeldType{core.MeldChow, core.MeldChow}, meldTypes(melds))

	_, ok = DecomposeMelds(tiles("123z"))
	assert.False(t, ok, "honours never form chows")
}

func TestDecomposeMelds_TilesAreNotShared(t *testing.T) {
	input := tiles("111222333m")
	melds, ok := DecomposeMelds(input)
	require.True(t, ok)

	seen := make(map[int]bool)
	for _, m := range melds {
		for _, tile := range m.Tiles {
			assert.False(t, seen[tile.ID])
			seen[tile.ID] = true
		}
	}
	assert.Len(t, seen, len(input))
}

func TestFindChowsWithTile(t *testing.T) {
	hand := tiles("3456m")
	discard := core.MustParseTile("5m")

	chows := ChowCandidates(hand, discard)
	require.Len(t, chows, 2)
	assert.Equal(t, []int8{3, 4, 5}, ranks(chows[0]))
	assert.Equal(t, []int8{4, 5, 6}, ranks(chows[1]))

	// 被吃的牌在结果里
	for _, chow := range chows {
		assert.True(t, slices.ContainsFunc(chow, func(x core.Tile) bool { return x.ID == discard.ID }))
	}
}

func TestFindChowsWithTile_Edges(t *testing.T) {
	chows := ChowCandidates(tiles("23m 89m"), core.MustParseTile("1m"))
	require.Len(t, chows, 1)
	assert.Equal(t, []int8{1, 2, 3}, ranks(chows[0]))

	assert.Empty(t, ChowCandidates(tiles("11z 22z"), core.MustParseTile("1z")))
	assert.Empty(t, ChowCandidates(tiles("23p"), core.MustParseTile("1m")), "suit must match")
}

func TestFindChowsWithTile_StopsEarly(t *testing.T) {
	n := 0
	for range FindChowsWithTile(tiles("34567m"), core.MustParseTile("5m")) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestUniqueChows(t *testing.T) {
	a := tiles("345m")
	b := tiles("345m")
	c := tiles("456m")

	unique := UniqueChows(slices.Values([][]core.Tile{a, b, c}))
	require.Len(t, unique, 2)
	assert.Equal(t, a[0].ID, unique[0][0].ID)
	assert.Equal(t, []int8{4, 5, 6}, ranks(unique[1]))
}

func TestPoints(t *testing.T) {
	assert.Equal(t, 8, Points(1))
	assert.Equal(t, 32, Points(3))
	assert.Equal(t, 64, Points(4))
}
