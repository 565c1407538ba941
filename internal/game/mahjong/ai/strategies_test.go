package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.mahjong/internal/game/mahjong/core"
	"sudooom.mahjong/internal/game/mahjong/hkmahjong"
)

// scriptedRandom 按脚本返回随机数，并记录调用次数
type scriptedRandom struct {
	floats     []float64
	ints       []int
	floatCalls int
	intCalls   int
}

func (r *scriptedRandom) Float64() float64 {
	v := r.floats[r.floatCalls%len(r.floats)]
	r.floatCalls++
	return v
}

func (r *scriptedRandom) Intn(n int) int {
	v := r.ints[r.intCalls%len(r.ints)] % n
	r.intCalls++
	return v
}

func newPolicy(t *testing.T, d Difficulty, rng *scriptedRandom) Policy {
	t.Helper()
	p, err := NewPolicy(d, rng)
	require.NoError(t, err)
	require.Equal(t, d, p.Difficulty())
	return p
}

func tiles(s string) []core.Tile {
	return core.MustParseTiles(s)
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty("hard")
	require.NoError(t, err)
	assert.Equal(t, DifficultyHard, d)

	d, err = ParseDifficulty("")
	require.NoError(t, err)
	assert.Equal(t, DifficultyMedium, d)

	_, err = ParseDifficulty("god")
	assert.Error(t, err)
}

func TestNewPolicy_Errors(t *testing.T) {
	_, err := NewPolicy("insane", &scriptedRandom{floats: []float64{0}})
	assert.Error(t, err)

	_, err = NewPolicy(DifficultyEasy, nil)
	assert.Error(t, err)
}

func TestEasyPolicy(t *testing.T) {
	rng := &scriptedRandom{floats: []float64{0.29, 0.3, 0.19, 0.2}, ints: []int{2}}
	p := newPolicy(t, DifficultyEasy, rng)

	tile, ok := p.ChooseDiscard(tiles("1f 123m"), nil, core.WindEast, core.WindEast)
	require.True(t, ok)
	assert.Equal(t, int8(3), tile.Rank, "bonus tiles are never discarded")

	_, ok = p.ChooseDiscard(tiles("1f 2j"), nil, core.WindEast, core.WindEast)
	assert.False(t, ok)

	tile = core.MustParseTile("5m")
	assert.True(t, p.ShouldPong(nil, nil, tile, core.WindEast, core.WindEast))
	assert.False(t, p.ShouldPong(nil, nil, tile, core.WindEast, core.WindEast))
	assert.True(t, p.ShouldChow(nil, nil, tile))
	assert.False(t, p.ShouldChow(nil, nil, tile))
	assert.Equal(t, 4, rng.floatCalls)
}

func TestSmartDiscard_TieBreaking(t *testing.T) {
	// 打任何一张向听都一样
	hand := tiles("147m 147p 147s 1234z 5z")

	keep := &scriptedRandom{floats: []float64{0.9}}
	tile, ok := newPolicy(t, DifficultyMedium, keep).ChooseDiscard(hand, nil, core.WindEast, core.WindEast)
	require.True(t, ok)
	assert.Equal(t, hand[0].ID, tile.ID)
	assert.Equal(t, len(hand)-1, keep.floatCalls, "a random number is drawn only on ties")

	swap := &scriptedRandom{floats: []float64{0.1}}
	tile, ok = newPolicy(t, DifficultyMedium, swap).ChooseDiscard(hand, nil, core.WindEast, core.WindEast)
	require.True(t, ok)
	assert.Equal(t, hand[len(hand)-1].ID, tile.ID)
}

func TestHardDiscard_ReleasesDragon(t *testing.T) {
	hand := tiles("123m 456m 789m 11z 5z 9p 5s")

	medium, ok := newPolicy(t, DifficultyMedium, &scriptedRandom{floats: []float64{0.9}}).
		ChooseDiscard(hand, nil, core.WindEast, core.WindWest)
	require.True(t, ok)
	assert.Equal(t, hand[0].ID, medium.ID)

	hard, ok := newPolicy(t, DifficultyHard, &scriptedRandom{floats: []float64{0.9}}).
		ChooseDiscard(hand, nil, core.WindEast, core.WindWest)
	require.True(t, ok)
	assert.Equal(t, core.SuitDragon, hard.Suit)
}

func TestHardDiscard_FarFromTenpaiPlaysLikeMedium(t *testing.T) {
	hand := tiles("147m 147p 147s 1234z 5z")
	require.Greater(t, hkmahjong.CalcShanten(hand), hardAdjustMaxShanten)

	mediumRng := &scriptedRandom{floats: []float64{0.9}}
	medium, ok := newPolicy(t, DifficultyMedium, mediumRng).
		ChooseDiscard(hand, nil, core.WindEast, core.WindWest)
	require.True(t, ok)

	hardRng := &scriptedRandom{floats: []float64{0.9}}
	p := newPolicy(t, DifficultyHard, hardRng)
	p.TrackDiscard(core.MustParseTile("1p"))
	hard, ok := p.ChooseDiscard(hand, nil, core.WindEast, core.WindWest)
	require.True(t, ok)

	// 不因已见的牌或中而改变选择
	assert.Equal(t, medium.ID, hard.ID)
	assert.Equal(t, hand[0].ID, hard.ID)
	assert.Equal(t, mediumRng.floatCalls, hardRng.floatCalls)
}

func TestHardDiscard_PrefersSeenTile(t *testing.T) {
	hand := tiles("123m 456m 789m 11z 9p 5s 8s")

	p := newPolicy(t, DifficultyHard, &scriptedRandom{floats: []float64{0.9}})
	p.TrackDiscard(core.MustParseTile("8s"))

	tile, ok := p.ChooseDiscard(hand, nil, core.WindEast, core.WindWest)
	require.True(t, ok)
	assert.Equal(t, core.SuitSou, tile.Suit)
	assert.Equal(t, int8(8), tile.Rank)
}

func TestSmartShouldPong(t *testing.T) {
	dragon := core.MustParseTile("7z")
	five := core.MustParseTile("5m")

	for _, d := range []Difficulty{DifficultyMedium, DifficultyHard} {
		rng := &scriptedRandom{floats: []float64{0}}
		p := newPolicy(t, d, rng)

		assert.True(t, p.ShouldPong(tiles("77z 1p 9p"), nil, dragon, core.WindEast, core.WindEast), d)
		assert.False(t, p.ShouldPong(tiles("7z 1p 9p"), nil, dragon, core.WindEast, core.WindEast), d)
		assert.False(t, p.ShouldPong(tiles("55m 1p 9p"), nil, five, core.WindEast, core.WindEast), d)
		assert.Zero(t, rng.floatCalls, "pong decisions are deterministic above easy")
	}
}

func TestSmartShouldChow(t *testing.T) {
	two := core.MustParseTile("2m")
	hand := tiles("137m 147p 147s 1234z")

	medium := newPolicy(t, DifficultyMedium, &scriptedRandom{floats: []float64{0.4, 0.6}})
	assert.True(t, medium.ShouldChow(hand, nil, two))
	assert.False(t, medium.ShouldChow(hand, nil, two))

	hard := newPolicy(t, DifficultyHard, &scriptedRandom{floats: []float64{0.99}})
	assert.True(t, hard.ShouldChow(hand, nil, two))

	// 没有可吃的组合或是字牌
	assert.False(t, hard.ShouldChow(hand, nil, core.MustParseTile("5s")))
	assert.False(t, hard.ShouldChow(tiles("11z 22z"), nil, core.MustParseTile("3z")))

	// 已经听牌时不吃
	tenpai := &scriptedRandom{floats: []float64{0}}
	m := newPolicy(t, DifficultyMedium, tenpai)
	assert.False(t, m.ShouldChow(tiles("34m 1p 9p"), nil, core.MustParseTile("5m")))
	assert.Zero(t, tenpai.floatCalls)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	tile := core.MustParseTile("3p")

	assert.False(t, m.IsSeen(tile))
	m.MarkDiscarded(tile)
	m.MarkDiscarded(core.MustParseTile("3p"))
	assert.True(t, m.IsSeen(tile))
	assert.Equal(t, 2, m.SeenCount(tile))

	m.Reset()
	assert.False(t, m.IsSeen(tile))
}
