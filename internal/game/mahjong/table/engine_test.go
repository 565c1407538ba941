package table

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sudooom.mahjong/internal/errors"
	"sudooom.mahjong/internal/game/mahjong/ai"
	"sudooom.mahjong/internal/game/mahjong/core"
)

// filler 不能胡、不能碰 5p 的散牌
const filler = "2468m 2468p 2468s 7z"

// stubPolicy 固定决策的 AI
type stubPolicy struct {
	pong, chow bool
	pongCalls  int
	tracked    int
}

func (p *stubPolicy) Difficulty() ai.Difficulty { return ai.DifficultyMedium }

func (p *stubPolicy) ChooseDiscard(hand []core.Tile, _ []core.Meld, _, _ int8) (core.Tile, bool) {
	if len(hand) == 0 {
		return core.Tile{}, false
	}
	return hand[len(hand)-1], true
}

func (p *stubPolicy) ShouldPong(_ []core.Tile, _ []core.Meld, _ core.Tile, _, _ int8) bool {
	p.pongCalls++
	return p.pong
}

func (p *stubPolicy) ShouldChow(_ []core.Tile, _ []core.Meld, _ core.Tile) bool {
	return p.chow
}

func (p *stubPolicy) TrackDiscard(core.Tile) { p.tracked++ }

// newTestState 按牌串构造牌局，0 号位先摸
func newTestState(wall string, hands [NumSeats]string) (*State, [NumSeats]*stubPolicy) {
	st := &State{
		Wall:          core.NewWallFromTiles(core.MustParseTiles(wall)),
		Phase:         PhaseDraw,
		CurrentTurn:   HumanSeat,
		LastDiscardBy: -1,
		RoundWind:     core.WindEast,
		RoundNum:      1,
		Difficulty:    ai.DifficultyMedium,
	}
	var stubs [NumSeats]*stubPolicy
	for i := range NumSeats {
		st.Seats[i] = &Seat{
			Index: i,
			Wind:  SeatWinds[i],
			Name:  SeatNames[i],
			Hand:  core.MustParseTiles(hands[i]),
		}
		if i != HumanSeat {
			stubs[i] = &stubPolicy{}
			st.Seats[i].Policy = stubs[i]
		}
	}
	return st, stubs
}

func findTile(t *testing.T, tiles []core.Tile, notation string) core.Tile {
	t.Helper()
	want := core.MustParseTile(notation)
	for _, x := range tiles {
		if x.Equal(want) {
			return x
		}
	}
	t.Fatalf("%s not found in %s", notation, core.FormatTiles(tiles))
	return core.Tile{}
}

func TestStartSessionDealsThirteenPlayingTiles(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 2024, 99991} {
		st, events, err := NewEngine().StartSession(ai.DifficultyMedium, seed)
		require.NoError(t, err)
		require.NoError(t, st.CheckConservation())

		bonus := 0
		for i, s := range st.Seats {
			assert.Len(t, s.Hand, core.HandSize, "seed %d seat %d", seed, i)
			assert.Len(t, core.PlayingTiles(s.Hand), core.HandSize, "seed %d seat %d", seed, i)
			assert.Equal(t, i != HumanSeat, s.Policy != nil)
			assert.Equal(t, SeatWinds[i], s.Wind)
			bonus += len(s.Bonus)
		}

		assert.Equal(t, core.WallSize-NumSeats*core.HandSize-bonus, st.Wall.Remaining())
		assert.Equal(t, PhaseDraw, st.Phase)
		assert.Equal(t, HumanSeat, st.CurrentTurn)
		assert.Equal(t, 1, st.RoundNum)
		assert.Equal(t, int64(1), st.Version)
		require.NotEmpty(t, events)
		assert.Equal(t, EventDealt, events[len(events)-1].Type)
	}
}

func TestStartSessionSeedIsDeterministic(t *testing.T) {
	a, _, err := NewEngine().StartSession(ai.DifficultyHard, 123)
	require.NoError(t, err)
	b, _, err := NewEngine().StartSession(ai.DifficultyHard, 123)
	require.NoError(t, err)

	for i := range NumSeats {
		assert.Equal(t, a.Seats[i].Hand, b.Seats[i].Hand)
		assert.Equal(t, a.Seats[i].Bonus, b.Seats[i].Bonus)
	}
	assert.Equal(t, a.Wall.Undrawn(), b.Wall.Undrawn())
}

func TestStartSessionRejectsUnknownDifficulty(t *testing.T) {
	_, _, err := NewEngine().StartSession("expert", 1)
	require.ErrorIs(t, err, apperrors.ErrInvalidParams)
}

func TestDrawDiscardAndAdvance(t *testing.T) {
	st, stubs := newTestState("5z 6z", [NumSeats]string{"123m 456m 789m 159p 1s", filler, filler, filler})
	e := NewEngine()

	events, err := e.Draw(st, HumanSeat)
	require.NoError(t, err)
	require.Equal(t, PhaseDiscard, st.Phase)
	require.Len(t, st.Seats[HumanSeat].Hand, 14)
	require.Equal(t, EventDrew, events[0].Type)
	require.NotNil(t, events[0].Tile)
	drawn := *events[0].Tile
	assert.Equal(t, core.SuitDragon, drawn.Suit)

	_, err = e.Discard(st, HumanSeat, drawn.ID)
	require.NoError(t, err)
	human := st.Seats[HumanSeat]
	assert.Equal(t, 13, len(human.Hand)+3*len(human.Melds))
	assert.Equal(t, PhaseClaim, st.Phase)
	require.NotNil(t, st.LastDiscard)
	assert.Equal(t, drawn.ID, st.LastDiscard.ID)
	assert.Equal(t, HumanSeat, st.LastDiscardBy)
	assert.False(t, st.AwaitingHuman)
	for i := 1; i < NumSeats; i++ {
		assert.Equal(t, 1, stubs[i].tracked)
	}

	step, seat := st.PendingAI()
	assert.Equal(t, AIStepClaim, step)
	assert.Equal(t, HumanSeat, seat)

	events, err = e.ResolveClaims(st)
	require.NoError(t, err)
	assert.Equal(t, EventTurn, events[0].Type)
	assert.Equal(t, PhaseDraw, st.Phase)
	assert.Equal(t, 1, st.CurrentTurn)
	assert.Nil(t, st.LastDiscard)
	assert.Len(t, human.Discards, 1)
	assert.Equal(t, int64(3), st.Version)

	step, seat = st.PendingAI()
	assert.Equal(t, AIStepDraw, step)
	assert.Equal(t, 1, seat)
}

func TestRejectedActionsLeaveStateUnchanged(t *testing.T) {
	st, _ := newTestState("5z 6z", [NumSeats]string{"123m 456m 789m 159p 1s", filler, filler, filler})
	e := NewEngine()
	before := st.Clone()

	_, err := e.Draw(st, 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = e.Draw(st, 9)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParams)

	_, err = e.Discard(st, HumanSeat, st.Seats[HumanSeat].Hand[0].ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = e.Pass(st, HumanSeat)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = e.ResolveClaims(st)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = e.Claim(st, HumanSeat, ClaimPong, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = e.NextRound(st)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = e.HandleAction(context.Background(), st, Action{Type: "shuffle"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidParams)

	assert.Equal(t, before, st)

	// 13 张时不能出牌
	st.Phase = PhaseDiscard
	before = st.Clone()
	_, err = e.Discard(st, HumanSeat, st.Seats[HumanSeat].Hand[0].ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Equal(t, before, st)
}

func TestDiscardUnknownTile(t *testing.T) {
	st, _ := newTestState("9s", [NumSeats]string{"123m 456m 789m 159p 1s", filler, filler, filler})
	e := NewEngine()

	_, err := e.Draw(st, HumanSeat)
	require.NoError(t, err)

	before := st.Clone()
	_, err = e.Discard(st, HumanSeat, -5)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Equal(t, before, st)
}

func TestHandleActionDispatch(t *testing.T) {
	st, _ := newTestState("9s", [NumSeats]string{"123m 456m 789m 159p 1s", filler, filler, filler})
	e := NewEngine()

	_, err := e.HandleAction(context.Background(), st, Action{Type: ActionDraw, Seat: HumanSeat})
	require.NoError(t, err)

	drawn := findTile(t, st.Seats[HumanSeat].Hand, "9s")
	_, err = e.HandleAction(context.Background(), st, Action{Type: ActionDiscard, Seat: HumanSeat, TileID: drawn.ID})
	require.NoError(t, err)
	assert.Equal(t, PhaseClaim, st.Phase)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.HandleAction(ctx, st, Action{Type: ActionResolve})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, PhaseClaim, st.Phase)
}

func TestEmptyWallDrawEndsRound(t *testing.T) {
	st, _ := newTestState("", [NumSeats]string{"123m 456m 789m 159p 1s", filler, filler, filler})
	st.Scores = [NumSeats]int{16, 0, 8, 0}
	e := NewEngine()

	events, err := e.Draw(st, HumanSeat)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventDrawGame, events[0].Type)
	assert.Equal(t, apperrors.CodeWallExhausted, events[0].Reason)
	assert.Equal(t, PhaseDrawGame, st.Phase)
	assert.Nil(t, st.Result)

	_, err = e.Draw(st, HumanSeat)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = e.NextRound(st)
	require.NoError(t, err)
	assert.Equal(t, 2, st.RoundNum)
	assert.Equal(t, [NumSeats]int{16, 0, 8, 0}, st.Scores)
	assert.Equal(t, PhaseDraw, st.Phase)
	require.NoError(t, st.CheckConservation())
}

func TestEmptyWallAfterDiscardEndsRound(t *testing.T) {
	st, _ := newTestState("", [NumSeats]string{"123m 456m 789m 159p 1s 9s", filler, filler, filler})
	st.Phase = PhaseDiscard
	e := NewEngine()

	nine := findTile(t, st.Seats[HumanSeat].Hand, "9s")
	_, err := e.Discard(st, HumanSeat, nine.ID)
	require.NoError(t, err)

	events, err := e.ResolveClaims(st)
	require.NoError(t, err)
	assert.Equal(t, EventDrawGame, events[0].Type)
	assert.Equal(t, PhaseDrawGame, st.Phase)
	assert.Equal(t, 1, st.CurrentTurn)
}

func TestSelfDrawnWin(t *testing.T) {
	st, _ := newTestState("5p", [NumSeats]string{"123m 456m 789m 111z 5p", filler, filler, filler})
	e := NewEngine()

	_, err := e.Draw(st, HumanSeat)
	require.NoError(t, err)
	assert.Equal(t, PhaseDiscard, st.Phase, "human wins are declared, never automatic")

	opts := st.ClaimOptions(HumanSeat)
	assert.True(t, opts.CanWin)
	assert.Equal(t, 1, opts.Fan)

	events, err := e.Claim(st, HumanSeat, ClaimWin, nil)
	require.NoError(t, err)
	assert.Equal(t, EventWin, events[0].Type)
	assert.Equal(t, PhaseWin, st.Phase)
	require.NotNil(t, st.Result)
	assert.True(t, st.Result.SelfDrawn)
	assert.Equal(t, -1, st.Result.From)
	assert.Equal(t, 1, st.Result.Fan)
	assert.Equal(t, 8, st.Result.Points)
	assert.Equal(t, 8, st.Scores[HumanSeat])
}

func TestDeclaringLosingHandIsRejected(t *testing.T) {
	st, _ := newTestState("9s", [NumSeats]string{"123m 456m 789m 159p 1s", filler, filler, filler})
	e := NewEngine()

	_, err := e.Draw(st, HumanSeat)
	require.NoError(t, err)

	before := st.Clone()
	_, err = e.Claim(st, HumanSeat, ClaimWin, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotAWinningHand)
	assert.Equal(t, before, st)
}

func TestAISelfDrawnWinIsAutomatic(t *testing.T) {
	st, _ := newTestState("5p", [NumSeats]string{filler, "123m 456m 789m 111z 5p", filler, filler})
	st.CurrentTurn = 1
	e := NewEngine()

	_, err := e.PlayAI(st, AIStepDraw, 1)
	require.NoError(t, err)
	assert.Equal(t, PhaseWin, st.Phase)
	require.NotNil(t, st.Result)
	assert.Equal(t, 1, st.Result.Seat)
	assert.True(t, st.Result.SelfDrawn)
	assert.Equal(t, 8, st.Scores[1])
}

func TestViewHidesOtherHands(t *testing.T) {
	st, _, err := NewEngine().StartSession(ai.DifficultyEasy, 5)
	require.NoError(t, err)

	v, err := st.View(HumanSeat)
	require.NoError(t, err)
	assert.Len(t, v.Seats[HumanSeat].Hand, core.HandSize)
	assert.NotNil(t, v.Seats[HumanSeat].Hint)
	assert.True(t, v.Seats[HumanSeat].IsHuman)
	for i := 1; i < NumSeats; i++ {
		assert.Nil(t, v.Seats[i].Hand)
		assert.Nil(t, v.Seats[i].Hint)
		assert.Equal(t, core.HandSize, v.Seats[i].HandSize)
	}
	assert.Equal(t, st.Wall.Remaining(), v.WallRemaining)
	assert.Equal(t, "East", v.RoundWind)
	assert.Equal(t, "West", v.Seats[1].Wind)

	spectator, err := st.View(SpectatorSeat)
	require.NoError(t, err)
	for i := range NumSeats {
		assert.Nil(t, spectator.Seats[i].Hand)
	}
	assert.Nil(t, spectator.Options)

	_, err = st.View(7)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
}

func TestCheckConservationDetectsDuplicates(t *testing.T) {
	st, _, err := NewEngine().StartSession(ai.DifficultyMedium, 11)
	require.NoError(t, err)
	require.NoError(t, st.CheckConservation())

	s := st.Seats[1]
	s.Discards = append(s.Discards, s.Hand[0])
	assert.Error(t, st.CheckConservation())

	s.Discards = nil
	s.Hand = s.Hand[1:]
	assert.Error(t, st.CheckConservation())
}

// playHuman 人类座位的最简策略：摸牌、打第一张、放弃认领
func playHuman(e *Engine, st *State) ([]Event, error) {
	switch st.Phase {
	case PhaseDraw:
		return e.Draw(st, HumanSeat)
	case PhaseDiscard:
		return e.Discard(st, HumanSeat, st.Seats[HumanSeat].Hand[0].ID)
	default:
		return e.Pass(st, HumanSeat)
	}
}

func TestSeededRoundsPlayToCompletion(t *testing.T) {
	for _, d := range []ai.Difficulty{ai.DifficultyEasy, ai.DifficultyMedium, ai.DifficultyHard} {
		for seed := int64(1); seed <= 4; seed++ {
			e := NewEngine()
			st, _, err := e.StartSession(d, seed)
			require.NoError(t, err)

			for steps := 0; !st.Phase.IsOver(); steps++ {
				require.Less(t, steps, 2000, "%s seed %d did not finish", d, seed)

				if step, seat := st.PendingAI(); step != AIStepNone {
					_, err = e.PlayAI(st, step, seat)
				} else {
					_, err = playHuman(e, st)
				}
				require.NoError(t, err, "%s seed %d step %d", d, seed, steps)
				require.NoError(t, st.CheckConservation())

				if st.Phase == PhaseClaim {
					s := st.Seats[st.LastDiscardBy]
					require.Equal(t, 13, len(s.Hand)+3*len(s.Melds))
				}
			}

			if st.Phase == PhaseWin {
				require.NotNil(t, st.Result)
				assert.Equal(t, st.Result.Points, st.Scores[st.Result.Seat])
			}

			_, err = e.NextRound(st)
			require.NoError(t, err)
			assert.Equal(t, 2, st.RoundNum)
			require.NoError(t, st.CheckConservation())
		}
	}
}
