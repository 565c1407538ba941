package table

import (
	"context"
	"log/slog"
	"math/rand"
	"slices"

	apperrors "sudooom.mahjong/internal/errors"
	"sudooom.mahjong/internal/game/mahjong/ai"
	"sudooom.mahjong/internal/game/mahjong/core"
	"sudooom.mahjong/internal/game/mahjong/hkmahjong"
)

// ActionType 动作类型
type ActionType string

const (
	ActionDraw    ActionType = "draw"
	ActionDiscard ActionType = "discard"
	ActionClaim   ActionType = "claim"
	ActionPass    ActionType = "pass"
	ActionResolve ActionType = "resolve" // AI 认领扫描
)

// Action 座位动作
type Action struct {
	Type       ActionType `json:"type"`
	Seat       int        `json:"seat"`
	TileID     int        `json:"tileId,omitempty"`
	Claim      ClaimKind  `json:"claim,omitempty"`
	ChowChoice *int       `json:"chowChoice,omitempty"`
}

// Engine 香港麻将状态机
// 每个动作先完整校验再修改状态，校验失败时状态不变
type Engine struct {
	logger *slog.Logger
}

// NewEngine 创建状态机
func NewEngine() *Engine {
	return &Engine{
		logger: slog.Default().With("component", "TableEngine"),
	}
}

// StartSession 开新牌局：洗牌、发牌、补花，0 号位先摸
func (e *Engine) StartSession(difficulty ai.Difficulty, seed int64) (*State, []Event, error) {
	st := &State{
		RoundWind:     core.WindEast,
		Difficulty:    difficulty,
		LastDiscardBy: -1,
		rng:           rand.New(rand.NewSource(seed)),
	}

	events, err := e.deal(st)
	if err != nil {
		return nil, nil, err
	}

	e.logger.Info("牌局开始",
		"difficulty", difficulty,
		"seed", seed,
		"wallRemaining", st.Wall.Remaining())

	return st, e.commit(st, events), nil
}

// NextRound 本局结束后开下一局，累计分数保留
func (e *Engine) NextRound(st *State) ([]Event, error) {
	if !st.Phase.IsOver() {
		return nil, apperrors.ErrInvalidTransition.Withf("round %d still in phase %s", st.RoundNum, st.Phase)
	}
	if st.rng == nil {
		st.rng = rand.New(rand.NewSource(st.Version))
	}

	events, err := e.deal(st)
	if err != nil {
		return nil, err
	}

	e.logger.Info("下一局", "round", st.RoundNum, "scores", st.Scores)
	return e.commit(st, events), nil
}

// deal 发牌，难度非法时不修改状态
func (e *Engine) deal(st *State) ([]Event, error) {
	var policies [NumSeats]ai.Policy
	for i := range NumSeats {
		if i == HumanSeat {
			continue
		}
		p, err := ai.NewPolicy(st.Difficulty, st.rng)
		if err != nil {
			return nil, apperrors.ErrInvalidParams.Wrap(err)
		}
		policies[i] = p
	}

	st.Wall = core.NewWall(st.rng)
	for i := range NumSeats {
		st.Seats[i] = &Seat{
			Index:  i,
			Wind:   SeatWinds[i],
			Name:   SeatNames[i],
			Policy: policies[i],
		}
	}

	events := make([]Event, 0, NumSeats+1)
	for _, s := range st.Seats {
		for range core.HandSize {
			t, _ := st.Wall.Draw()
			s.Hand = append(s.Hand, t)
		}
		for _, b := range e.extractBonus(st, s) {
			events = append(events, Event{Type: EventBonus, Seat: s.Index, Tile: &b})
		}
		core.SortTiles(s.Hand)
	}

	st.RoundNum++
	st.CurrentTurn = HumanSeat
	st.Phase = PhaseDraw
	st.LastDiscard = nil
	st.LastDiscardBy = -1
	st.Result = nil
	st.AwaitingHuman = false

	return append(events, Event{Type: EventDealt, Seat: HumanSeat}), nil
}

// HandleAction 处理座位动作
func (e *Engine) HandleAction(ctx context.Context, st *State, action Action) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.Debug("处理动作",
		"type", action.Type,
		"seat", action.Seat,
		"phase", st.Phase,
		"version", st.Version)

	switch action.Type {
	case ActionDraw:
		return e.Draw(st, action.Seat)
	case ActionDiscard:
		return e.Discard(st, action.Seat, action.TileID)
	case ActionClaim:
		return e.Claim(st, action.Seat, action.Claim, action.ChowChoice)
	case ActionPass:
		return e.Pass(st, action.Seat)
	case ActionResolve:
		return e.ResolveClaims(st)
	default:
		return nil, apperrors.ErrInvalidParams.Withf("unknown action type %q", action.Type)
	}
}

// activeSeat 校验 seat 是当前阶段的行动者
func (e *Engine) activeSeat(st *State, seat int, phase Phase) (*Seat, error) {
	s, ok := st.Seat(seat)
	if !ok {
		return nil, apperrors.ErrInvalidParams.Withf("seat %d out of range", seat)
	}
	if st.Phase != phase {
		return nil, apperrors.ErrInvalidTransition.Withf("phase is %s, want %s", st.Phase, phase)
	}
	if st.CurrentTurn != seat {
		return nil, apperrors.ErrInvalidTransition.Withf("seat %d acting on seat %d's turn", seat, st.CurrentTurn)
	}
	return s, nil
}

// Draw 摸牌
// 牌墙已空时本局流局，这不是错误
func (e *Engine) Draw(st *State, seat int) ([]Event, error) {
	s, err := e.activeSeat(st, seat, PhaseDraw)
	if err != nil {
		return nil, err
	}

	tile, ok := st.Wall.Draw()
	if !ok {
		return e.commit(st, e.endDrawGame(st, seat)), nil
	}

	s.Hand = append(s.Hand, tile)
	events := []Event{e.drewEvent(s, tile)}
	events = append(events, e.afterDraw(st, s)...)

	return e.commit(st, events), nil
}

// afterDraw 补花，补不满则流局；AI 摸到胡牌必胡
func (e *Engine) afterDraw(st *State, s *Seat) []Event {
	var events []Event
	for _, b := range e.extractBonus(st, s) {
		events = append(events, Event{Type: EventBonus, Seat: s.Index, Tile: &b})
	}

	if len(s.Hand) < s.ExpectedHandSize() {
		return append(events, e.endDrawGame(st, s.Index)...)
	}

	st.CurrentTurn = s.Index
	st.Phase = PhaseDiscard

	if !s.IsHuman() {
		if dec, ok := hkmahjong.CheckWin(s.Hand, s.Melds); ok {
			events = append(events, e.applyWin(st, s, dec, nil, -1)...)
		}
	}
	return events
}

func (e *Engine) drewEvent(s *Seat, tile core.Tile) Event {
	ev := Event{Type: EventDrew, Seat: s.Index}
	if s.IsHuman() {
		ev.Tile = &tile
	}
	return ev
}

// extractBonus 把花牌移到花牌区并从牌墙补牌，直到手里没有花牌或牌墙摸空
func (e *Engine) extractBonus(st *State, s *Seat) []core.Tile {
	var extracted []core.Tile
	for {
		idx := slices.IndexFunc(s.Hand, core.Tile.IsBonus)
		if idx < 0 {
			return extracted
		}
		b := s.Hand[idx]
		s.Hand = slices.Delete(s.Hand, idx, idx+1)
		s.Bonus = append(s.Bonus, b)
		extracted = append(extracted, b)

		if t, ok := st.Wall.Draw(); ok {
			s.Hand = append(s.Hand, t)
		}
	}
}

// Discard 出牌
func (e *Engine) Discard(st *State, seat int, tileID int) ([]Event, error) {
	s, err := e.activeSeat(st, seat, PhaseDiscard)
	if err != nil {
		return nil, err
	}
	if len(s.Hand) != s.ExpectedHandSize() {
		return nil, apperrors.ErrInvalidTransition.Withf("seat %d holds %d tiles, want %d",
			seat, len(s.Hand), s.ExpectedHandSize())
	}
	tile, ok := core.FindByID(s.Hand, tileID)
	if !ok {
		return nil, apperrors.ErrInvalidTransition.Withf("tile %d not in seat %d's hand", tileID, seat)
	}

	s.Hand, _ = core.RemoveByID(s.Hand, tileID)
	s.Discards = append(s.Discards, tile)
	st.LastDiscard = &tile
	st.LastDiscardBy = seat
	st.Phase = PhaseClaim
	st.AwaitingHuman = false

	for _, other := range st.Seats {
		if other.Policy != nil {
			other.Policy.TrackDiscard(tile)
		}
	}

	events := []Event{{Type: EventDiscarded, Seat: seat, Tile: &tile}}
	if seat != HumanSeat && st.ClaimOptions(HumanSeat).Any() {
		st.AwaitingHuman = true
		events = append(events, Event{Type: EventClaimWindow, Seat: HumanSeat, Tile: &tile})
	}

	return e.commit(st, events), nil
}

// Pass 人类放弃认领，AI 认领继续
func (e *Engine) Pass(st *State, seat int) ([]Event, error) {
	if st.Phase != PhaseClaim || !st.AwaitingHuman {
		return nil, apperrors.ErrInvalidTransition.Withf("no claim window open")
	}
	if seat != HumanSeat {
		return nil, apperrors.ErrInvalidTransition.Withf("seat %d has no claim window", seat)
	}

	st.AwaitingHuman = false
	return e.commit(st, []Event{{Type: EventPassed, Seat: seat}}), nil
}

// AdvanceTurn 无人认领，轮到出牌者的下家摸牌；牌墙空则流局
func (e *Engine) AdvanceTurn(st *State) ([]Event, error) {
	if st.Phase != PhaseClaim || st.AwaitingHuman {
		return nil, apperrors.ErrInvalidTransition.Withf("cannot advance from phase %s", st.Phase)
	}
	return e.commit(st, e.advanceTurn(st)), nil
}

func (e *Engine) advanceTurn(st *State) []Event {
	next := NextSeat(st.LastDiscardBy)
	st.LastDiscard = nil
	st.AwaitingHuman = false
	st.CurrentTurn = next

	if st.Wall.Remaining() <= 0 {
		return e.endDrawGame(st, next)
	}

	st.Phase = PhaseDraw
	return []Event{{Type: EventTurn, Seat: next}}
}

func (e *Engine) endDrawGame(st *State, seat int) []Event {
	st.Phase = PhaseDrawGame
	st.LastDiscard = nil
	st.AwaitingHuman = false

	e.logger.Info("流局", "round", st.RoundNum, "reason", apperrors.ErrWallExhausted, "scores", st.Scores)
	return []Event{{Type: EventDrawGame, Seat: seat, Reason: apperrors.CodeWallExhausted}}
}

// applyWin 结算胡牌
func (e *Engine) applyWin(st *State, s *Seat, dec *hkmahjong.Decomposition, tile *core.Tile, from int) []Event {
	points := hkmahjong.Points(dec.Fan.Fan)
	st.Scores[s.Index] += points
	st.Result = &WinResult{
		Seat:          s.Index,
		SelfDrawn:     tile == nil,
		Tile:          tile,
		From:          from,
		Fan:           dec.Fan.Fan,
		Breakdown:     dec.Fan.Breakdown,
		Points:        points,
		Decomposition: dec,
	}
	st.Phase = PhaseWin
	st.CurrentTurn = s.Index
	st.LastDiscard = nil
	st.AwaitingHuman = false

	e.logger.Info("胡牌",
		"seat", s.Index,
		"selfDrawn", tile == nil,
		"fan", dec.Fan.Fan,
		"points", points,
		"breakdown", dec.Fan.Breakdown)

	return []Event{{Type: EventWin, Seat: s.Index, Tile: tile, Result: st.Result}}
}

// commit 状态版本 +1 并标记事件
func (e *Engine) commit(st *State, events []Event) []Event {
	st.Version++
	for i := range events {
		events[i].Version = st.Version
	}
	return events
}
