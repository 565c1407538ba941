package table

import (
	"sort"

	apperrors "sudooom.mahjong/internal/errors"
	"sudooom.mahjong/internal/game/mahjong/core"
	"sudooom.mahjong/internal/game/mahjong/hkmahjong"
)

// ClaimOptions 座位当前可以做的认领
type ClaimOptions struct {
	CanPong bool          `json:"canPong"`
	CanKong bool          `json:"canKong"`
	Chows   [][]core.Tile `json:"chows,omitempty"` // 按点数去重，含被吃的牌
	CanWin  bool          `json:"canWin"`
	Fan     int           `json:"fan,omitempty"` // 可胡时的番数
}

// Any 是否有任何可认领项
func (o ClaimOptions) Any() bool {
	return o.CanPong || o.CanKong || len(o.Chows) > 0 || o.CanWin
}

// ClaimOptions 查询 seat 的认领选项
// 出牌阶段只看自摸；认领阶段看别人打出的牌，吃只限出牌者下家
func (st *State) ClaimOptions(seat int) ClaimOptions {
	var opts ClaimOptions
	s, ok := st.Seat(seat)
	if !ok || s == nil {
		return opts
	}

	switch st.Phase {
	case PhaseDiscard:
		if seat != st.CurrentTurn {
			return opts
		}
		if dec, ok := hkmahjong.CheckWin(s.Hand, s.Melds); ok {
			opts.CanWin = true
			opts.Fan = dec.Fan.Fan
		}

	case PhaseClaim:
		if st.LastDiscard == nil || seat == st.LastDiscardBy {
			return opts
		}
		tile := *st.LastDiscard
		matching := core.CountTile(core.PlayingTiles(s.Hand), tile)
		opts.CanPong = matching >= 2
		opts.CanKong = matching >= 3
		if seat == NextSeat(st.LastDiscardBy) {
			opts.Chows = hkmahjong.ChowCandidates(s.Hand, tile)
		}
		if dec, ok := hkmahjong.CheckWin(withTile(s.Hand, tile), s.Melds); ok {
			opts.CanWin = true
			opts.Fan = dec.Fan.Fan
		}
	}
	return opts
}

// withTile 返回追加了 tile 的手牌副本
func withTile(hand []core.Tile, tile core.Tile) []core.Tile {
	return append(core.CloneTiles(hand), tile)
}

// claimPlan 校验通过的认领
type claimPlan struct {
	seat      int
	kind      ClaimKind
	selfDrawn bool
	fromHand  []core.Tile // 吃碰杠用到的手牌
	dec       *hkmahjong.Decomposition
}

// Claim 认领：胡 (认领阶段荣和，出牌阶段自摸)、碰、杠、吃
// chowChoice 为 ClaimOptions.Chows 的下标，默认 0
func (e *Engine) Claim(st *State, seat int, kind ClaimKind, chowChoice *int) ([]Event, error) {
	plan, err := e.validateClaim(st, seat, kind, chowChoice)
	if err != nil {
		return nil, err
	}
	return e.commit(st, e.applyClaim(st, plan)), nil
}

func (e *Engine) validateClaim(st *State, seat int, kind ClaimKind, chowChoice *int) (*claimPlan, error) {
	s, ok := st.Seat(seat)
	if !ok {
		return nil, apperrors.ErrInvalidParams.Withf("seat %d out of range", seat)
	}
	if _, ok := ParseClaimKind(string(kind)); !ok {
		return nil, apperrors.ErrInvalidParams.Withf("unknown claim kind %q", kind)
	}

	if kind == ClaimWin && st.Phase == PhaseDiscard {
		if seat != st.CurrentTurn {
			return nil, apperrors.ErrInvalidTransition.Withf("seat %d cannot self-draw on seat %d's turn", seat, st.CurrentTurn)
		}
		dec, ok := hkmahjong.CheckWin(s.Hand, s.Melds)
		if !ok {
			return nil, apperrors.ErrNotAWinningHand
		}
		return &claimPlan{seat: seat, kind: kind, selfDrawn: true, dec: dec}, nil
	}

	if st.Phase != PhaseClaim || st.LastDiscard == nil {
		return nil, apperrors.ErrInvalidTransition.Withf("no discard to claim in phase %s", st.Phase)
	}
	if seat == st.LastDiscardBy {
		return nil, apperrors.ErrInvalidTransition.Withf("seat %d cannot claim its own discard", seat)
	}
	// 人类只能在自己的认领窗口内认领，放弃后交给 AI 扫描
	if seat == HumanSeat && !st.AwaitingHuman {
		return nil, apperrors.ErrInvalidTransition.Withf("seat %d has no open claim window", seat)
	}
	if st.AwaitingHuman && seat != HumanSeat {
		return nil, apperrors.ErrInvalidTransition.Withf("waiting for seat %d to claim or pass", HumanSeat)
	}

	tile := *st.LastDiscard
	plan := &claimPlan{seat: seat, kind: kind}

	switch kind {
	case ClaimWin:
		dec, ok := hkmahjong.CheckWin(withTile(s.Hand, tile), s.Melds)
		if !ok {
			return nil, apperrors.ErrNotAWinningHand
		}
		plan.dec = dec

	case ClaimPong, ClaimKong:
		need := 2
		if kind == ClaimKong {
			need = 3
		}
		matching := core.MatchingTiles(core.PlayingTiles(s.Hand), tile)
		if len(matching) < need {
			return nil, apperrors.ErrIllegalClaim.Withf("%s %s needs %d matching tiles, seat %d holds %d",
				kind, tile, need, seat, len(matching))
		}
		plan.fromHand = matching[:need]

	case ClaimChow:
		if seat != NextSeat(st.LastDiscardBy) {
			return nil, apperrors.ErrIllegalClaim.Withf("only seat %d may chow seat %d's discard",
				NextSeat(st.LastDiscardBy), st.LastDiscardBy)
		}
		chows := hkmahjong.ChowCandidates(s.Hand, tile)
		if len(chows) == 0 {
			return nil, apperrors.ErrIllegalClaim.Withf("no chow with %s", tile)
		}
		choice := 0
		if chowChoice != nil {
			choice = *chowChoice
		}
		if choice < 0 || choice >= len(chows) {
			return nil, apperrors.ErrIllegalClaim.Withf("chow choice %d out of %d", choice, len(chows))
		}
		for _, t := range chows[choice] {
			if t.ID != tile.ID {
				plan.fromHand = append(plan.fromHand, t)
			}
		}
	}
	return plan, nil
}

// applyClaim 执行已校验的认领
func (e *Engine) applyClaim(st *State, plan *claimPlan) []Event {
	s := st.Seats[plan.seat]
	if plan.selfDrawn {
		return e.applyWin(st, s, plan.dec, nil, -1)
	}

	tile := *st.LastDiscard
	from := st.LastDiscardBy
	discarder := st.Seats[from]
	discarder.Discards = discarder.Discards[:len(discarder.Discards)-1]
	st.LastDiscard = nil
	st.AwaitingHuman = false

	if plan.kind == ClaimWin {
		s.Hand = append(s.Hand, tile)
		return e.applyWin(st, s, plan.dec, &tile, from)
	}

	s.Hand = core.RemoveTilesByID(s.Hand, plan.fromHand)
	meld := core.Meld{Tiles: append([]core.Tile{tile}, plan.fromHand...)}
	switch plan.kind {
	case ClaimPong:
		meld.Type = core.MeldPong
	case ClaimKong:
		meld.Type = core.MeldKong
	case ClaimChow:
		meld.Type = core.MeldChow
		sort.SliceStable(meld.Tiles, func(i, j int) bool { return meld.Tiles[i].Rank < meld.Tiles[j].Rank })
	}
	s.Melds = append(s.Melds, meld)
	st.CurrentTurn = plan.seat
	st.Phase = PhaseDiscard

	e.logger.Debug("认领",
		"seat", plan.seat,
		"kind", plan.kind,
		"tile", tile.String(),
		"from", from)

	events := []Event{{Type: EventClaimed, Seat: plan.seat, Tile: &tile, Claim: plan.kind, Meld: &meld}}
	if plan.kind != ClaimKong {
		return events
	}

	// 杠后补牌
	replacement, ok := st.Wall.Draw()
	if !ok {
		return append(events, e.endDrawGame(st, plan.seat)...)
	}
	s.Hand = append(s.Hand, replacement)
	events = append(events, e.drewEvent(s, replacement))
	return append(events, e.afterDraw(st, s)...)
}

// ResolveClaims AI 认领扫描
// 按出牌者之后的顺序先找胡，再找碰，最后只有下家可以吃；都没有则轮到下家
func (e *Engine) ResolveClaims(st *State) ([]Event, error) {
	if st.Phase != PhaseClaim || st.LastDiscard == nil {
		return nil, apperrors.ErrInvalidTransition.Withf("no discard to resolve in phase %s", st.Phase)
	}
	if st.AwaitingHuman {
		return nil, apperrors.ErrInvalidTransition.Withf("waiting for seat %d to claim or pass", HumanSeat)
	}

	if plan := e.scanAIClaims(st); plan != nil {
		return e.commit(st, e.applyClaim(st, plan)), nil
	}
	return e.commit(st, e.advanceTurn(st)), nil
}

func (e *Engine) scanAIClaims(st *State) *claimPlan {
	tile := *st.LastDiscard
	from := st.LastDiscardBy
	order := TurnOrder(from)

	for _, i := range order {
		s := st.Seats[i]
		if s.IsHuman() {
			continue
		}
		if dec, ok := hkmahjong.CheckWin(withTile(s.Hand, tile), s.Melds); ok {
			return &claimPlan{seat: i, kind: ClaimWin, dec: dec}
		}
	}

	for _, i := range order {
		s := st.Seats[i]
		if s.IsHuman() {
			continue
		}
		matching := core.MatchingTiles(core.PlayingTiles(s.Hand), tile)
		if len(matching) >= 2 && s.Policy.ShouldPong(s.Hand, s.Melds, tile, st.RoundWind, s.Wind) {
			return &claimPlan{seat: i, kind: ClaimPong, fromHand: matching[:2]}
		}
	}

	next := st.Seats[NextSeat(from)]
	if next.IsHuman() {
		return nil
	}
	chows := hkmahjong.ChowCandidates(next.Hand, tile)
	if len(chows) > 0 && next.Policy.ShouldChow(next.Hand, next.Melds, tile) {
		plan := &claimPlan{seat: next.Index, kind: ClaimChow}
		for _, t := range chows[0] {
			if t.ID != tile.ID {
				plan.fromHand = append(plan.fromHand, t)
			}
		}
		return plan
	}
	return nil
}

// AIStep AI 下一步要做的事
type AIStep string

const (
	AIStepNone    AIStep = ""
	AIStepDraw    AIStep = "draw"
	AIStepDiscard AIStep = "discard"
	AIStepClaim   AIStep = "claim"
)

// PendingAI 当前状态下等待 AI 执行的步骤及其座位
func (st *State) PendingAI() (AIStep, int) {
	switch st.Phase {
	case PhaseDraw, PhaseDiscard:
		s, ok := st.Seat(st.CurrentTurn)
		if !ok || s.IsHuman() {
			return AIStepNone, -1
		}
		if st.Phase == PhaseDraw {
			return AIStepDraw, s.Index
		}
		return AIStepDiscard, s.Index
	case PhaseClaim:
		if st.LastDiscard == nil || st.AwaitingHuman {
			return AIStepNone, -1
		}
		return AIStepClaim, st.LastDiscardBy
	}
	return AIStepNone, -1
}

// PlayAI 执行一步 AI 动作，step 与 seat 必须与当前状态一致
func (e *Engine) PlayAI(st *State, step AIStep, seat int) ([]Event, error) {
	pending, pendingSeat := st.PendingAI()
	if pending == AIStepNone || pending != step || pendingSeat != seat {
		return nil, apperrors.ErrInvalidTransition.Withf("stale AI step %s for seat %d", step, seat)
	}

	switch step {
	case AIStepDraw:
		return e.Draw(st, seat)
	case AIStepDiscard:
		s := st.Seats[seat]
		tile, ok := s.Policy.ChooseDiscard(s.Hand, s.Melds, st.RoundWind, s.Wind)
		if !ok {
			return nil, apperrors.ErrInvalidTransition.Withf("seat %d has nothing to discard", seat)
		}
		return e.Discard(st, seat, tile.ID)
	default:
		return e.ResolveClaims(st)
	}
}
