package table

import (
	"fmt"

	apperrors "sudooom.mahjong/internal/errors"
	"sudooom.mahjong/internal/game/mahjong/ai"
	"sudooom.mahjong/internal/game/mahjong/core"
	"sudooom.mahjong/internal/game/mahjong/hkmahjong"
)

// SeatView 座位的可见信息
type SeatView struct {
	Index    int             `json:"index"`
	Name     string          `json:"name"`
	Wind     string          `json:"wind"`
	IsHuman  bool            `json:"isHuman"`
	Hand     []core.Tile     `json:"hand,omitempty"` // 只有自己可见
	HandSize int             `json:"handSize"`
	Melds    []core.Meld     `json:"melds"`
	Discards []core.Tile     `json:"discards"`
	Bonus    []core.Tile     `json:"bonus"`
	Score    int             `json:"score"`
	Hint     *hkmahjong.Hint `json:"hint,omitempty"` // 只有自己可见
}

// View 某个座位视角下的牌局
type View struct {
	Viewer        int                `json:"viewer"`
	Phase         Phase              `json:"phase"`
	CurrentTurn   int                `json:"currentTurn"`
	RoundWind     string             `json:"roundWind"`
	RoundNum      int                `json:"roundNum"`
	WallRemaining int                `json:"wallRemaining"`
	LastDiscard   *core.Tile         `json:"lastDiscard,omitempty"`
	LastDiscardBy int                `json:"lastDiscardBy"`
	AwaitingHuman bool               `json:"awaitingHuman"`
	Difficulty    ai.Difficulty      `json:"difficulty"`
	Scores        [NumSeats]int      `json:"scores"`
	Seats         [NumSeats]SeatView `json:"seats"`
	Options       *ClaimOptions      `json:"options,omitempty"`
	Result        *WinResult         `json:"result,omitempty"`
	Version       int64              `json:"version"`
}

// View 生成 viewer 视角的快照，SpectatorSeat 看不到任何手牌
func (st *State) View(viewer int) (*View, error) {
	if viewer != SpectatorSeat && (viewer < 0 || viewer >= NumSeats) {
		return nil, apperrors.ErrInvalidParams.Withf("seat %d out of range", viewer)
	}

	v := &View{
		Viewer:        viewer,
		Phase:         st.Phase,
		CurrentTurn:   st.CurrentTurn,
		RoundWind:     core.WindName(st.RoundWind),
		RoundNum:      st.RoundNum,
		LastDiscardBy: st.LastDiscardBy,
		AwaitingHuman: st.AwaitingHuman,
		Difficulty:    st.Difficulty,
		Scores:        st.Scores,
		Result:        st.Result,
		Version:       st.Version,
	}
	if st.Wall != nil {
		v.WallRemaining = st.Wall.Remaining()
	}
	if st.LastDiscard != nil {
		t := *st.LastDiscard
		v.LastDiscard = &t
	}

	for i, s := range st.Seats {
		if s == nil {
			continue
		}
		sv := SeatView{
			Index:    s.Index,
			Name:     s.Name,
			Wind:     core.WindName(s.Wind),
			IsHuman:  s.IsHuman(),
			HandSize: len(s.Hand),
			Melds:    core.CloneMelds(s.Melds),
			Discards: core.CloneTiles(s.Discards),
			Bonus:    core.CloneTiles(s.Bonus),
			Score:    st.Scores[i],
		}
		if i == viewer {
			sv.Hand = core.SortedCopy(s.Hand)
			hint := hkmahjong.HandHint(s.Hand, s.Melds)
			sv.Hint = &hint
		}
		v.Seats[i] = sv
	}

	// 人类放弃后认领窗口已关闭
	closed := viewer == HumanSeat && st.Phase == PhaseClaim && !st.AwaitingHuman
	if viewer != SpectatorSeat && !closed {
		if opts := st.ClaimOptions(viewer); opts.Any() {
			v.Options = &opts
		}
	}
	return v, nil
}

// CheckConservation 校验每张牌恰好出现在一个位置：牌墙、手牌、组合、牌河或花牌区
func (st *State) CheckConservation() error {
	seen := make(map[int]string, core.WallSize)
	mark := func(tiles []core.Tile, where string) error {
		for _, t := range tiles {
			if prev, ok := seen[t.ID]; ok {
				return fmt.Errorf("tile %d (%s) in both %s and %s", t.ID, t, prev, where)
			}
			seen[t.ID] = where
		}
		return nil
	}

	if st.Wall == nil {
		return fmt.Errorf("no wall")
	}
	if err := mark(st.Wall.Undrawn(), "wall"); err != nil {
		return err
	}
	for _, s := range st.Seats {
		if s == nil {
			return fmt.Errorf("missing seat")
		}
		if err := mark(s.Hand, fmt.Sprintf("seat %d hand", s.Index)); err != nil {
			return err
		}
		if err := mark(core.MeldTiles(s.Melds), fmt.Sprintf("seat %d melds", s.Index)); err != nil {
			return err
		}
		if err := mark(s.Discards, fmt.Sprintf("seat %d discards", s.Index)); err != nil {
			return err
		}
		if err := mark(s.Bonus, fmt.Sprintf("seat %d bonus", s.Index)); err != nil {
			return err
		}
	}

	if len(seen) != st.Wall.Len() {
		return fmt.Errorf("accounted for %d tiles, wall has %d", len(seen), st.Wall.Len())
	}
	for id := range st.Wall.Len() {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("tile %d missing", id)
		}
	}
	return nil
}
