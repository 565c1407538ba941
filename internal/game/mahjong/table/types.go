package table

import (
	"math/rand"

	"sudooom.mahjong/internal/game/mahjong/ai"
	"sudooom.mahjong/internal/game/mahjong/core"
	"sudooom.mahjong/internal/game/mahjong/hkmahjong"
)

// Phase 牌局阶段
type Phase string

const (
	PhaseDraw     Phase = "draw"      // 等待摸牌
	PhaseDiscard  Phase = "discard"   // 等待出牌
	PhaseClaim    Phase = "claim"     // 等待吃碰杠胡
	PhaseWin      Phase = "win"       // 有人胡牌，本局结束
	PhaseDrawGame Phase = "draw_game" // 流局
)

// IsOver 本局是否已结束
func (p Phase) IsOver() bool {
	return p == PhaseWin || p == PhaseDrawGame
}

// ClaimKind 认领类型
type ClaimKind string

const (
	ClaimPong ClaimKind = "pong"
	ClaimKong ClaimKind = "kong"
	ClaimChow ClaimKind = "chow"
	ClaimWin  ClaimKind = "win"
)

// ParseClaimKind 解析认领类型
func ParseClaimKind(s string) (ClaimKind, bool) {
	switch k := ClaimKind(s); k {
	case ClaimPong, ClaimKong, ClaimChow, ClaimWin:
		return k, true
	}
	return "", false
}

// NumSeats 座位数
const NumSeats = 4

// HumanSeat 人类玩家固定坐 0 号位
const HumanSeat = 0

// SpectatorSeat 旁观视角，看不到任何人的手牌
const SpectatorSeat = -1

var (
	// SeatWinds 各座位门风
	SeatWinds = [NumSeats]int8{core.WindEast, core.WindWest, core.WindNorth, core.WindSouth}
	// SeatNames 各座位名称
	SeatNames = [NumSeats]string{"You", "West", "North", "South"}
)

// NextSeat 下家
func NextSeat(seat int) int {
	return (seat + 1) % NumSeats
}

// TurnOrder 从 from 的下家开始的座位顺序，不含 from
func TurnOrder(from int) []int {
	order := make([]int, 0, NumSeats-1)
	for i := NextSeat(from); i != from; i = NextSeat(i) {
		order = append(order, i)
	}
	return order
}

// Seat 座位
type Seat struct {
	Index    int         `json:"index"`
	Wind     int8        `json:"wind"`
	Name     string      `json:"name"`
	Hand     []core.Tile `json:"hand"`
	Melds    []core.Meld `json:"melds"`
	Discards []core.Tile `json:"discards"`
	Bonus    []core.Tile `json:"bonus"`
	Policy   ai.Policy   `json:"-"` // 人类座位为 nil
}

// IsHuman 是否人类座位
func (s *Seat) IsHuman() bool {
	return s.Policy == nil
}

// ExpectedHandSize 出牌前应持有的张数
func (s *Seat) ExpectedHandSize() int {
	return 14 - 3*len(s.Melds)
}

// clone 深拷贝，Policy 共享
func (s *Seat) clone() *Seat {
	c := *s
	c.Hand = core.CloneTiles(s.Hand)
	c.Melds = core.CloneMelds(s.Melds)
	c.Discards = core.CloneTiles(s.Discards)
	c.Bonus = core.CloneTiles(s.Bonus)
	return &c
}

// WinResult 胡牌结算
type WinResult struct {
	Seat          int                      `json:"seat"`
	SelfDrawn     bool                     `json:"selfDrawn"`      // 自摸
	Tile          *core.Tile               `json:"tile,omitempty"` // 点炮的牌
	From          int                      `json:"from"`           // 点炮者，自摸为 -1
	Fan           int                      `json:"fan"`
	Breakdown     []string                 `json:"breakdown"`
	Points        int                      `json:"points"`
	Decomposition *hkmahjong.Decomposition `json:"decomposition"`
}

// State 一个牌局的全部状态
// 所有转换都以 *State 为参数，由调用方负责串行访问
type State struct {
	Wall          *core.Wall      `json:"-"`
	Seats         [NumSeats]*Seat `json:"seats"`
	CurrentTurn   int             `json:"currentTurn"`
	Phase         Phase           `json:"phase"`
	LastDiscard   *core.Tile      `json:"lastDiscard,omitempty"`
	LastDiscardBy int             `json:"lastDiscardBy"`
	RoundWind     int8            `json:"roundWind"`
	RoundNum      int             `json:"roundNum"`
	Scores        [NumSeats]int   `json:"scores"`
	Difficulty    ai.Difficulty   `json:"difficulty"`
	Result        *WinResult      `json:"result,omitempty"`
	AwaitingHuman bool            `json:"awaitingHuman"` // 人类有可认领的牌，AI 认领暂停
	Version       int64           `json:"version"`       // 每次状态转换 +1

	rng *rand.Rand
}

// Seat 按索引取座位
func (st *State) Seat(i int) (*Seat, bool) {
	if i < 0 || i >= NumSeats {
		return nil, false
	}
	return st.Seats[i], true
}

// Clone 深拷贝状态 (随机源共享)
func (st *State) Clone() *State {
	c := *st
	if st.Wall != nil {
		c.Wall = st.Wall.Clone()
	}
	for i, s := range st.Seats {
		if s != nil {
			c.Seats[i] = s.clone()
		}
	}
	if st.LastDiscard != nil {
		t := *st.LastDiscard
		c.LastDiscard = &t
	}
	return &c
}

// EventType 牌局事件类型
type EventType string

const (
	EventDealt       EventType = "dealt"
	EventDrew        EventType = "drew"
	EventBonus       EventType = "bonus"
	EventDiscarded   EventType = "discarded"
	EventClaimWindow EventType = "claim_window"
	EventClaimed     EventType = "claimed"
	EventPassed      EventType = "passed"
	EventTurn        EventType = "turn"
	EventWin         EventType = "win"
	EventDrawGame    EventType = "draw_game"
)

// Event 牌局事件，观察者据此刷新
type Event struct {
	Type    EventType  `json:"type"`
	Seat    int        `json:"seat"`
	Tile    *core.Tile `json:"tile,omitempty"`
	Claim   ClaimKind  `json:"claim,omitempty"`
	Meld    *core.Meld `json:"meld,omitempty"`
	Result  *WinResult `json:"result,omitempty"`
	Reason  int        `json:"reason,omitempty"` // 流局原因错误码
	Version int64      `json:"version"`
}
