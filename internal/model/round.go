package model

import "time"

// RoundOutcome 一局的结果
type RoundOutcome string

const (
	OutcomeWin      RoundOutcome = "win"
	OutcomeDrawGame RoundOutcome = "draw_game"
)

// Round 已结束的一局
type Round struct {
	Id         int64        `json:"id" db:"id"`
	SessionId  string       `json:"sessionId" db:"session_id"`
	RoundNum   int          `json:"roundNum" db:"round_num"`
	Difficulty string       `json:"difficulty" db:"difficulty"`
	Outcome    RoundOutcome `json:"outcome" db:"outcome"`
	Winner     *int         `json:"winner" db:"winner"` // 流局为空
	SelfDrawn  bool         `json:"selfDrawn" db:"self_drawn"`
	Fan        int          `json:"fan" db:"fan"`
	Points     int          `json:"points" db:"points"`
	Breakdown  []string     `json:"breakdown" db:"breakdown"`
	Scores     []int        `json:"scores" db:"scores"` // 本局结束后的累计分
	FinishedAt time.Time    `json:"finishedAt" db:"finished_at"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	SessionId string `json:"sessionId"`
	Score     int    `json:"score"`
}
