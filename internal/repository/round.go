package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"sudooom.mahjong/internal/game"
	"sudooom.mahjong/internal/game/mahjong/table"
	"sudooom.mahjong/internal/model"
)

// DB RoundRepository 使用的数据库接口，*pgxpool.Pool 满足
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const roundsSchema = `
	CREATE TABLE IF NOT EXISTS mahjong_rounds (
		id          BIGSERIAL PRIMARY KEY,
		session_id  TEXT        NOT NULL,
		round_num   INT         NOT NULL,
		difficulty  TEXT        NOT NULL,
		outcome     TEXT        NOT NULL,
		winner      INT,
		self_drawn  BOOLEAN     NOT NULL DEFAULT FALSE,
		fan         INT         NOT NULL DEFAULT 0,
		points      INT         NOT NULL DEFAULT 0,
		breakdown   TEXT[]      NOT NULL DEFAULT '{}',
		scores      INT[]       NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		UNIQUE (session_id, round_num)
	)
`

// RoundRepository 已结束牌局的归档
type RoundRepository struct {
	db      DB
	timeout time.Duration
	logger  *slog.Logger
}

// NewRoundRepository 创建归档仓库
func NewRoundRepository(db DB) *RoundRepository {
	return &RoundRepository{
		db:      db,
		timeout: 3 * time.Second,
		logger:  slog.Default().With("component", "RoundRepository"),
	}
}

// EnsureSchema 建表
func (r *RoundRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, roundsSchema)
	return err
}

// Create 保存一局，同一局重复保存时忽略
func (r *RoundRepository) Create(ctx context.Context, round *model.Round) (int64, error) {
	query := `
		INSERT INTO mahjong_rounds (session_id, round_num, difficulty, outcome, winner, self_drawn, fan, points, breakdown, scores, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id, round_num) DO NOTHING
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		round.SessionId,
		round.RoundNum,
		round.Difficulty,
		string(round.Outcome),
		round.Winner,
		round.SelfDrawn,
		round.Fan,
		round.Points,
		round.Breakdown,
		round.Scores,
		round.FinishedAt,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}

	return id, err
}

// ListBySession 按局数顺序列出某个牌局的归档
func (r *RoundRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*model.Round, error) {
	query := `
		SELECT id, session_id, round_num, difficulty, outcome, winner, self_drawn, fan, points, breakdown, scores, finished_at
		FROM mahjong_rounds WHERE session_id = $1
		ORDER BY round_num
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*model.Round
	for rows.Next() {
		var round model.Round
		var outcome string
		if err := rows.Scan(
			&round.Id,
			&round.SessionId,
			&round.RoundNum,
			&round.Difficulty,
			&outcome,
			&round.Winner,
			&round.SelfDrawn,
			&round.Fan,
			&round.Points,
			&round.Breakdown,
			&round.Scores,
			&round.FinishedAt,
		); err != nil {
			return nil, err
		}
		round.Outcome = model.RoundOutcome(outcome)
		rounds = append(rounds, &round)
	}

	return rounds, rows.Err()
}

// OnUpdate 实现 game.Observer：一局结束时归档
func (r *RoundRepository) OnUpdate(ctx context.Context, u game.Update) {
	round, ok := RoundFromUpdate(u)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	id, err := r.Create(ctx, round)
	if err != nil {
		r.logger.Error("Failed to archive round", "sessionId", u.SessionID, "round", round.RoundNum, "error", err)
		return
	}
	r.logger.Info("Round archived", "id", id, "sessionId", u.SessionID, "round", round.RoundNum, "outcome", round.Outcome)
}

// RoundFromUpdate 从结束一局的更新构造归档记录
func RoundFromUpdate(u game.Update) (*model.Round, bool) {
	if u.View == nil || !u.RoundOver() {
		return nil, false
	}

	v := u.View
	round := &model.Round{
		SessionId:  u.SessionID,
		RoundNum:   v.RoundNum,
		Difficulty: string(v.Difficulty),
		Outcome:    model.OutcomeDrawGame,
		Breakdown:  []string{},
		Scores:     append([]int(nil), v.Scores[:]...),
		FinishedAt: u.At,
	}

	if v.Phase == table.PhaseWin && v.Result != nil {
		winner := v.Result.Seat
		round.Outcome = model.OutcomeWin
		round.Winner = &winner
		round.SelfDrawn = v.Result.SelfDrawn
		round.Fan = v.Result.Fan
		round.Points = v.Result.Points
		round.Breakdown = append(round.Breakdown, v.Result.Breakdown...)
	}

	return round, true
}
