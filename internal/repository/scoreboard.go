package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "sudooom.mahjong/internal/errors"
	"sudooom.mahjong/internal/game"
	"sudooom.mahjong/internal/game/mahjong/table"
	"sudooom.mahjong/internal/model"
)

const (
	// sessionScoresPrefix 牌局累计分: mahjong:session:{session_id}:scores -> {seat0..seat3, round}
	sessionScoresPrefix = "mahjong:session:"
	sessionScoresSuffix = ":scores"
	// leaderboardKey 人类座位累计分排行 (sorted set, member 为牌局 ID)
	leaderboardKey = "mahjong:leaderboard"

	roundField = "round"
)

// RedisClient ScoreBoard 使用的 Redis 命令，*redis.Client 满足
type RedisClient interface {
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) *redis.ZSliceCmd
}

// ScoreBoard 在 Redis 中镜像各牌局的累计分
type ScoreBoard struct {
	rdb     RedisClient
	ttl     time.Duration
	timeout time.Duration
	logger  *slog.Logger
}

// NewScoreBoard 创建计分板，ttl 为牌局分数的保留时间
func NewScoreBoard(rdb RedisClient, ttl time.Duration) *ScoreBoard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ScoreBoard{
		rdb:     rdb,
		ttl:     ttl,
		timeout: 2 * time.Second,
		logger:  slog.Default().With("component", "ScoreBoard"),
	}
}

// buildScoresKey 构建牌局分数的 Key: mahjong:session:{session_id}:scores
func buildScoresKey(sessionID string) string {
	return sessionScoresPrefix + sessionID + sessionScoresSuffix
}

func seatField(seat int) string {
	return "seat" + strconv.Itoa(seat)
}

// SaveScores 保存累计分并更新排行
func (b *ScoreBoard) SaveScores(ctx context.Context, sessionID string, round int, scores [table.NumSeats]int) error {
	key := buildScoresKey(sessionID)

	values := make([]any, 0, 2*(table.NumSeats+1))
	for seat, score := range scores {
		values = append(values, seatField(seat), score)
	}
	values = append(values, roundField, round)

	if err := b.rdb.HSet(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("failed to save scores: %w", err)
	}
	if err := b.rdb.Expire(ctx, key, b.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set scores ttl: %w", err)
	}

	human := redis.Z{Score: float64(scores[table.HumanSeat]), Member: sessionID}
	if err := b.rdb.ZAdd(ctx, leaderboardKey, human).Err(); err != nil {
		return fmt.Errorf("failed to update leaderboard: %w", err)
	}
	return nil
}

// LoadScores 读取累计分和已结束的局数
func (b *ScoreBoard) LoadScores(ctx context.Context, sessionID string) ([table.NumSeats]int, int, error) {
	var scores [table.NumSeats]int

	fields, err := b.rdb.HGetAll(ctx, buildScoresKey(sessionID)).Result()
	if err != nil {
		return scores, 0, fmt.Errorf("failed to load scores: %w", err)
	}
	if len(fields) == 0 {
		return scores, 0, apperrors.ErrSessionNotFound.Withf("no scores for session %s", sessionID)
	}

	for seat := range table.NumSeats {
		if scores[seat], err = strconv.Atoi(fields[seatField(seat)]); err != nil {
			return scores, 0, fmt.Errorf("bad score for seat %d: %w", seat, err)
		}
	}
	round, err := strconv.Atoi(fields[roundField])
	if err != nil {
		return scores, 0, fmt.Errorf("bad round: %w", err)
	}
	return scores, round, nil
}

// Top 人类累计分最高的 n 个牌局
func (b *ScoreBoard) Top(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if n <= 0 {
		return nil, nil
	}

	zs, err := b.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	entries := make([]model.LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		entries = append(entries, model.LeaderboardEntry{SessionId: member, Score: int(z.Score)})
	}
	return entries, nil
}

// OnUpdate 实现 game.Observer：一局结束时同步分数
func (b *ScoreBoard) OnUpdate(ctx context.Context, u game.Update) {
	if u.View == nil || !u.RoundOver() {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
	defer cancel()

	if err := b.SaveScores(ctx, u.SessionID, u.View.RoundNum, u.View.Scores); err != nil {
		b.logger.Error("Failed to mirror scores", "sessionId", u.SessionID, "error", err)
		return
	}
	b.logger.Debug("Scores mirrored", "sessionId", u.SessionID, "round", u.View.RoundNum, "scores", u.View.Scores)
}
