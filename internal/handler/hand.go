package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "sudooom.mahjong/internal/errors"
	"sudooom.mahjong/internal/game/mahjong/core"
	"sudooom.mahjong/internal/game/mahjong/hkmahjong"
	"sudooom.mahjong/internal/model"
	"sudooom.mahjong/pkg/response"
)

// Leaderboard 排行榜来源
type Leaderboard interface {
	Top(ctx context.Context, n int) ([]model.LeaderboardEntry, error)
}

// HandHandler 手牌分析和排行榜
type HandHandler struct {
	board Leaderboard
}

// NewHandHandler 创建处理器，board 为空时排行榜返回空列表
func NewHandHandler(board Leaderboard) *HandHandler {
	return &HandHandler{board: board}
}

// AnalyzeRequest 手牌分析请求，牌串如 "123m 456p 789s 111z 55z"
type AnalyzeRequest struct {
	Hand string `json:"hand" binding:"required"`
}

// AnalyzeResponse 手牌分析结果
type AnalyzeResponse struct {
	Tiles         []core.Tile              `json:"tiles"`
	Shanten       int                      `json:"shanten"`
	Hint          hkmahjong.Hint           `json:"hint"`
	Win           bool                     `json:"win"`
	Decomposition *hkmahjong.Decomposition `json:"decomposition,omitempty"`
	Points        int                      `json:"points,omitempty"`
}

// Analyze 分析一手暗牌
// POST /api/v1/hands/analyze
func (h *HandHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	tiles, err := core.ParseTiles(req.Hand)
	if err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}
	core.SortTiles(tiles)

	resp := AnalyzeResponse{
		Tiles:   tiles,
		Shanten: hkmahjong.CalcShanten(tiles),
		Hint:    hkmahjong.HandHint(tiles, nil),
	}
	if dec, ok := hkmahjong.CheckWin(tiles, nil); ok {
		resp.Win = true
		resp.Decomposition = dec
		resp.Points = hkmahjong.Points(dec.Fan.Fan)
	}

	response.Success(c, resp)
}

// Leaderboard 人类累计分排行
// GET /api/v1/leaderboard?limit=
func (h *HandHandler) Leaderboard(c *gin.Context) {
	limit := 10
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 100 {
			response.ErrorWithMsg(c, response.CodeInvalidParams, "limit must be 1..100")
			return
		}
		limit = n
	}

	if h.board == nil {
		response.Success(c, []model.LeaderboardEntry{})
		return
	}

	entries, err := h.board.Top(c.Request.Context(), limit)
	if err != nil {
		response.ErrorFromAppError(c, apperrors.ErrDBError.Wrap(err))
		return
	}
	response.Success(c, entries)
}
