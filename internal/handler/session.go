package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	apperrors "sudooom.mahjong/internal/errors"
	"sudooom.mahjong/internal/game"
	"sudooom.mahjong/internal/game/mahjong/ai"
	"sudooom.mahjong/internal/game/mahjong/table"
	"sudooom.mahjong/internal/ws"
	"sudooom.mahjong/pkg/response"
)

// SessionHandler 牌局接口
type SessionHandler struct {
	sessions *game.Manager
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewSessionHandler 创建牌局处理器，hub 为空时不提供 websocket
func NewSessionHandler(sessions *game.Manager, hub *ws.Hub, allowedOrigins []string) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		hub:      hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: slog.Default().With("component", "SessionHandler"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// CreateSessionRequest 创建牌局请求
type CreateSessionRequest struct {
	Difficulty string `json:"difficulty"`
	Seed       int64  `json:"seed"`
}

// SessionResponse 牌局 ID 加人类视角
type SessionResponse struct {
	SessionID string      `json:"sessionId"`
	View      *table.View `json:"view"`
}

// DiscardRequest 出牌请求
type DiscardRequest struct {
	TileID *int `json:"tileId" binding:"required"`
}

// ClaimRequest 认领请求
type ClaimRequest struct {
	Kind       string `json:"kind" binding:"required"`
	ChowChoice *int   `json:"chowChoice"`
}

// Create 创建牌局
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
			return
		}
	}

	difficulty, err := ai.ParseDifficulty(req.Difficulty)
	if err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	g, err := h.sessions.Create(difficulty, req.Seed)
	if err != nil {
		response.ErrorFromAppError(c, err)
		return
	}

	view, err := g.View(table.HumanSeat)
	if err != nil {
		response.ErrorFromAppError(c, err)
		return
	}
	response.Success(c, SessionResponse{SessionID: g.ID(), View: view})
}

// Get 获取牌局快照，seat=-1 为旁观视角
// GET /api/v1/sessions/:id?seat=
func (h *SessionHandler) Get(c *gin.Context) {
	g, ok := h.session(c)
	if !ok {
		return
	}

	seat := table.HumanSeat
	if s := c.Query("seat"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			response.ErrorWithMsg(c, response.CodeInvalidParams, "invalid seat")
			return
		}
		seat = n
	}

	view, err := g.View(seat)
	if err != nil {
		response.ErrorFromAppError(c, err)
		return
	}
	response.Success(c, view)
}

// Draw 摸牌
// POST /api/v1/sessions/:id/draw
func (h *SessionHandler) Draw(c *gin.Context) {
	h.act(c, table.Action{Type: table.ActionDraw})
}

// Discard 出牌
// POST /api/v1/sessions/:id/discard
func (h *SessionHandler) Discard(c *gin.Context) {
	var req DiscardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}
	h.act(c, table.Action{Type: table.ActionDiscard, TileID: *req.TileID})
}

// Claim 碰/杠/吃/胡
// POST /api/v1/sessions/:id/claim
func (h *SessionHandler) Claim(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	kind, ok := table.ParseClaimKind(req.Kind)
	if !ok {
		response.ErrorWithMsg(c, response.CodeInvalidParams, "unknown claim kind: "+req.Kind)
		return
	}
	h.act(c, table.Action{Type: table.ActionClaim, Claim: kind, ChowChoice: req.ChowChoice})
}

// Pass 放弃认领
// POST /api/v1/sessions/:id/pass
func (h *SessionHandler) Pass(c *gin.Context) {
	h.act(c, table.Action{Type: table.ActionPass})
}

// NextRound 下一局
// POST /api/v1/sessions/:id/next-round
func (h *SessionHandler) NextRound(c *gin.Context) {
	h.withSession(c, func(ctx context.Context, g *game.Game) (*table.View, error) {
		return g.NextRound(ctx)
	})
}

// Pause 页面不可见，暂停 AI
// POST /api/v1/sessions/:id/pause
func (h *SessionHandler) Pause(c *gin.Context) {
	h.withSession(c, func(_ context.Context, g *game.Game) (*table.View, error) {
		g.Pause()
		return g.View(table.HumanSeat)
	})
}

// Resume 恢复 AI
// POST /api/v1/sessions/:id/resume
func (h *SessionHandler) Resume(c *gin.Context) {
	h.withSession(c, func(_ context.Context, g *game.Game) (*table.View, error) {
		g.Resume()
		return g.View(table.HumanSeat)
	})
}

// Delete 放弃牌局
// DELETE /api/v1/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !h.sessions.Remove(id) {
		response.ErrorFromAppError(c, apperrors.ErrSessionNotFound.Withf("session %s", id))
		return
	}
	if h.hub != nil {
		h.hub.CloseSession(id)
	}
	response.Success(c, nil)
}

// Stream 升级为 websocket，推送牌局更新并接收可见性变化
// GET /api/v1/sessions/:id/ws
func (h *SessionHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		response.ErrorWithMsg(c, response.CodeServerError, "websocket disabled")
		return
	}
	g, ok := h.session(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "sessionId", g.ID(), "error", err)
		return
	}

	h.hub.Serve(conn, g.ID(), func(visible bool) {
		if visible {
			g.Resume()
		} else {
			g.Pause()
		}
	})
}

func (h *SessionHandler) act(c *gin.Context, action table.Action) {
	h.withSession(c, func(ctx context.Context, g *game.Game) (*table.View, error) {
		return g.Act(ctx, action)
	})
}

func (h *SessionHandler) withSession(c *gin.Context, fn func(ctx context.Context, g *game.Game) (*table.View, error)) {
	g, ok := h.session(c)
	if !ok {
		return
	}

	view, err := fn(c.Request.Context(), g)
	if err != nil {
		response.ErrorFromAppError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *SessionHandler) session(c *gin.Context) (*game.Game, bool) {
	g, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		response.ErrorFromAppError(c, err)
		return nil, false
	}
	return g, true
}
