package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"

	apperrors "sudooom.mahjong/internal/errors"
	"sudooom.mahjong/internal/game"
	"sudooom.mahjong/internal/game/mahjong/ai"
	"sudooom.mahjong/internal/game/mahjong/table"
)

// CommandOp 命令类型
type CommandOp string

const (
	OpCreate    CommandOp = "create"
	OpView      CommandOp = "view"
	OpAct       CommandOp = "act"
	OpNextRound CommandOp = "next_round"
	OpPause     CommandOp = "pause"
	OpResume    CommandOp = "resume"
	OpClose     CommandOp = "close"
)

// Command 请求体
type Command struct {
	Op         CommandOp     `json:"op"`
	SessionID  string        `json:"sessionId,omitempty"`
	Difficulty string        `json:"difficulty,omitempty"`
	Seed       int64         `json:"seed,omitempty"`
	Seat       *int          `json:"seat,omitempty"`
	Action     *table.Action `json:"action,omitempty"`
}

// Reply 响应体，与 HTTP 接口使用同样的错误码
type Reply struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      *table.View `json:"data,omitempty"`
}

// SubscriberConfig Worker 配置
type SubscriberConfig struct {
	WorkerCount int // Worker 数量
	BufferSize  int // 消息缓冲区大小
}

// CommandSubscriber 通过 NATS 请求/响应驱动牌局
type CommandSubscriber struct {
	nc           *nats.Conn
	sessions     *game.Manager
	logger       *slog.Logger
	subscription *nats.Subscription
	config       SubscriberConfig
	msgChan      chan *nats.Msg
	wg           sync.WaitGroup
	cancelFunc   context.CancelFunc
}

// NewCommandSubscriber 创建命令订阅器
func NewCommandSubscriber(nc *nats.Conn, sessions *game.Manager, config SubscriberConfig) *CommandSubscriber {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 8
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 1024
	}

	return &CommandSubscriber{
		nc:       nc,
		sessions: sessions,
		logger:   slog.Default().With("component", "CommandSubscriber"),
		config:   config,
	}
}

// Start 启动订阅
func (s *CommandSubscriber) Start(ctx context.Context) error {
	s.msgChan = make(chan *nats.Msg, s.config.BufferSize)

	workerCtx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel

	for range s.config.WorkerCount {
		s.wg.Add(1)
		go s.worker(workerCtx)
	}

	sub, err := s.nc.QueueSubscribe(SubjectSessionCommand, QueueGroupEngine, func(msg *nats.Msg) {
		select {
		case s.msgChan <- msg:
		default:
			s.logger.Warn("Command buffer full, dropping command", "bufferSize", s.config.BufferSize)
			s.respond(msg, errorReply(apperrors.ErrServerError.Withf("command buffer full")))
		}
	})
	if err != nil {
		cancel()
		return err
	}

	s.subscription = sub
	s.logger.Info("NATS command subscriber started",
		"subject", SubjectSessionCommand,
		"workerCount", s.config.WorkerCount,
		"bufferSize", s.config.BufferSize,
	)
	return nil
}

func (s *CommandSubscriber) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.msgChan:
			if !ok {
				return
			}
			s.respond(msg, s.HandleData(ctx, msg.Data))
		}
	}
}

func (s *CommandSubscriber) respond(msg *nats.Msg, reply Reply) {
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(reply)
	if err != nil {
		s.logger.Error("Failed to marshal reply", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		s.logger.Error("Failed to respond", "error", err)
	}
}

// HandleData 解析并执行一条命令
func (s *CommandSubscriber) HandleData(ctx context.Context, data []byte) Reply {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return errorReply(apperrors.ErrInvalidParams.Wrap(err))
	}

	sessionID, view, err := s.Execute(ctx, cmd)
	if err != nil {
		s.logger.Debug("Command failed", "op", cmd.Op, "sessionId", cmd.SessionID, "error", err)
		return errorReply(err)
	}
	return Reply{Code: apperrors.CodeSuccess, Message: "success", SessionID: sessionID, Data: view}
}

// Execute 执行命令，返回牌局 ID 和人类视角 (或指定座位视角)
func (s *CommandSubscriber) Execute(ctx context.Context, cmd Command) (string, *table.View, error) {
	if cmd.Op == OpCreate {
		difficulty, err := ai.ParseDifficulty(cmd.Difficulty)
		if err != nil {
			return "", nil, apperrors.ErrInvalidParams.Wrap(err)
		}
		g, err := s.sessions.Create(difficulty, cmd.Seed)
		if err != nil {
			return "", nil, err
		}
		view, err := g.View(table.HumanSeat)
		return g.ID(), view, err
	}

	if cmd.Op == OpClose {
		if !s.sessions.Remove(cmd.SessionID) {
			return "", nil, apperrors.ErrSessionNotFound.Withf("session %s", cmd.SessionID)
		}
		return cmd.SessionID, nil, nil
	}

	g, err := s.sessions.Get(cmd.SessionID)
	if err != nil {
		return "", nil, err
	}

	var view *table.View
	switch cmd.Op {
	case OpView:
		seat := table.HumanSeat
		if cmd.Seat != nil {
			seat = *cmd.Seat
		}
		view, err = g.View(seat)
	case OpAct:
		if cmd.Action == nil {
			return "", nil, apperrors.ErrInvalidParams.Withf("missing action")
		}
		view, err = g.Act(ctx, *cmd.Action)
	case OpNextRound:
		view, err = g.NextRound(ctx)
	case OpPause:
		g.Pause()
		view, err = g.View(table.HumanSeat)
	case OpResume:
		g.Resume()
		view, err = g.View(table.HumanSeat)
	default:
		return "", nil, apperrors.ErrInvalidParams.Withf("unknown op %q", cmd.Op)
	}
	if err != nil {
		return "", nil, err
	}
	return g.ID(), view, nil
}

func errorReply(err error) Reply {
	return Reply{Code: apperrors.GetCode(err), Message: err.Error()}
}

// Stop 停止订阅
func (s *CommandSubscriber) Stop() error {
	if s.cancelFunc != nil {
		s.cancelFunc()
	}

	if s.subscription != nil {
		if err := s.subscription.Unsubscribe(); err != nil {
			s.logger.Error("Failed to unsubscribe", "error", err)
		}
	}

	s.wg.Wait()

	s.logger.Info("NATS command subscriber stopped")
	return nil
}
