package nats

import (
	"context"
	"encoding/json"
	"log/slog"

	"sudooom.mahjong/internal/game"
)

// Conn 发布所需的最小连接接口，*nats.Conn 满足
type Conn interface {
	Publish(subject string, data []byte) error
}

// EventPublisher 把牌局更新发布到 NATS
type EventPublisher struct {
	nc     Conn
	logger *slog.Logger
}

// NewEventPublisher 创建事件发布器
func NewEventPublisher(nc Conn) *EventPublisher {
	return &EventPublisher{
		nc:     nc,
		logger: slog.Default().With("component", "EventPublisher"),
	}
}

// OnUpdate 实现 game.Observer
func (p *EventPublisher) OnUpdate(_ context.Context, u game.Update) {
	if err := p.Publish(u); err != nil {
		p.logger.Error("Failed to publish session update", "sessionId", u.SessionID, "error", err)
	}
}

// Publish 发布一次更新到牌局事件 Subject
func (p *EventPublisher) Publish(u game.Update) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}

	subject := BuildSessionEventsSubject(u.SessionID)
	if err := p.nc.Publish(subject, data); err != nil {
		return err
	}

	p.logger.Debug("Published session update", "subject", subject, "events", len(u.Events))
	return nil
}
