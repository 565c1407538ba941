package game

import (
	"context"
	"time"

	"sudooom.mahjong/internal/game/mahjong/table"
)

// Update 一次状态转换后推送给观察者的内容
type Update struct {
	SessionID string        `json:"sessionId"`
	Events    []table.Event `json:"events"`
	View      *table.View   `json:"view"` // 人类座位视角
	At        time.Time     `json:"at"`
}

// RoundOver 本次更新是否结束了一局
func (u Update) RoundOver() bool {
	for _, ev := range u.Events {
		if ev.Type == table.EventWin || ev.Type == table.EventDrawGame {
			return true
		}
	}
	return false
}

// Observer 牌局观察者
// 同一牌局的更新按发生顺序串行送达
type Observer interface {
	OnUpdate(ctx context.Context, u Update)
}

// ObserverFunc 函数形式的观察者
type ObserverFunc func(ctx context.Context, u Update)

func (f ObserverFunc) OnUpdate(ctx context.Context, u Update) { f(ctx, u) }
