package domain

import (
	"context"
	"time"
)

// 事件类型
const (
	EventItemAdded       = "cart.item.added"
	EventItemRemoved     = "cart.item.removed"
	EventQuantityChanged = "cart.quantity.changed"
	EventCleared         = "cart.cleared"
)

// Event 购物车事件
type Event interface {
	EventType() string
}

// CartItemAddedEvent 购物车添加商品事件
type CartItemAddedEvent struct {
	SessionID string    `json:"session_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

func (CartItemAddedEvent) EventType() string { return EventItemAdded }

// CartItemRemovedEvent 购物车移除商品事件
type CartItemRemovedEvent struct {
	SessionID string    `json:"session_id"`
	ProductID string    `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (CartItemRemovedEvent) EventType() string { return EventItemRemoved }

// CartQuantityChangedEvent 数量变化事件
type CartQuantityChangedEvent struct {
	SessionID string    `json:"session_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

func (CartQuantityChangedEvent) EventType() string { return EventQuantityChanged }

// CartClearedEvent 购物车清空事件
type CartClearedEvent struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (CartClearedEvent) EventType() string { return EventCleared }

// EventPublisher 事件发布端口
type EventPublisher interface {
	Publish(ctx context.Context, sessionID string, event Event) error
}
