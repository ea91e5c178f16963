// Package messaging 购物车事件发布实现
package messaging

import (
	"context"

	"github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// MessageSender pkg/mq.KafkaProducer 的发送能力
type MessageSender interface {
	SendMessage(ctx context.Context, topic, key string, value any, headers map[string]string) error
}

// KafkaPublisher 以会话 id 为 key 写入 Kafka，同一会话的事件落在同一分区
type KafkaPublisher struct {
	sender MessageSender
	topic  string
}

// NewKafkaPublisher 创建 Kafka 发布器
func NewKafkaPublisher(sender MessageSender, topic string) *KafkaPublisher {
	return &KafkaPublisher{sender: sender, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, sessionID string, event domain.Event) error {
	return p.sender.SendMessage(ctx, p.topic, sessionID, event, map[string]string{
		"event_type": event.EventType(),
	})
}

// NopPublisher 丢弃所有事件
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, domain.Event) error { return nil }

// LogPublisher 以 debug 日志输出事件
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, sessionID string, event domain.Event) error {
	logger.Debug(ctx, "cart event", "session_id", sessionID, "event_type", event.EventType(), "event", event)
	return nil
}
