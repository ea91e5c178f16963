package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/internal/cart/domain"
)

type sentMessage struct {
	topic, key string
	value      any
	headers    map[string]string
}

type fakeSender struct{ sent []sentMessage }

func (f *fakeSender) SendMessage(_ context.Context, topic, key string, value any, headers map[string]string) error {
	f.sent = append(f.sent, sentMessage{topic, key, value, headers})
	return nil
}

func TestKafkaPublisher(t *testing.T) {
	sender := &fakeSender{}
	p := NewKafkaPublisher(sender, "storefront.cart")

	ev := domain.CartClearedEvent{SessionID: "s1", Timestamp: time.Unix(0, 0)}
	require.NoError(t, p.Publish(context.Background(), "s1", ev))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "storefront.cart", msg.topic)
	assert.Equal(t, "s1", msg.key)
	assert.Equal(t, ev, msg.value)
	assert.Equal(t, map[string]string{"event_type": domain.EventCleared}, msg.headers)
}

func TestNopAndLogPublishers(t *testing.T) {
	ev := domain.CartItemRemovedEvent{SessionID: "s1", ProductID: "p1"}
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), "s1", ev))
	assert.NoError(t, LogPublisher{}.Publish(context.Background(), "s1", ev))
}
