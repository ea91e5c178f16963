package mq

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/pkg/logger"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestSendMessage(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w)

	err := p.SendMessage(context.Background(), "storefront.cart", "session-1",
		map[string]any{"product_id": "p1"}, map[string]string{"event_type": "cart.item.added"})
	require.NoError(t, err)

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "storefront.cart", msg.Topic)
	assert.Equal(t, "session-1", string(msg.Key))
	assert.JSONEq(t, `{"product_id":"p1"}`, string(msg.Value))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestSendMessage_Errors(t *testing.T) {
	p := NewProducerWithWriter(&recordingWriter{err: errors.New("broker down")})
	err := p.SendMessage(context.Background(), "t", "k", "v", nil)
	require.EqualError(t, err, "broker down")

	err = p.SendMessage(context.Background(), "t", "k", make(chan int), nil)
	require.ErrorContains(t, err, "failed to marshal message")
}

func TestNewWriter_DoesNotBlockCaller(t *testing.T) {
	w := newWriter(KafkaConfig{Brokers: []string{"localhost:9092"}, MaxRetries: 3, RetryBackoff: 100})
	defer w.Close()

	assert.True(t, w.Async)
	assert.LessOrEqual(t, w.BatchTimeout, 10*time.Millisecond)
	assert.Equal(t, 3, w.MaxAttempts)
	require.NotNil(t, w.Completion)
}

func TestLogCompletion(t *testing.T) {
	var buf bytes.Buffer
	defer logger.SetForTest(logger.New(&buf, logger.Config{Level: "info"}))()

	msgs := []kafka.Message{{Topic: "storefront.cart", Key: []byte("session-1")}}
	logCompletion(msgs, nil)
	assert.Empty(t, buf.String())

	logCompletion(msgs, errors.New("broker down"))
	assert.Contains(t, buf.String(), "failed to deliver kafka message")
	assert.Contains(t, buf.String(), "session-1")
	assert.Contains(t, buf.String(), "broker down")
}
