package application

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/internal/cart/infrastructure/persistence/kv"
	storage "github.com/wyfcoding/storefront/internal/storage/domain"
	"github.com/wyfcoding/storefront/internal/storage/infrastructure/persistence/memory"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, ev domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.EventType())
	}
	return out
}

func newTestStore(t *testing.T, base *memory.Store, pub domain.EventPublisher, opts ...Option) *Store {
	t.Helper()
	repo := kv.NewSnapshotRepository(storage.Scoped(base, storage.SessionNamespace("storefront", "s1")))
	return NewStore(context.Background(), repo, pub, append([]Option{WithSessionID("s1")}, opts...)...)
}

func rawCart(t *testing.T, base *memory.Store) (string, bool) {
	t.Helper()
	v, ok, err := base.Get(context.Background(), "storefront:session:s1:cart")
	require.NoError(t, err)
	return v, ok
}

func TestStore_PersistsEveryTransition(t *testing.T) {
	ctx := context.Background()
	base := memory.NewStore()
	s := newTestStore(t, base, nil)

	s.AddToCart(ctx, domain.NewItem("p1", map[string]any{"price": 10}))
	raw, ok := rawCart(t, base)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"p1","price":10,"quantity":1}]`, raw)

	s.Increase(ctx, "missing")
	raw, _ = rawCart(t, base)
	assert.JSONEq(t, `[{"id":"p1","price":10,"quantity":1}]`, raw)

	s.RemoveItem(ctx, "p1")
	raw, ok = rawCart(t, base)
	require.True(t, ok)
	assert.Equal(t, `[]`, raw)
}

func TestStore_ClearRemovesSnapshot(t *testing.T) {
	ctx := context.Background()
	for _, prior := range [][]string{nil, {"a"}, {"a", "b", "c"}} {
		base := memory.NewStore()
		s := newTestStore(t, base, nil)
		for _, id := range prior {
			s.AddToCart(ctx, domain.NewItem(id, nil))
		}

		c := s.Clear(ctx)
		assert.Zero(t, c.Len())
		assert.Empty(t, s.Lines())
		_, ok := rawCart(t, base)
		assert.False(t, ok)
	}
}

func TestStore_RoundTripThroughReinitialisation(t *testing.T) {
	ctx := context.Background()
	base := memory.NewStore()
	s := newTestStore(t, base, nil)
	s.AddToCart(ctx, domain.NewItem("b", map[string]any{"name": "Bowl"}))
	s.AddToCart(ctx, domain.NewItem("a", nil))
	s.Increase(ctx, "b")

	again := newTestStore(t, base, nil)
	assert.True(t, s.Snapshot().Equal(again.Snapshot()))
	assert.Equal(t, "Bowl", again.Lines()[0].Fields["name"])
}

func TestStore_InitialisationFallsBackToEmpty(t *testing.T) {
	var buf bytes.Buffer
	defer logger.SetForTest(logger.New(&buf, logger.Config{}))()

	base := memory.NewStore()
	require.NoError(t, base.Set(context.Background(), "storefront:session:s1:cart", `{broken`))
	assert.Empty(t, newTestStore(t, base, nil).Lines())

	base.FailReads(true)
	assert.Empty(t, newTestStore(t, base, nil).Lines())
	assert.Contains(t, buf.String(), "cart snapshot unreadable")
}

func TestStore_PersistenceFailureIsNotSurfaced(t *testing.T) {
	var buf bytes.Buffer
	defer logger.SetForTest(logger.New(&buf, logger.Config{}))()

	ctx := context.Background()
	m := metrics.New()
	base := memory.NewStore()
	s := newTestStore(t, base, nil, WithMetrics(m))
	s.AddToCart(ctx, domain.NewItem("p1", nil))

	base.FailWrites(true)
	c := s.AddToCart(ctx, domain.NewItem("p1", nil))
	l, _ := c.Find("p1")
	assert.Equal(t, 2, l.Quantity)

	s.Clear(ctx)
	assert.Empty(t, s.Lines())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartPersistFailures.WithLabelValues("add_to_cart")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartPersistFailures.WithLabelValues("clear")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CartTransitionsTotal.WithLabelValues("add_to_cart")))
	assert.Contains(t, buf.String(), "cart snapshot not persisted")

	raw, ok := rawCart(t, base)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"p1","quantity":1}]`, raw)
}

func TestStore_IncreaseAtMaxQuantityKeepsSnapshotValid(t *testing.T) {
	ctx := context.Background()
	base := memory.NewStore()
	require.NoError(t, base.Set(ctx, "storefront:session:s1:cart", `[{"id":"a","quantity":9223372036854775807}]`))

	s := newTestStore(t, base, nil)
	require.Len(t, s.Lines(), 1)
	s.Increase(ctx, "a")
	s.AddToCart(ctx, domain.NewItem("a", nil))

	raw, ok := rawCart(t, base)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"a","quantity":9223372036854775807}]`, raw)

	reloaded := newTestStore(t, base, nil)
	assert.Len(t, reloaded.Lines(), 1)
}

func TestStore_UnknownActionIsIgnored(t *testing.T) {
	ctx := context.Background()
	base := memory.NewStore()
	s := newTestStore(t, base, nil)

	s.Dispatch(ctx, domain.Action{Type: "CHECKOUT"})
	_, ok := rawCart(t, base)
	assert.False(t, ok)
}

func TestStore_PublishesEvents(t *testing.T) {
	var buf bytes.Buffer
	defer logger.SetForTest(logger.New(&buf, logger.Config{}))()

	ctx := context.Background()
	pub := &recordingPublisher{}
	s := newTestStore(t, memory.NewStore(), pub)

	s.AddToCart(ctx, domain.NewItem("p1", nil))
	s.Decrease(ctx, "p1")
	s.Increase(ctx, "p1")
	s.RemoveItem(ctx, "p1")
	s.RemoveItem(ctx, "p1")
	s.Clear(ctx)

	assert.Equal(t, []string{
		domain.EventItemAdded,
		domain.EventQuantityChanged,
		domain.EventItemRemoved,
		domain.EventCleared,
	}, pub.types())

	pub.err = errors.New("broker down")
	s.AddToCart(ctx, domain.NewItem("p2", nil))
	assert.Len(t, s.Lines(), 1)
	assert.Contains(t, buf.String(), "cart event not published")
}

func TestStore_ConcurrentTransitionsAreSerialised(t *testing.T) {
	ctx := context.Background()
	base := memory.NewStore()
	s := newTestStore(t, base, nil)
	s.AddToCart(ctx, domain.NewItem("p1", nil))

	var wg sync.WaitGroup
	for n := 0; n < 50; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Increase(ctx, "p1")
		}()
	}
	wg.Wait()

	l, _ := s.Snapshot().Find("p1")
	assert.Equal(t, 51, l.Quantity)

	raw, _ := rawCart(t, base)
	assert.JSONEq(t, `[{"id":"p1","quantity":51}]`, raw)
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	base := memory.NewStore()
	m := metrics.New()
	reg := NewRegistry(func(id string) domain.SnapshotRepository {
		return kv.NewSnapshotRepository(storage.Scoped(base, storage.SessionNamespace("storefront", id)))
	}, nil, time.Minute, m)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	a := reg.Get(ctx, "a")
	assert.Same(t, a, reg.Get(ctx, "a"))
	a.AddToCart(ctx, domain.NewItem("p1", nil))

	b := reg.Get(ctx, "b")
	assert.Empty(t, b.Lines())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CartStoresActive))

	now = now.Add(30 * time.Second)
	reg.Get(ctx, "b")
	assert.Equal(t, 1, reg.Sweep(now.Add(45*time.Second)))
	assert.Equal(t, 1, reg.Len())

	// 回收后重新从快照加载
	reloaded := reg.Get(ctx, "a")
	assert.NotSame(t, a, reloaded)
	assert.Len(t, reloaded.Lines(), 1)

	reg.Forget("a")
	reg.Forget("b")
	assert.Zero(t, reg.Len())
	assert.Zero(t, testutil.ToFloat64(m.CartStoresActive))
}

type blockingRepository struct {
	started chan struct{}
	release chan struct{}
	loads   *atomic.Int32
}

func (r blockingRepository) Load(context.Context) ([]domain.Line, error) {
	if r.loads.Add(1) == 1 {
		close(r.started)
	}
	<-r.release
	return nil, nil
}

func (blockingRepository) Save(context.Context, []domain.Line) error { return nil }
func (blockingRepository) Delete(context.Context) error               { return nil }

func TestRegistry_SlowLoadDoesNotBlockOtherSessions(t *testing.T) {
	ctx := context.Background()
	slow := blockingRepository{
		started: make(chan struct{}),
		release: make(chan struct{}),
		loads:   &atomic.Int32{},
	}
	reg := NewRegistry(func(id string) domain.SnapshotRepository {
		if id == "slow" {
			return slow
		}
		return kv.NewSnapshotRepository(memory.NewStore())
	}, nil, time.Minute, nil)

	var wg sync.WaitGroup
	got := make([]*Store, 2)
	for i := range got {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = reg.Get(ctx, "slow")
		}()
	}
	<-slow.started

	fast := make(chan *Store, 1)
	go func() { fast <- reg.Get(ctx, "fast") }()
	select {
	case s := <-fast:
		assert.Equal(t, "fast", s.SessionID())
	case <-time.After(2 * time.Second):
		t.Fatal("Get for another session waited on a pending load")
	}

	close(slow.release)
	wg.Wait()
	assert.Same(t, got[0], got[1])
	assert.Equal(t, int32(1), slow.loads.Load())
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_RunStopsWithContext(t *testing.T) {
	reg := NewRegistry(func(string) domain.SnapshotRepository {
		return kv.NewSnapshotRepository(memory.NewStore())
	}, nil, time.Nanosecond, nil)
	reg.Get(context.Background(), "x")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Run(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return reg.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	<-done
}
