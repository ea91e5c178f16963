// Package application 购物车应用层：按会话持有的购物车与其注册表
package application

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// Store 单个浏览器会话的购物车
// 迁移串行执行：先在内存中完成，再尽力写入快照，写入失败只记录日志与指标
type Store struct {
	mu        sync.Mutex
	cart      domain.Cart
	repo      domain.SnapshotRepository
	publisher domain.EventPublisher
	sessionID string
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option Store 选项
type Option func(*Store)

// WithSessionID 设置会话 id，用于日志与事件
func WithSessionID(id string) Option {
	return func(s *Store) { s.sessionID = id }
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithClock 设置时钟
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore 从快照初始化购物车；快照不存在、无法解析或读取失败都得到空购物车
func NewStore(ctx context.Context, repo domain.SnapshotRepository, publisher domain.EventPublisher, opts ...Option) *Store {
	s := &Store{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	lines, err := repo.Load(ctx)
	if err != nil {
		logger.Warn(ctx, "cart snapshot unreadable, starting empty",
			"session_id", s.sessionID,
			"error", err,
		)
		lines = nil
	}
	s.cart = domain.NewCart(lines)
	return s
}

// AddToCart ADD_TO_CART
func (s *Store) AddToCart(ctx context.Context, item domain.Item) domain.Cart {
	return s.Dispatch(ctx, domain.Action{Type: domain.ActionAddToCart, Item: item})
}

// Increase INCREASE
func (s *Store) Increase(ctx context.Context, id string) domain.Cart {
	return s.Dispatch(ctx, domain.Action{Type: domain.ActionIncrease, ID: id})
}

// Decrease DECREASE
func (s *Store) Decrease(ctx context.Context, id string) domain.Cart {
	return s.Dispatch(ctx, domain.Action{Type: domain.ActionDecrease, ID: id})
}

// RemoveItem REMOVE_ITEM
func (s *Store) RemoveItem(ctx context.Context, id string) domain.Cart {
	return s.Dispatch(ctx, domain.Action{Type: domain.ActionRemoveItem, ID: id})
}

// Clear CLEAR，删除快照而不是写入空序列
func (s *Store) Clear(ctx context.Context) domain.Cart {
	return s.Dispatch(ctx, domain.Action{Type: domain.ActionClear})
}

// Dispatch 应用一次动作并返回迁移后的状态；未知动作不做任何事
func (s *Store) Dispatch(ctx context.Context, a domain.Action) domain.Cart {
	if !a.Type.Known() {
		return s.Snapshot()
	}

	s.mu.Lock()
	before := s.cart
	after := domain.Reduce(before, a)
	s.cart = after
	s.persist(ctx, a.Type, after)
	s.mu.Unlock()

	op := strings.ToLower(string(a.Type))
	s.metrics.ObserveCartTransition(op)
	if ev := s.eventFor(a, before, after); ev != nil {
		s.publish(ctx, ev)
	}
	return after
}

// Lines 当前行的副本
func (s *Store) Lines() []domain.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cart.Lines)
}

// Snapshot 当前状态
func (s *Store) Snapshot() domain.Cart {
	return domain.NewCart(s.Lines())
}

// SessionID 所属会话
func (s *Store) SessionID() string {
	return s.sessionID
}

func (s *Store) persist(ctx context.Context, t domain.ActionType, c domain.Cart) {
	var err error
	if t == domain.ActionClear {
		err = s.repo.Delete(ctx)
	} else {
		err = s.repo.Save(ctx, c.Lines)
	}
	if err == nil {
		return
	}

	op := strings.ToLower(string(t))
	s.metrics.ObserveCartPersistFailure(op)
	logger.Warn(ctx, "cart snapshot not persisted",
		"session_id", s.sessionID,
		"key", "cart",
		"op", op,
		"error", err,
	)
}

func (s *Store) eventFor(a domain.Action, before, after domain.Cart) domain.Event {
	ts := s.now()
	switch a.Type {
	case domain.ActionAddToCart:
		l, _ := after.Find(a.Item.ID)
		return domain.CartItemAddedEvent{SessionID: s.sessionID, ProductID: l.ID, Quantity: l.Quantity, Timestamp: ts}
	case domain.ActionIncrease, domain.ActionDecrease:
		prev, ok := before.Find(a.ID)
		next, _ := after.Find(a.ID)
		if !ok || prev.Quantity == next.Quantity {
			return nil
		}
		return domain.CartQuantityChangedEvent{SessionID: s.sessionID, ProductID: a.ID, Quantity: next.Quantity, Timestamp: ts}
	case domain.ActionRemoveItem:
		if _, ok := before.Find(a.ID); !ok {
			return nil
		}
		return domain.CartItemRemovedEvent{SessionID: s.sessionID, ProductID: a.ID, Timestamp: ts}
	case domain.ActionClear:
		return domain.CartClearedEvent{SessionID: s.sessionID, Timestamp: ts}
	}
	return nil
}

func (s *Store) publish(ctx context.Context, ev domain.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, s.sessionID, ev); err != nil {
		logger.Warn(ctx, "cart event not published",
			"session_id", s.sessionID,
			"event_type", ev.EventType(),
			"error", err,
		)
	}
}
