package application

import (
	"context"
	"sync"
	"time"

	"github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// RepositoryFactory 为会话构造快照仓储
type RepositoryFactory func(sessionID string) domain.SnapshotRepository

type registryEntry struct {
	store    *Store
	lastSeen time.Time
}

// Registry 会话 id 到 Store 的映射，空闲超时的 Store 会被回收
// 回收只丢弃内存副本，快照仍在持久化存储中
type Registry struct {
	mu        sync.Mutex
	stores    map[string]*registryEntry
	loads     singleflight.Group
	repos     RepositoryFactory
	publisher domain.EventPublisher
	idleTTL   time.Duration
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewRegistry 创建注册表，idleTTL <= 0 表示不回收
func NewRegistry(repos RepositoryFactory, publisher domain.EventPublisher, idleTTL time.Duration, m *metrics.Metrics) *Registry {
	return &Registry{
		stores:    make(map[string]*registryEntry),
		repos:     repos,
		publisher: publisher,
		idleTTL:   idleTTL,
		metrics:   m,
		now:       time.Now,
	}
}

// Get 获取会话的 Store，不存在时从快照加载
// 加载不持有注册表锁，同一会话的并发加载合并为一次
func (r *Registry) Get(ctx context.Context, sessionID string) *Store {
	if store := r.lookup(sessionID); store != nil {
		return store
	}

	v, _, _ := r.loads.Do(sessionID, func() (any, error) {
		if store := r.lookup(sessionID); store != nil {
			return store, nil
		}
		// 结果被所有等待者共享，不能随首个请求一起取消
		store := NewStore(context.WithoutCancel(ctx), r.repos(sessionID), r.publisher,
			WithSessionID(sessionID),
			WithMetrics(r.metrics),
			WithClock(r.now),
		)

		r.mu.Lock()
		defer r.mu.Unlock()
		if e, ok := r.stores[sessionID]; ok {
			e.lastSeen = r.now()
			return e.store, nil
		}
		r.stores[sessionID] = &registryEntry{store: store, lastSeen: r.now()}
		r.metrics.SetCartStores(len(r.stores))
		return store, nil
	})
	return v.(*Store)
}

func (r *Registry) lookup(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.stores[sessionID]; ok {
		e.lastSeen = r.now()
		return e.store
	}
	return nil
}

// Forget 丢弃会话的内存购物车
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, sessionID)
	r.metrics.SetCartStores(len(r.stores))
}

// Len 内存中的购物车数量
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Sweep 回收空闲超过 idleTTL 的 Store，返回回收数量
func (r *Registry) Sweep(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, e := range r.stores {
		if now.Sub(e.lastSeen) > r.idleTTL {
			delete(r.stores, id)
			evicted++
		}
	}
	r.metrics.SetCartStores(len(r.stores))
	return evicted
}

// Run 周期性回收，直到 ctx 结束
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if n := r.Sweep(t); n > 0 {
				logger.Debug(ctx, "idle carts evicted", "count", n)
			}
		}
	}
}
