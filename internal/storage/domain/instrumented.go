package domain

import (
	"context"

	"github.com/wyfcoding/storefront/pkg/metrics"
)

// Instrumented 为任意后端记录 storage_ops_total
func Instrumented(store Store, backend string, m *metrics.Metrics) Store {
	if m == nil {
		return store
	}
	return &instrumentedStore{inner: store, backend: backend, metrics: m}
}

type instrumentedStore struct {
	inner   Store
	backend string
	metrics *metrics.Metrics
}

func (s *instrumentedStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.inner.Get(ctx, key)
	s.metrics.ObserveStorageOp(s.backend, "get", err)
	return v, ok, err
}

func (s *instrumentedStore) Set(ctx context.Context, key, value string) error {
	err := s.inner.Set(ctx, key, value)
	s.metrics.ObserveStorageOp(s.backend, "set", err)
	return err
}

func (s *instrumentedStore) Remove(ctx context.Context, key string) error {
	err := s.inner.Remove(ctx, key)
	s.metrics.ObserveStorageOp(s.backend, "remove", err)
	return err
}
