// Package kv 将购物车快照保存在键值存储的 "cart" 键下
package kv

import (
	"context"
	"fmt"

	"github.com/wyfcoding/storefront/internal/cart/domain"
	storage "github.com/wyfcoding/storefront/internal/storage/domain"
)

type snapshotRepository struct {
	store storage.Store
}

// NewSnapshotRepository 基于（已按会话隔离的）存储创建仓储
func NewSnapshotRepository(store storage.Store) domain.SnapshotRepository {
	return &snapshotRepository{store: store}
}

func (r *snapshotRepository) Load(ctx context.Context) ([]domain.Line, error) {
	raw, ok, err := r.store.Get(ctx, storage.KeyCart)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	lines, err := domain.DecodeSnapshot(raw)
	if err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return lines, nil
}

func (r *snapshotRepository) Save(ctx context.Context, lines []domain.Line) error {
	raw, err := domain.EncodeSnapshot(lines)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, storage.KeyCart, raw)
}

func (r *snapshotRepository) Delete(ctx context.Context) error {
	return r.store.Remove(ctx, storage.KeyCart)
}
