package domain

import (
	"context"
	"errors"
)

// ErrDuplicateLine 快照中同一 id 出现多次
var ErrDuplicateLine = errors.New("duplicate cart line")

// SnapshotRepository 购物车快照仓储
type SnapshotRepository interface {
	// Load 读取快照；不存在时返回 nil, nil
	Load(ctx context.Context) ([]Line, error)
	Save(ctx context.Context, lines []Line) error
	// Delete 删除快照，与保存空序列不同
	Delete(ctx context.Context) error
}
