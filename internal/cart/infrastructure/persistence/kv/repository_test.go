package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/internal/storage/infrastructure/persistence/memory"
)

func TestSnapshotRepository(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := NewSnapshotRepository(store)

	lines, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, lines)

	require.NoError(t, repo.Save(ctx, nil))
	raw, ok, _ := store.Get(ctx, "cart")
	require.True(t, ok)
	assert.Equal(t, "[]", raw)

	want := []domain.Line{{ID: "p1", Quantity: 2, Fields: map[string]any{"name": "Cup"}}}
	require.NoError(t, repo.Save(ctx, want))
	lines, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].ID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "Cup", lines[0].Fields["name"])

	require.NoError(t, repo.Delete(ctx))
	_, ok, _ = store.Get(ctx, "cart")
	assert.False(t, ok)
}

func TestSnapshotRepository_Unparseable(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, "cart", `[{"id":"p1","quantity":-1}]`))

	_, err := NewSnapshotRepository(store).Load(ctx)
	assert.ErrorIs(t, err, domain.ErrInvalidLine)
}
