package domain_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/internal/storage/domain"
	"github.com/wyfcoding/storefront/internal/storage/infrastructure/persistence/memory"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

func TestScoped_IsolatesSessions(t *testing.T) {
	ctx := context.Background()
	base := memory.NewStore()
	a := domain.Scoped(base, domain.SessionNamespace("storefront", "a"))
	b := domain.Scoped(base, domain.SessionNamespace("storefront", "b"))

	require.NoError(t, a.Set(ctx, domain.KeyToken, "tok-a"))

	_, ok, err := b.Get(ctx, domain.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := base.Get(ctx, "storefront:session:a:token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-a", v)

	require.NoError(t, b.Remove(ctx, domain.KeyToken))
	v, ok, _ = a.Get(ctx, domain.KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "tok-a", v)
}

func TestInstrumented(t *testing.T) {
	ctx := context.Background()
	m := metrics.New()
	base := memory.NewStore()
	s := domain.Instrumented(base, "memory", m)

	require.NoError(t, s.Set(ctx, "k", "v"))
	_, _, _ = s.Get(ctx, "k")
	base.FailWrites(true)
	require.Error(t, s.Remove(ctx, "k"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageOpsTotal.WithLabelValues("memory", "set", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageOpsTotal.WithLabelValues("memory", "get", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageOpsTotal.WithLabelValues("memory", "remove", "error")))

	assert.Same(t, base, domain.Instrumented(base, "memory", nil))
}
