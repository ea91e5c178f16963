// Package application 访问守卫
package application

import (
	"context"
	"errors"

	"github.com/wyfcoding/storefront/internal/auth/domain"
	storage "github.com/wyfcoding/storefront/internal/storage/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// Guard 每次判定都重新读取存储，不缓存
type Guard struct {
	store storage.Store
}

// NewGuard 基于会话存储创建守卫
func NewGuard(store storage.Store) *Guard {
	return &Guard{store: store}
}

// IsAuthenticated token 存在且非空
func (g *Guard) IsAuthenticated(ctx context.Context) bool {
	return domain.Authenticated(g.read(ctx, domain.KeyToken))
}

// IsAdmin role 恰好为 ADMIN
func (g *Guard) IsAdmin(ctx context.Context) bool {
	return domain.Admin(g.read(ctx, domain.KeyRole))
}

// Token 当前令牌，没有时为空串
func (g *Guard) Token(ctx context.Context) string {
	return g.read(ctx, domain.KeyToken)
}

// Logout 删除 token 与 role，幂等
func (g *Guard) Logout(ctx context.Context) {
	for _, key := range []string{domain.KeyToken, domain.KeyRole} {
		if err := g.store.Remove(ctx, key); err != nil {
			logger.Warn(ctx, "credential not removed", "key", key, "error", err)
		}
	}
}

// SaveCredential 登录成功后依次写入 token 与 role
func (g *Guard) SaveCredential(ctx context.Context, cred domain.Credential) error {
	if cred.Token == "" {
		return errors.New("empty token")
	}
	if err := g.store.Set(ctx, domain.KeyToken, cred.Token); err != nil {
		return err
	}
	if cred.Role == "" {
		return g.store.Remove(ctx, domain.KeyRole)
	}
	return g.store.Set(ctx, domain.KeyRole, cred.Role)
}

// 读取失败视为不存在
func (g *Guard) read(ctx context.Context, key string) string {
	v, ok, err := g.store.Get(ctx, key)
	if err != nil {
		logger.Warn(ctx, "credential unreadable", "key", key, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return v
}
