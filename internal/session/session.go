// Package session 将浏览器会话 cookie 绑定到按会话隔离的持久化存储
package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	storage "github.com/wyfcoding/storefront/internal/storage/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
)

const (
	idKey    = "session_id"
	storeKey = "session_store"
)

type ctxKey struct{}

type binding struct {
	id    string
	store storage.Store
}

// Config 会话配置
type Config struct {
	CookieName string
	MaxAge     int
	Secure     bool
	KeyPrefix  string
}

// Middleware 读取或签发会话 cookie，并把会话存储放入上下文
func Middleware(store storage.Store, cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.CookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.CookieName, id, cfg.MaxAge, "/", "", cfg.Secure, true)
		}

		scoped := storage.Scoped(store, storage.SessionNamespace(cfg.KeyPrefix, id))
		c.Set(idKey, id)
		c.Set(storeKey, scoped)

		ctx := context.WithValue(c.Request.Context(), ctxKey{}, binding{id: id, store: scoped})
		ctx = logger.AppendCtx(ctx, slog.String("session_id", id))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// ID 当前请求的会话 id
func ID(c *gin.Context) string {
	return c.GetString(idKey)
}

// Store 当前请求的会话存储，未经过中间件时为 nil
func Store(c *gin.Context) storage.Store {
	if v, ok := c.Get(storeKey); ok {
		if s, ok := v.(storage.Store); ok {
			return s
		}
	}
	return nil
}

// FromContext 从请求上下文取会话 id 与存储
func FromContext(ctx context.Context) (string, storage.Store, bool) {
	b, ok := ctx.Value(ctxKey{}).(binding)
	if !ok {
		return "", nil, false
	}
	return b.id, b.store, true
}
