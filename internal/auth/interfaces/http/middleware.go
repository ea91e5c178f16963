package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/auth/application"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// Resolver 取得当前请求会话的守卫
type Resolver func(c *gin.Context) *application.Guard

// Predicate 守卫判定
type Predicate func(g *application.Guard, ctx context.Context) bool

// Gatekeeper 导航守卫中间件工厂
type Gatekeeper struct {
	resolve   Resolver
	loginPath string
	metrics   *metrics.Metrics
}

// NewGatekeeper 创建守卫中间件工厂
func NewGatekeeper(resolve Resolver, loginPath string, m *metrics.Metrics) *Gatekeeper {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Gatekeeper{resolve: resolve, loginPath: loginPath, metrics: m}
}

// RequireAuth 需要已登录
func (k *Gatekeeper) RequireAuth() gin.HandlerFunc {
	return k.Gate("auth", (*application.Guard).IsAuthenticated)
}

// RequireAdmin 需要管理员
func (k *Gatekeeper) RequireAdmin() gin.HandlerFunc {
	return k.Gate("admin", (*application.Guard).IsAdmin)
}

// Gate 判定通过则放行，否则带上原始地址跳转登录页；/api 下的请求返回 401
func (k *Gatekeeper) Gate(name string, allow Predicate) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if g := k.resolve(c); g != nil && allow(g, ctx) {
			c.Next()
			return
		}

		k.metrics.ObserveGuardDenial(name)
		target := k.LoginURL(c.Request.URL.RequestURI())
		logger.Info(ctx, "navigation denied", "guard", name, "path", c.Request.URL.Path)

		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "login": target})
			return
		}
		c.Redirect(http.StatusSeeOther, target)
		c.Abort()
	}
}

// LoginURL 登录页地址，from 参数记录原始请求
func (k *Gatekeeper) LoginURL(from string) string {
	return k.loginPath + "?from=" + url.QueryEscape(from)
}
