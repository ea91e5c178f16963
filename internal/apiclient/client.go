// Package apiclient 远端电商 REST API 的类型化客户端
package apiclient

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// TokenSource 返回当前请求应携带的令牌，空串表示不携带
type TokenSource func(ctx context.Context) string

// Config 客户端配置
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

// Client 远端 API 客户端
type Client struct {
	http    *resty.Client
	metrics *metrics.Metrics
}

// New 创建客户端
func New(cfg Config, tokens TokenSource, m *metrics.Metrics) *Client {
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}

	rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if tokens == nil {
			return nil
		}
		if token := tokens(r.Context()); token != "" {
			r.SetAuthToken(token)
		}
		return nil
	})

	return &Client{http: rc, metrics: m}
}

// Resty 暴露底层客户端，测试中用于替换 transport
func (c *Client) Resty() *resty.Client {
	return c.http
}

func (c *Client) do(ctx context.Context, endpoint string, build func(r *resty.Request) (*resty.Response, error)) (*Response, error) {
	out := &Response{}
	req := c.http.R().
		SetContext(ctx).
		SetResult(out).
		SetError(out)

	resp, err := build(req)
	if err != nil {
		c.metrics.ObserveAPIRequest(endpoint, err)
		logger.Error(ctx, "remote api request failed", "endpoint", endpoint, "error", err)
		return nil, err
	}

	if resp.IsError() || out.Status >= http.StatusBadRequest {
		status := out.Status
		if status == 0 {
			status = resp.StatusCode()
		}
		apiErr := &APIError{Status: status, Message: out.Message}
		c.metrics.ObserveAPIRequest(endpoint, apiErr)
		logger.Warn(ctx, "remote api rejected request", "endpoint", endpoint, "status", status, "message", out.Message)
		return nil, apiErr
	}

	c.metrics.ObserveAPIRequest(endpoint, nil)
	return out, nil
}

// StatusOf 远端错误映射为 BFF 的 HTTP 状态：4xx 透传，其余为 502
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}
