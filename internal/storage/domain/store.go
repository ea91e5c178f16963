// Package domain 定义持久化键值存储的契约
package domain

import (
	"context"
	"strings"
)

// 约定的存储键
const (
	KeyCart  = "cart"
	KeyToken = "token"
	KeyRole  = "role"
)

// Store 持久化键值存储，语义等同浏览器 localStorage
// 不存在的键返回 ok=false 而不是错误；删除不存在的键不报错
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Scoped 返回一个所有键都带 namespace 前缀的存储视图
func Scoped(store Store, namespace string) Store {
	return &scopedStore{inner: store, prefix: strings.TrimSuffix(namespace, ":") + ":"}
}

// SessionNamespace 浏览器会话对应的命名空间
func SessionNamespace(keyPrefix, sessionID string) string {
	return keyPrefix + ":session:" + sessionID
}

type scopedStore struct {
	inner  Store
	prefix string
}

func (s *scopedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scopedStore) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *scopedStore) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, s.prefix+key)
}
