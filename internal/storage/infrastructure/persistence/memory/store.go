// Package memory 提供进程内的键值存储实现，支持写入故障注入
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/wyfcoding/storefront/internal/storage/domain"
)

// ErrWriteFailed 故障注入时写入返回的错误
var ErrWriteFailed = errors.New("memory store: write failed")

// Store 基于 map 的存储
type Store struct {
	mu         sync.RWMutex
	data       map[string]string
	failWrites bool
	failReads  bool
}

var _ domain.Store = (*Store)(nil)

// NewStore 创建空存储
func NewStore() *Store {
	return &Store{data: make(map[string]string)}
}

// FailWrites 开启后 Set/Remove 均返回 ErrWriteFailed（模拟配额满、存储不可用）
func (s *Store) FailWrites(fail bool) {
	s.mu.Lock()
	s.failWrites = fail
	s.mu.Unlock()
}

// FailReads 开启后 Get 返回错误
func (s *Store) FailReads(fail bool) {
	s.mu.Lock()
	s.failReads = fail
	s.mu.Unlock()
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failReads {
		return "", false, errors.New("memory store: read failed")
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return ErrWriteFailed
	}
	s.data[key] = value
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return ErrWriteFailed
	}
	delete(s.data, key)
	return nil
}

// Len 当前键数量
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
