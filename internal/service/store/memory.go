package store

import (
	"context"
	"sync"
	"time"

	"github.com/motumbon/contratos/internal/model"
)

// SessionStore 会话数据存储：每个会话只保存最近一次上传的完整数据集
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*model.RecordSet, bool, error)
	Put(ctx context.Context, sessionID string, rs *model.RecordSet) error
	Delete(ctx context.Context, sessionID string) error
}

type sessionEntry struct {
	set       *model.RecordSet
	expiresAt time.Time
}

// MemoryStore 内存会话存储。单次读写是原子的；同一会话并发上传与查询时后写者生效
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]sessionEntry
	ttl   time.Duration
	now   func() time.Time
}

var _ SessionStore = (*MemoryStore)(nil)

// NewMemoryStore 创建内存存储；ttl<=0 表示不过期
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: make(map[string]sessionEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get 读取会话数据
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*model.RecordSet, bool, error) {
	s.mu.RLock()
	e, ok := s.items[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if s.expired(e, s.now()) {
		s.mu.Lock()
		if cur, still := s.items[sessionID]; still && s.expired(cur, s.now()) {
			delete(s.items, sessionID)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return e.set, true, nil
}

// Put 整体替换会话数据
func (s *MemoryStore) Put(_ context.Context, sessionID string, rs *model.RecordSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	e := sessionEntry{set: rs}
	if s.ttl > 0 {
		e.expiresAt = now.Add(s.ttl)
	}
	s.items[sessionID] = e
	return nil
}

// Delete 删除会话数据
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, sessionID)
	return nil
}

// Count 未过期会话数量
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	n := 0
	for _, e := range s.items {
		if !s.expired(e, now) {
			n++
		}
	}
	return n
}

// Clear 清空所有会话
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]sessionEntry)
}

func (s *MemoryStore) expired(e sessionEntry, now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

func (s *MemoryStore) purgeExpiredLocked(now time.Time) {
	for k, e := range s.items {
		if s.expired(e, now) {
			delete(s.items, k)
		}
	}
}
