package storage

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore 行程內的 Store 實作。
// 單一實例部署（未設定 Redis 位址）與測試環境使用；
// 多實例部署必須改用 RedisStore，否則各實例看到的階段與佇列會分歧。
type MemoryStore struct {
	mu      sync.Mutex
	scalars map[string]string
	expiry  map[string]time.Time
	lists   map[string][]string
	sets    map[string]map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scalars: make(map[string]string),
		expiry:  make(map[string]time.Time),
		lists:   make(map[string][]string),
		sets:    make(map[string]map[string]bool),
	}
}

// expired 檢查並清除過期的純量，呼叫者必須持有鎖
func (s *MemoryStore) expired(key string) bool {
	deadline, ok := s.expiry[key]
	if !ok {
		return false
	}
	if time.Now().Before(deadline) {
		return false
	}
	delete(s.scalars, key)
	delete(s.expiry, key)
	return true
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expired(key) {
		return "", nil
	}
	return s.scalars[key], nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scalars[key] = value
	if ttl > 0 {
		s.expiry[key] = time.Now().Add(ttl)
	} else {
		delete(s.expiry, key)
	}
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expired(key) {
		return false, nil
	}
	_, ok := s.scalars[key]
	return ok, nil
}

func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.scalars, key)
		delete(s.expiry, key)
		delete(s.lists, key)
		delete(s.sets, key)
	}
	return nil
}

func (s *MemoryStore) ListPush(ctx context.Context, key string, values ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists[key] = append(s.lists[key], values...)
	return nil
}

func (s *MemoryStore) ListRemove(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[key]
	for i, v := range list {
		if v == value {
			s.lists[key] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) ListDrain(ctx context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[key]
	delete(s.lists, key)
	return list, nil
}

func (s *MemoryStore) SetAdd(ctx context.Context, key, member string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]bool)
		s.sets[key] = set
	}
	if set[member] {
		return 0, nil
	}
	set[member] = true
	return 1, nil
}

func (s *MemoryStore) SetCard(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.sets[key])), nil
}

func (s *MemoryStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := make([]string, 0, len(s.sets[key]))
	for member := range s.sets[key] {
		members = append(members, member)
	}
	return members, nil
}

func (s *MemoryStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	seen := make(map[string]bool)
	for key := range s.scalars {
		if strings.HasPrefix(key, prefix) && !s.expired(key) && !seen[key] {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	for key := range s.lists {
		if strings.HasPrefix(key, prefix) && !seen[key] {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	for key := range s.sets {
		if strings.HasPrefix(key, prefix) && !seen[key] {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	return keys, nil
}
