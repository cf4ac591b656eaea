package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore implements Store in process memory. It backs the "memory"
// cache provider for single-node deployments and is used by tests. Key
// semantics follow RedisStore: expired entries read as absent, and an
// empty set is indistinguishable from a missing one once its last member
// is removed.
type MemoryStore struct {
	kv *ttlcache.Cache[string, string]

	mu   sync.Mutex
	sets map[string]*memorySet
}

type memorySet struct {
	members   map[string]struct{}
	expiresAt time.Time // zero means no expiry
}

func (s *memorySet) expired(now time.Time) bool {
	return !s.expiresAt.IsZero() && now.After(s.expiresAt)
}

// NewMemoryStore creates an in-process store. The background cleanup
// goroutine is stopped by Close. Touch-on-hit is disabled so a read
// never refreshes an entry's TTL, matching Redis GET.
func NewMemoryStore() *MemoryStore {
	kv := ttlcache.New[string, string](
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go kv.Start()

	return &MemoryStore{
		kv:   kv,
		sets: make(map[string]*memorySet),
	}
}

// Get returns the value at key
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	item := s.kv.Get(key)
	if item == nil {
		return "", false, nil
	}
	return item.Value(), true, nil
}

// Set stores value under key with the given TTL
func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	s.kv.Set(key, value, ttl)
	return nil
}

// Del removes the given keys
func (s *MemoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		s.kv.Delete(key)
		delete(s.sets, key)
	}
	return nil
}

// SAdd adds members to the set at key and refreshes its TTL
func (s *MemoryStore) SAdd(ctx context.Context, key string, ttl time.Duration, members ...string) error {
	if len(members) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	set, ok := s.sets[key]
	if !ok || set.expired(now) {
		set = &memorySet{members: make(map[string]struct{})}
		s.sets[key] = set
	}
	for _, m := range members {
		set.members[m] = struct{}{}
	}
	if ttl > 0 {
		set.expiresAt = now.Add(ttl)
	}
	return nil
}

// SRem removes a member from the set at key
func (s *MemoryStore) SRem(ctx context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[key]
	if !ok || set.expired(time.Now()) {
		delete(s.sets, key)
		return nil
	}

	delete(set.members, member)
	if len(set.members) == 0 {
		delete(s.sets, key)
	}
	return nil
}

// SMembers returns the members of the set at key
func (s *MemoryStore) SMembers(ctx context.Context, key string) ([]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[key]
	if !ok {
		return nil, false, nil
	}
	if set.expired(time.Now()) {
		delete(s.sets, key)
		return nil, false, nil
	}

	members := make([]string, 0, len(set.members))
	for m := range set.members {
		members = append(members, m)
	}
	return members, true, nil
}

// Ping verifies the store is usable
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close stops the cleanup goroutine
func (s *MemoryStore) Close() error {
	s.kv.Stop()
	return nil
}
