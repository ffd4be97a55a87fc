package engine

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// ContextStore keeps one ConversationContext per key with 2-tier storage:
// L1 in-memory + L2 Redis. L1 is fast but lost on restart. L2 survives restarts
// and is shared between replicas.
//
// Writes replace; concurrent writers of the same key race and the last write
// wins. Digests of the same source are interchangeable, so that is accepted.
type ContextStore struct {
	l1              sync.Map      // key → *storeEntry
	rdb             *redis.Client // nil if Redis unavailable
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

type storeEntry struct {
	data      []byte
	expiresAt time.Time
}

// Store hit/miss counters.
var (
	storeHits   atomic.Int64
	storeMisses atomic.Int64
)

// OpenContextStore sets up the 2-tier store. redisURL can be empty to disable L2.
func OpenContextStore(redisURL string, ttl time.Duration, maxEntries int, cleanupInterval time.Duration) *ContextStore {
	var rdb *redis.Client
	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("store: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			client := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := client.Ping(ctx).Err(); err != nil {
				slog.Warn("store: redis unreachable, L2 disabled", slog.Any("error", err))
				client.Close()
			} else {
				rdb = client
				slog.Info("store: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}
	s := NewContextStore(rdb, ttl, maxEntries, cleanupInterval)
	slog.Info("store: initialized", slog.Duration("ttl", ttl), slog.Bool("redis", rdb != nil), slog.Int("max_entries", maxEntries))
	return s
}

// NewContextStore builds a store over an existing Redis client (nil = L1 only)
// and starts the L1 cleanup loop. Call Close to stop it.
func NewContextStore(rdb *redis.Client, ttl time.Duration, maxEntries int, cleanupInterval time.Duration) *ContextStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	s := &ContextStore{
		rdb:             rdb,
		ttl:             ttl,
		maxEntries:      maxEntries,
		cleanupInterval: cleanupInterval,
		stop:            make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// ContextKey builds a deterministic store key from a session and a source.
// An empty session shares the context among all anonymous callers.
func ContextKey(session, sourceRef string) string {
	return CacheKey("ctx", session, sourceRef)
}

// CacheKey builds a deterministic key from parts.
func CacheKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("gi:%x", hash[:12]) // 24-char hex prefix
}

// Get tries L1, then L2. On L2 hit, populates L1.
func (s *ContextStore) Get(ctx context.Context, key string) (ConversationContext, bool) {
	if val, ok := s.l1.Load(key); ok {
		entry := val.(*storeEntry)
		if time.Now().Before(entry.expiresAt) {
			var out ConversationContext
			if json.Unmarshal(entry.data, &out) == nil {
				slog.Debug("store: L1 hit", slog.String("key", key))
				storeHits.Add(1)
				return out, true
			}
		}
		s.l1.Delete(key) // expired or corrupt
	}

	if s.rdb != nil {
		data, err := s.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var out ConversationContext
			if json.Unmarshal(data, &out) == nil {
				slog.Debug("store: L2 hit", slog.String("key", key))
				storeHits.Add(1)
				s.l1.Store(key, &storeEntry{
					data:      data,
					expiresAt: time.Now().Add(s.ttl),
				})
				return out, true
			}
		} else if err != redis.Nil {
			slog.Debug("store: L2 get failed", slog.Any("error", err))
		}
	}

	storeMisses.Add(1)
	return ConversationContext{}, false
}

// Put replaces the value under key in both tiers.
func (s *ContextStore) Put(ctx context.Context, key string, value ConversationContext) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: marshal context: %w", err)
	}

	if _, exists := s.l1.Load(key); !exists {
		s.evictIfNeeded()
	}

	s.l1.Store(key, &storeEntry{
		data:      data,
		expiresAt: time.Now().Add(s.ttl),
	})

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
			slog.Warn("store: L2 set failed", slog.Any("error", err))
		}
	}
	return nil
}

// Delete removes key from both tiers.
func (s *ContextStore) Delete(ctx context.Context, key string) {
	s.l1.Delete(key)
	if s.rdb != nil {
		s.rdb.Del(ctx, key)
	}
}

// Len counts live L1 entries.
func (s *ContextStore) Len() int {
	now := time.Now()
	n := 0
	s.l1.Range(func(_, val any) bool {
		if entry, ok := val.(*storeEntry); ok && now.Before(entry.expiresAt) {
			n++
		}
		return true
	})
	return n
}

// Close stops the cleanup loop and the Redis client.
func (s *ContextStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	if s.rdb != nil {
		return s.rdb.Close()
	}
	return nil
}

// StoreStats returns current store hit/miss counters.
func StoreStats() (hits, misses int64) {
	return storeHits.Load(), storeMisses.Load()
}

// evictIfNeeded removes entries when L1 reaches maxEntries.
// Removes expired entries first, then oldest entries if still over limit.
func (s *ContextStore) evictIfNeeded() {
	if s.maxEntries <= 0 {
		return
	}

	count := 0
	s.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count < s.maxEntries {
		return
	}

	// Phase 1: remove expired
	now := time.Now()
	s.l1.Range(func(key, val any) bool {
		if entry, ok := val.(*storeEntry); ok && now.After(entry.expiresAt) {
			s.l1.Delete(key)
			count--
		}
		return count >= s.maxEntries
	})
	if count < s.maxEntries {
		return
	}

	// Phase 2: remove oldest entries until under limit
	for count >= s.maxEntries {
		var oldestKey any
		oldestAt := time.Now().Add(s.ttl + time.Hour)
		s.l1.Range(func(key, val any) bool {
			// Earlier expiry = older entry (since expiry = createdAt + ttl)
			if entry, ok := val.(*storeEntry); ok && entry.expiresAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = entry.expiresAt
			}
			return true
		})
		if oldestKey == nil {
			break
		}
		s.l1.Delete(oldestKey)
		count--
	}
}

// cleanupLoop periodically removes expired L1 entries.
func (s *ContextStore) cleanupLoop() {
	interval := s.cleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := time.Now()
			s.l1.Range(func(key, val any) bool {
				if entry, ok := val.(*storeEntry); ok && now.After(entry.expiresAt) {
					s.l1.Delete(key)
				}
				return true
			})
		}
	}
}
