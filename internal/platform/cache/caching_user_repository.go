// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"user_backend/internal/feature/user/domain/entity"
	"user_backend/internal/feature/user/usecase"
)

var _ usecase.UserRepository = (*CachingUserRepository)(nil)

var (
	errEmptyEntry = errors.New("cache entry has no id")
	errStaleRead  = errors.New("user changed while it was read")
)

// CachingUserRepository decorates a UserRepository with a Redis read-through
// cache for single-user lookups. Entries are dropped on update and delete, and a
// per-user version key keeps a read that raced with such a write from caching it.
type CachingUserRepository struct {
	inner     usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// cacheEntry is the value stored under a user key.
type cacheEntry struct {
	ID       string         `json:"id"`
	Document map[string]any `json:"document"`
}

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "users".
// A nil rdb disables caching.
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create inserts through to the underlying repository. New users are never cached yet.
func (c *CachingUserRepository) Create(ctx context.Context, user *entity.User) (string, error) {
	return c.inner.Create(ctx, user)
}

// FindAll is not cached.
func (c *CachingUserRepository) FindAll(ctx context.Context) ([]entity.User, error) {
	return c.inner.FindAll(ctx)
}

// FindByID checks the cache first, then falls back to the underlying repository.
// Misses (ErrUserNotFound) are not cached.
func (c *CachingUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.cacheKey(id)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		if u, err := decodeEntry(b); err == nil {
			return u, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Remember the version before reading the store
	ver, verErr := readVersion(ctx, c.rdb, c.versionKey(id))

	// 3) Fallback to the store
	u, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 4) Store in cache (best effort) unless a write happened in between
	if verErr == nil {
		c.store(ctx, id, ver, u)
	}

	return u, nil
}

// store writes u under its key only while the version key still equals ver.
// The WATCH makes a concurrent update or delete abort the transaction.
func (c *CachingUserRepository) store(ctx context.Context, id string, ver int64, u *entity.User) {
	b, err := json.Marshal(cacheEntry{ID: u.ID, Document: u.Document()})
	if err != nil {
		return
	}
	key, vkey := c.cacheKey(id), c.versionKey(id)

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := readVersion(ctx, tx, vkey)
		if err != nil {
			return err
		}
		if cur != ver {
			return errStaleRead
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, c.ttl)
			return nil
		})
		return err
	}, vkey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleRead), errors.Is(err, redis.TxFailedErr):
		slog.Debug("user cache write skipped after concurrent write", "key", key)
	default:
		slog.Warn("user cache write failed", "key", key, "error", err)
	}
}

// readVersion reads the write counter of a user. A missing counter is 0.
func readVersion(ctx context.Context, r redis.Cmdable, vkey string) (int64, error) {
	v, err := r.Get(ctx, vkey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// UpdateByID updates the underlying repository and drops the cached entry.
func (c *CachingUserRepository) UpdateByID(ctx context.Context, id string, fields map[string]any) (usecase.UpdateResult, error) {
	res, err := c.inner.UpdateByID(ctx, id, fields)
	c.invalidate(ctx, id)
	return res, err
}

// DeleteByID deletes from the underlying repository and drops the cached entry.
func (c *CachingUserRepository) DeleteByID(ctx context.Context, id string) (int64, error) {
	n, err := c.inner.DeleteByID(ctx, id)
	c.invalidate(ctx, id)
	return n, err
}

// invalidate bumps the version of id, so in-flight reads cannot re-cache
// what they saw, then removes the cached entry. Failures are logged, not returned.
func (c *CachingUserRepository) invalidate(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	key, vkey := c.cacheKey(id), c.versionKey(id)

	if err := c.rdb.Incr(ctx, vkey).Err(); err != nil {
		slog.Warn("user cache version bump failed", "key", vkey, "error", err)
	} else if err := c.rdb.Expire(ctx, vkey, c.versionTTL()).Err(); err != nil {
		slog.Warn("user cache version expiry failed", "key", vkey, "error", err)
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		slog.Warn("user cache invalidation failed", "key", key, "error", err)
	}
}

// versionTTL outlives any read that could still be in flight when the counter was bumped.
func (c *CachingUserRepository) versionTTL() time.Duration {
	return 2 * c.ttl
}

// versionKey is the key of the per-user write counter.
func (c *CachingUserRepository) versionKey(id string) string {
	return c.cacheKey(id) + ":v"
}

// cacheKey generates the cache key for a user ID.
func (c *CachingUserRepository) cacheKey(id string) string {
	return c.namespace + ":" + safe(id)
}

// decodeEntry keeps numbers as json.Number so integers survive the round trip.
func decodeEntry(b []byte) (*entity.User, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var e cacheEntry
	if err := dec.Decode(&e); err != nil {
		return nil, err
	}
	if e.ID == "" {
		return nil, errEmptyEntry
	}
	u := entity.FromDocument(e.ID, e.Document)
	return &u, nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
