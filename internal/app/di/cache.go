package di

import (
	"time"

	"github.com/redis/go-redis/v9"

	"user_backend/internal/feature/user/usecase"
	"user_backend/internal/platform/cache"
)

// WithCache wraps repo with the Redis read-through cache.
// If Redis is not available (rdb is nil), repo is returned unchanged.
func WithCache(repo usecase.UserRepository, rdb *redis.Client, ttl time.Duration) usecase.UserRepository {
	if rdb == nil {
		return repo
	}
	return cache.NewCachingUserRepository(rdb, ttl, repo, "users")
}
