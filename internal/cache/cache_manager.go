package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// CacheManager groups the per-domain cache helpers. All helpers share the
// same client; a nil client yields a fully degraded manager.
type CacheManager struct {
	User      *CacheHelper
	Exam      *CacheHelper
	Stats     *CacheHelper
	Exists    *CacheHelper
	RateLimit *CacheHelper
}

func NewCacheManager(client *redis.Client) *CacheManager {
	if client == nil {
		return &CacheManager{
			User:      NewCacheHelper(nil, ""),
			Exam:      NewCacheHelper(nil, ""),
			Stats:     NewCacheHelper(nil, ""),
			Exists:    NewCacheHelper(nil, ""),
			RateLimit: NewCacheHelper(nil, ""),
		}
	}

	return &CacheManager{
		User:      NewCacheHelper(client, UserCacheConfig.Prefix),
		Exam:      NewCacheHelper(client, ExamCacheConfig.Prefix),
		Stats:     NewCacheHelper(client, StatsCacheConfig.Prefix),
		Exists:    NewCacheHelper(client, ExistsCacheConfig.Prefix),
		RateLimit: NewCacheHelper(client, "ratelimit:"),
	}
}

// HealthCheck verifies cache connectivity.
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.User.client == nil {
		return ErrCacheNotAvailable
	}

	if _, err := cm.User.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}

// InvalidateUser drops every cached projection of a user.
func (cm *CacheManager) InvalidateUser(ctx context.Context, userID string) {
	SafeDelete(ctx, cm.User, "id:"+userID)
	SafeInvalidatePattern(ctx, cm.User, "list:*")
	SafeInvalidatePattern(ctx, cm.Exists, "user:"+userID+"*")
}

// InvalidateExam drops every cached projection of an exam, including its
// statistics.
func (cm *CacheManager) InvalidateExam(ctx context.Context, examID string) {
	SafeDelete(ctx, cm.Exam, "id:"+examID)
	SafeInvalidatePattern(ctx, cm.Exam, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, "exam:"+examID+"*")
}
