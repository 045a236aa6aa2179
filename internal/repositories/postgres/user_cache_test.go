package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/itechs-edu/exam-service/internal/cache"
	"github.com/itechs-edu/exam-service/internal/models"
)

// A cache hit must hand back the same row the database would, including the
// credential columns the model hides from JSON.
func TestUserCacheEntryKeepsCredentials(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	helper := cache.NewCacheHelper(client, "user:")
	ctx := context.Background()

	code := "123456"
	expiry := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	source := &models.User{
		ID:        "u1",
		Username:  "alice@teacher.com",
		Email:     "alice@example.com",
		Password:  "$2a$12$realbcrypthash",
		Role:      models.RoleTeacher,
		OTPCode:   &code,
		OTPExpiry: &expiry,
	}

	fetches := 0
	fetch := func() (interface{}, error) {
		fetches++
		return newUserCacheEntry(source), nil
	}

	// First call fills the cache, second is served from it.
	for i := 0; i < 2; i++ {
		var entry userCacheEntry
		if err := helper.CacheOrExecute(ctx, "id:u1", &entry, time.Minute, fetch); err != nil {
			t.Fatalf("CacheOrExecute() error = %v", err)
		}

		user := entry.toUser()
		if user.Password != source.Password {
			t.Errorf("pass %d: Password = %q, want %q", i, user.Password, source.Password)
		}
		if user.OTPCode == nil || *user.OTPCode != code {
			t.Errorf("pass %d: OTPCode lost", i)
		}
		if user.OTPExpiry == nil || !user.OTPExpiry.Equal(expiry) {
			t.Errorf("pass %d: OTPExpiry lost", i)
		}
		if user.Username != source.Username || user.Role != source.Role {
			t.Errorf("pass %d: account fields lost", i)
		}
	}

	if fetches != 1 {
		t.Errorf("fetches = %d, want 1 (second read should hit the cache)", fetches)
	}
}
