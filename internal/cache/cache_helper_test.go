package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheHelper(client, "test:"), mr
}

func TestCacheHelperGetSet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := helper.Set(ctx, "key", payload{Name: "alice", Count: 3}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got payload
	if err := helper.Get(ctx, "key", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "alice" || got.Count != 3 {
		t.Errorf("Get() = %+v", got)
	}

	var missing payload
	if err := helper.Get(ctx, "absent", &missing); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get(absent) error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperDelete(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	helper.Set(ctx, "a", "1", time.Minute)
	helper.Set(ctx, "b", "2", time.Minute)

	if err := helper.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	exists, err := helper.Exists(ctx, "a")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("key still exists after delete")
	}
}

func TestIncrementWithTTL(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := helper.IncrementWithTTL(ctx, "counter", time.Minute)
		if err != nil {
			t.Fatalf("IncrementWithTTL() error = %v", err)
		}
		if got != want {
			t.Errorf("IncrementWithTTL() = %d, want %d", got, want)
		}
	}

	if mr.TTL("test:counter") <= 0 {
		t.Error("counter has no TTL")
	}
}

func TestCacheOrExecute(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return map[string]string{"value": "fresh"}, nil
	}

	var first map[string]string
	if err := helper.CacheOrExecute(ctx, "aside", &first, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute() error = %v", err)
	}

	var second map[string]string
	if err := helper.CacheOrExecute(ctx, "aside", &second, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute() error = %v", err)
	}

	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
	if second["value"] != "fresh" {
		t.Errorf("cached value = %q", second["value"])
	}
}

func TestNilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Errorf("Set() with nil client error = %v", err)
	}
	var dest string
	if err := helper.Get(ctx, "k", &dest); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Get() with nil client error = %v, want ErrCacheNotAvailable", err)
	}
	if err := helper.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() with nil client error = %v", err)
	}
}
