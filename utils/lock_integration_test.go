package utils

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"bitbucket.org/rodmar/rodmar_backend/config"
	"github.com/redis/go-redis/v9"
)

func setupRedis(t *testing.T) {
	t.Helper()
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDRESS"))
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" || addr == "" {
		t.Skip("set INTEGRATION_TESTS=1 and REDIS_ADDRESS to run redis integration tests")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}
	previous := config.GetRedisDB()
	config.SetRedisDB(client)
	t.Cleanup(func() {
		config.SetRedisDB(previous)
		_ = client.Close()
	})
}

func TestWithLock_Integration_ReleasesAfterCancel(t *testing.T) {
	setupRedis(t)
	key := "release-" + time.Now().Format("150405.000000")

	ctx, cancel := context.WithCancel(context.Background())
	err := WithLock(ctx, "test", key, "utils/helper_test.go", "ReleasesAfterCancel", func() error {
		cancel()
		return nil
	})
	if err != nil {
		t.Fatalf("WithLock unexpected error: %v", err)
	}

	err = WithLock(context.Background(), "test", key, "utils/helper_test.go", "ReleasesAfterCancel", func() error { return nil })
	if err != nil {
		t.Fatalf("lock was not released after the caller cancelled, got %v", err)
	}
}

func TestWithLock_Integration_Conflict(t *testing.T) {
	setupRedis(t)
	key := "conflict-" + time.Now().Format("150405.000000")
	ctx := context.Background()

	err := WithLock(ctx, "test", key, "utils/helper_test.go", "Conflict", func() error {
		return WithLock(ctx, "test", key, "utils/helper_test.go", "Conflict", func() error { return nil })
	})
	if !errors.Is(err, ErrorLockNotObtained) {
		t.Fatalf("nested WithLock expected ErrorLockNotObtained, got %v", err)
	}
}
