package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rhuss/evalkit/pkg/cache"
)

// setupRedis starts a Redis container and returns a connected Store.
// Tests are skipped if no container runtime is available.
func setupRedis(t *testing.T, prefix string) *Store {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping Redis integration tests")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skipping: could not start Redis container: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("getting endpoint: %v", err)
	}

	store, err := New(ctx, Config{Addr: endpoint, KeyPrefix: prefix})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.defaults()

	if cfg.Addr != "localhost:6379" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.KeyPrefix != "evalkit:fetch:" {
		t.Errorf("KeyPrefix = %q", cfg.KeyPrefix)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
}

func TestRedis_SetGetDelete(t *testing.T) {
	store := setupRedis(t, "test:")
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q", got)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRedis_ClearOnlyOwnPrefix(t *testing.T) {
	store := setupRedis(t, "mine:")
	ctx := context.Background()

	store.Set(ctx, "a", []byte("1"), 0)
	store.Set(ctx, "b", []byte("2"), 0)
	if err := store.client.Set(ctx, "other:c", "3", 0).Err(); err != nil {
		t.Fatal(err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if _, err := store.Get(ctx, "a"); !errors.Is(err, cache.ErrNotFound) {
		t.Error("a should be cleared")
	}
	if v, err := store.client.Get(ctx, "other:c").Result(); err != nil || v != "3" {
		t.Errorf("foreign key should survive Clear, got %q, %v", v, err)
	}
}
