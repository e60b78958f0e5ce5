package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/awscfgdiagram/orthoroute/pkg/route"
)

var (
	errTransient = errors.New("transient")
	errFatal     = errors.New("fatal")
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if data, hit, err := c.Get(ctx, "k"); err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v, want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	opts := route.DefaultOptions()

	// RoutedKey covers the routing tunables
	rk1 := k.RoutedKey("hash123", opts)
	opts.PortGap = 16
	rk2 := k.RoutedKey("hash123", opts)
	if rk1 == rk2 {
		t.Error("Different routing options should produce different keys")
	}
	if !strings.HasPrefix(rk1, "routed:") {
		t.Errorf("RoutedKey unexpected: %s", rk1)
	}

	// ArtifactKey covers the format
	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png"})
	if ak1 == ak2 {
		t.Error("Different formats should produce different keys")
	}
	if ak1 != k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"}) {
		t.Error("ArtifactKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "server:")

	key := scoped.RoutedKey("h", route.DefaultOptions())
	if key != "server:"+inner.RoutedKey("h", route.DefaultOptions()) {
		t.Errorf("ScopedKeyer RoutedKey should be prefixed: %s", key)
	}
	ak := scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"})
	if !strings.HasPrefix(ak, "server:artifact:") {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", ak)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"})
	if !strings.HasPrefix(key, "prefix:artifact:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Fatalf("Get(key) = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete(missing) = %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "key", []byte("value"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expired entry returned")
	}

	// Zero TTL never expires
	_ = c.Set(ctx, "forever", []byte("x"), 0)
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero-TTL entry missing")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "key", []byte("value"), 0)

	path := c.path("key")
	if err := os.WriteFile(path, []byte("not msgpack \xc1"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry not removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	n, err := c.Clear()
	if err != nil || n != 3 {
		t.Fatalf("Clear() = %d, %v, want 3", n, err)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("%d entries left in %s", len(entries), c.Dir())
	}
}

func TestFileCachePrune(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "stale", []byte("x"), time.Nanosecond)
	_ = c.Set(ctx, "live", []byte("y"), time.Hour)
	_ = c.Set(ctx, "corrupt", []byte("z"), 0)
	if err := os.WriteFile(c.path("corrupt"), []byte{0xc1}, 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)

	n, err := c.Prune()
	if err != nil || n != 2 {
		t.Fatalf("Prune() = %d, %v, want 2", n, err)
	}
	if _, hit, _ := c.Get(ctx, "live"); !hit {
		t.Error("Prune() removed a live entry")
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("ORTHOROUTE_TEST_REDIS")
	if addr == "" {
		t.Skip("ORTHOROUTE_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisOptions{Addr: addr, Prefix: "orthoroute-test:"})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	key := "k-" + Hash([]byte(t.Name()))[:8]
	if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	_ = c.Delete(ctx, key)
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("entry survived Delete")
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	retryDelay = time.Millisecond
	defer func() { retryDelay = time.Second }()

	_, err := NewRedisCache(context.Background(), RedisOptions{Addr: "127.0.0.1:1"})
	if err == nil {
		t.Fatal("NewRedisCache succeeded against a closed port")
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) != nil")
	}
	err := fmt.Errorf("ping: %w", Retryable(errTransient))
	if !IsRetryable(err) {
		t.Error("IsRetryable() = false through a wrapping error")
	}
	if !errors.Is(err, errTransient) {
		t.Error("Retryable hid the original error from errors.Is")
	}
	if IsRetryable(errFatal) {
		t.Error("IsRetryable(plain error) = true")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	retryDelay = time.Millisecond
	defer func() { retryDelay = time.Second }()

	tests := []struct {
		name      string
		failures  int
		fail      error
		wantCalls int
		wantErr   error
	}{
		{"first try", 0, nil, 1, nil},
		{"fatal stops", 5, errFatal, 1, errFatal},
		{"recovers", 2, Retryable(errTransient), 3, nil},
		{"gives up", 5, Retryable(errTransient), 3, errTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return tt.fail
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("err = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryWithBackoff_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(errTransient)
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("RetryWithBackoff() = %v after %d calls, want context.Canceled after 1", err, calls)
	}
}
