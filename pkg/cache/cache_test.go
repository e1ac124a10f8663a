package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}

	if err := c.Set(ctx, "http:rubygems::rails", []byte(`[{"number":"7.1.0"}]`), time.Hour); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	data, hit, err := c.Get(ctx, "http:rubygems::rails")
	if err != nil || !hit {
		t.Fatalf("Get() = %v, %v; want hit", hit, err)
	}
	if string(data) != `[{"number":"7.1.0"}]` {
		t.Errorf("Get() data = %s", data)
	}
}

func TestFileCache_Miss(t *testing.T) {
	c, _ := NewFileCache(t.TempDir())
	_, hit, err := c.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Error("Get() returned hit for missing key")
	}
}

func TestFileCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "key", []byte("value"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if hit {
		t.Error("Get() returned hit for expired key")
	}
	if _, err := os.Stat(c.path("key")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCache_NoExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "key", []byte("forever"), 0)

	if _, hit, _ := c.Get(ctx, "key"); !hit {
		t.Error("entry with zero TTL should not expire")
	}
}

func TestFileCache_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("key")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, hit, err := c.Get(ctx, "key")
	if err != nil || hit {
		t.Errorf("Get() = %v, %v; want miss without error", hit, err)
	}
}

func TestFileCache_Delete(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "key", []byte("value"), time.Hour)

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("Get() after Delete() should miss")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() of missing key error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	if got := k.HTTPKey("rubygems", "info/rails"); got != "http:rubygems:info/rails" {
		t.Errorf("HTTPKey() = %s", got)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "mirror:gems.internal:")
	if got := scoped.HTTPKey("rubygems", "rack"); got != "mirror:gems.internal:http:rubygems:rack" {
		t.Errorf("ScopedKeyer HTTPKey() = %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if got := scoped.HTTPKey("test", "key"); got != "prefix:http:test:key" {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("GEMINDEX_REDIS_ADDR")
	if addr == "" {
		t.Skip("GEMINDEX_REDIS_ADDR not set")
	}
	ctx := context.Background()

	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr, Prefix: "gemindex-test:"})
	if err != nil {
		t.Fatalf("NewRedisCache() error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "absent"); err != nil || hit {
		t.Fatalf("Get(absent) = %v, %v; want miss", hit, err)
	}
	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Fatalf("Get() = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
}
