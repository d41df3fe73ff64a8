package cache_test

import (
	"testing"
	"time"

	"github.com/geocoder89/userhub/internal/cache"
)

func TestCacheSetGet(t *testing.T) {
	c := cache.New(time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("empty cache should miss")
	}

	c.Set("k", "v")

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != "v" {
		t.Fatalf("got %v, want v", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := cache.New(time.Millisecond)

	c.Set("k", "v")
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry should miss")
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := cache.New(time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")

	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted entry should miss")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("other entries should survive a delete")
	}

	c.Clear()

	if _, ok := c.Get("b"); ok {
		t.Fatal("cleared cache should miss everything")
	}
}
