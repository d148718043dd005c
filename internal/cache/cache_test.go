package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestStoreSetGet(t *testing.T) {
	s := NewStore(time.Minute, time.Minute)

	s.Set("a", 42, 0)
	v, ok := s.Get("a")
	if !ok {
		t.Fatal("expected key to be present")
	}
	if v.(int) != 42 {
		t.Fatalf("expected 42, got %v", v)
	}

	s.Delete("a")
	if _, ok := s.Get("a"); ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestStoreExpiry(t *testing.T) {
	s := NewStore(time.Minute, time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	s.now = func() time.Time { return current }

	s.Set("a", "x", 10*time.Second)
	s.Set("b", "y", time.Hour)

	current = base.Add(30 * time.Second)
	if _, ok := s.Get("a"); ok {
		t.Fatal("expected expired entry to be invisible")
	}
	if _, ok := s.Get("b"); !ok {
		t.Fatal("expected live entry to remain")
	}

	// Expired but not yet swept.
	if len(s.entries) != 2 {
		t.Fatalf("expected 2 raw entries before prune, got %d", len(s.entries))
	}
	s.prune()
	if len(s.entries) != 1 {
		t.Fatalf("expected 1 raw entry after prune, got %d", len(s.entries))
	}
	if s.Len() != 1 {
		t.Fatalf("expected Len 1, got %d", s.Len())
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore(time.Minute, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%5)
			for j := 0; j < 100; j++ {
				s.Set(key, j, 0)
				s.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 5 {
		t.Fatalf("expected 5 live keys, got %d", s.Len())
	}
}

func TestRateLimiterWindow(t *testing.T) {
	s := NewStore(time.Minute, time.Minute)
	rl := NewRateLimiter(s, 3, time.Minute)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	rl.now = func() time.Time { return current }
	s.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		if !rl.Allow("device-1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if rl.Allow("device-1") {
		t.Fatal("4th attempt inside the window should be rejected")
	}

	// Another key is unaffected.
	if !rl.Allow("device-2") {
		t.Fatal("different key should be allowed")
	}

	// Rejected attempts do not extend the window: once the first three
	// stamps age out, the device is readmitted.
	current = base.Add(61 * time.Second)
	if !rl.Allow("device-1") {
		t.Fatal("attempt after window expiry should be allowed")
	}
}
