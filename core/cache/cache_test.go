package cache

import (
	"testing"
	"time"
)

func TestGetInstance(t *testing.T) {
	inst := GetInstance()
	if inst == nil {
		t.Fatal("GetInstance returned nil")
	}
	if GetInstance() != inst {
		t.Error("GetInstance should return same instance")
	}
}

func TestSet_Get(t *testing.T) {
	c := NewCache()
	c.Set("k", 250.0, 0, nil)
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Get: want true")
	}
	if got.(float64) != 250 {
		t.Errorf("Get = %v, want 250", got)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get missing key: want false")
	}
}

func TestSet_Expires(t *testing.T) {
	c := NewCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	c.Set("ttl", "v", time.Minute, nil)
	if _, ok := c.Get("ttl"); !ok {
		t.Fatal("fresh entry should be present")
	}
	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("ttl"); ok {
		t.Error("expired entry should be gone")
	}
}

func TestGetOrDefault(t *testing.T) {
	c := NewCache()
	if got := c.GetOrDefault("x", "def"); got != "def" {
		t.Errorf("GetOrDefault missing = %v, want def", got)
	}
	c.Set("x", "stored", 0, nil)
	if got := c.GetOrDefault("x", "def"); got != "stored" {
		t.Errorf("GetOrDefault found = %v, want stored", got)
	}
}

func TestDeleteByTag(t *testing.T) {
	c := NewCache()
	c.Set(Key("user-1", "B001"), 1.0, 0, []string{"user-1"})
	c.Set(Key("user-1", "B002"), 2.0, 0, []string{"user-1"})
	c.Set(Key("user-2", "B001"), 3.0, 0, []string{"user-2"})

	if keys := c.GetKeysByTag("user-1"); len(keys) != 2 {
		t.Fatalf("GetKeysByTag = %v, want 2 keys", keys)
	}
	c.DeleteByTag("user-1")
	if _, ok := c.Get(Key("user-1", "B001")); ok {
		t.Error("user-1 entries should be gone")
	}
	if _, ok := c.Get(Key("user-2", "B001")); !ok {
		t.Error("user-2 entry should survive")
	}
}

func TestKey(t *testing.T) {
	if got := Key("a", 1, "b"); got != "a|1|b" {
		t.Errorf("Key = %q, want a|1|b", got)
	}
}
