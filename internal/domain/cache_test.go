package domain

import "testing"

func TestClockLRUEvictsOldest(t *testing.T) {
	cache := NewClockLRU(2)

	cache.Set(1, Clock{Hour: 1})
	cache.Set(2, Clock{Hour: 2})
	cache.Set(3, Clock{Hour: 3})

	if cache.Len() != 2 {
		t.Errorf("expected len 2, got %d", cache.Len())
	}
	if _, ok := cache.Get(1); ok {
		t.Error("expected oldest entry to be evicted")
	}
	if c, ok := cache.Get(3); !ok || c.Hour != 3 {
		t.Error("expected newest entry to survive")
	}
}

func TestClockLRUGetRefreshesRecency(t *testing.T) {
	cache := NewClockLRU(2)

	cache.Set(1, Clock{Hour: 1})
	cache.Set(2, Clock{Hour: 2})

	// touching 1 makes 2 the eviction candidate
	cache.Get(1)
	cache.Set(3, Clock{Hour: 3})

	if _, ok := cache.Get(1); !ok {
		t.Error("recently read entry should survive")
	}
	if _, ok := cache.Get(2); ok {
		t.Error("least recently used entry should be evicted")
	}
}

func TestClockLRUOverwrite(t *testing.T) {
	cache := NewClockLRU(2)

	cache.Set(1, Clock{Hour: 1})
	cache.Set(1, Clock{Hour: 5})

	if cache.Len() != 1 {
		t.Errorf("expected len 1 after overwrite, got %d", cache.Len())
	}
	if c, _ := cache.Get(1); c.Hour != 5 {
		t.Errorf("expected overwritten value, got hour %d", c.Hour)
	}
}

func TestClockLRUInvalidCapacityPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero capacity")
		}
	}()
	NewClockLRU(0)
}
