package session

import (
	"testing"
	"time"

	"github.com/nephroline/aftercare/internal/domain"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if got := store.Get("missing"); got != nil {
		t.Fatalf("expected nil for unknown session, got %v", got)
	}

	s := domain.NewSession("sess-1")
	store.Put(s)

	got := store.Get("sess-1")
	if got == nil || got.ID != "sess-1" {
		t.Fatalf("expected stored session back, got %v", got)
	}
	if got.Stage != domain.StageInitial {
		t.Errorf("new session stage = %q, want %q", got.Stage, domain.StageInitial)
	}

	store.Delete("sess-1")
	if store.Get("sess-1") != nil {
		t.Error("expected session gone after Delete")
	}
}

func TestEvictExpired(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()

	fresh := domain.NewSession("fresh")
	store.Put(fresh)

	stale := domain.NewSession("stale")
	stale.UpdatedAt = time.Now().Add(-2 * time.Hour)
	store.Put(stale)

	if n := store.evictExpired(time.Hour); n != 1 {
		t.Fatalf("evicted %d sessions, want 1", n)
	}
	if store.Get("stale") != nil {
		t.Error("stale session should be evicted")
	}
	if store.Get("fresh") == nil {
		t.Error("fresh session should survive eviction")
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
}
