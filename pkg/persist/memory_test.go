package persist_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/weft-ui/weft/pkg/persist"
)

func TestMemoryStoreSaveLoad(t *testing.T) {
	store := persist.NewMemoryStore()
	ctx := context.Background()

	snap := persist.Snapshot{
		SessionID:  "abc123",
		CreatedAt:  time.Now().Add(-time.Minute),
		DetachedAt: time.Now(),
		Data:       map[string]any{"cart_total": 42.5},
	}

	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx, "abc123")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.SessionID != "abc123" {
		t.Errorf("SessionID = %q, want %q", got.SessionID, "abc123")
	}
	if got.Data["cart_total"] != 42.5 {
		t.Errorf("Data[cart_total] = %v, want 42.5", got.Data["cart_total"])
	}
}

func TestMemoryStoreLoadMissing(t *testing.T) {
	store := persist.NewMemoryStore()

	_, err := store.Load(context.Background(), "nope")
	if !errors.Is(err, persist.ErrNotFound) {
		t.Fatalf("Load missing = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreSaveReplaces(t *testing.T) {
	store := persist.NewMemoryStore()
	ctx := context.Background()

	store.Save(ctx, persist.Snapshot{SessionID: "s", Data: map[string]any{"v": 1}})
	store.Save(ctx, persist.Snapshot{SessionID: "s", Data: map[string]any{"v": 2}})

	got, err := store.Load(ctx, "s")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Data["v"] != 2 {
		t.Errorf("Data[v] = %v, want 2", got.Data["v"])
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := persist.NewMemoryStore()
	ctx := context.Background()

	store.Save(ctx, persist.Snapshot{SessionID: "s"})
	if err := store.Delete(ctx, "s"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(ctx, "s"); !errors.Is(err, persist.ErrNotFound) {
		t.Fatalf("Load after delete = %v, want ErrNotFound", err)
	}

	// Deleting a missing snapshot is not an error.
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
}
