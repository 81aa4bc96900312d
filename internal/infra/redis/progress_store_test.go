package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestProgressStoreTracksClearedQuestions(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewProgressStore(newClient(mr), time.Hour)
	ctx := context.Background()

	unlocked, err := store.IsUnlocked(ctx, "abc123def456g", "Team Rocket", 1)
	if err != nil || !unlocked {
		t.Fatalf("expected first question always unlocked, got %v %v", unlocked, err)
	}
	unlocked, err = store.IsUnlocked(ctx, "abc123def456g", "Team Rocket", 2)
	if err != nil {
		t.Fatalf("is unlocked: %v", err)
	}
	if unlocked {
		t.Fatalf("expected second question locked before the first is cleared")
	}

	if err := store.MarkCleared(ctx, "abc123def456g", "Team Rocket", 1); err != nil {
		t.Fatalf("mark cleared: %v", err)
	}
	if !mr.Exists("quiz:abc123def456g:progress:Team Rocket") {
		t.Fatalf("expected progress hash in redis")
	}
	unlocked, err = store.IsUnlocked(ctx, "abc123def456g", "Team Rocket", 2)
	if err != nil || !unlocked {
		t.Fatalf("expected second question unlocked, got %v %v", unlocked, err)
	}
	// Another team's progress is independent.
	if unlocked, _ := store.IsUnlocked(ctx, "abc123def456g", "Other", 2); unlocked {
		t.Fatalf("expected other team still locked")
	}
}

func TestProgressStoreExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewProgressStore(newClient(mr), time.Minute)
	ctx := context.Background()

	if err := store.MarkCleared(ctx, "abc123def456g", "Team Rocket", 1); err != nil {
		t.Fatalf("mark cleared: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	unlocked, err := store.IsUnlocked(ctx, "abc123def456g", "Team Rocket", 2)
	if err != nil {
		t.Fatalf("is unlocked: %v", err)
	}
	if unlocked {
		t.Fatalf("expected progress gone after TTL")
	}
}
