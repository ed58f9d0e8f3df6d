package cache

import (
	"context"
	"testing"
	"time"
)

func TestStore_SetGet(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Minute)
	ctx := context.Background()

	s.Set(ctx, "k", "v")
	got, ok := s.Get(ctx, "k")
	if !ok {
		t.Fatalf("expected hit for key k")
	}
	if got.(string) != "v" {
		t.Fatalf("expected v, got=%v", got)
	}
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	s := NewStore(30 * time.Second)
	base := time.Unix(1700000000, 0)
	s.now = func() time.Time { return base }

	ctx := context.Background()
	s.Set(ctx, "k", 1)

	s.now = func() time.Time { return base.Add(29 * time.Second) }
	if _, ok := s.Get(ctx, "k"); !ok {
		t.Fatalf("entry must still be live inside the TTL")
	}

	s.now = func() time.Time { return base.Add(31 * time.Second) }
	if _, ok := s.Get(ctx, "k"); ok {
		t.Fatalf("entry must expire after the TTL")
	}
}

func TestStore_EmptyKeyIsNoop(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Minute)
	ctx := context.Background()

	s.Set(ctx, "", "v")
	if _, ok := s.Get(ctx, ""); ok {
		t.Fatalf("empty key must never hit")
	}
}
