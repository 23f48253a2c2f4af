package revocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewStore(rdb, "authtest"), mr
}

func TestConsumeRefreshIsSingleUse(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveRefresh(ctx, "jti-1", "user-1", time.Hour); err != nil {
		t.Fatalf("save refresh: %v", err)
	}

	owner, err := store.ConsumeRefresh(ctx, "jti-1")
	if err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if owner != "user-1" {
		t.Fatalf("expected owner user-1, got %q", owner)
	}

	if _, err := store.ConsumeRefresh(ctx, "jti-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second consume: expected ErrNotFound, got %v", err)
	}
}

func TestConsumeRefreshUnknownToken(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.ConsumeRefresh(context.Background(), "never-issued"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRefreshExpiresOnTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveRefresh(ctx, "jti-2", "user-2", time.Minute); err != nil {
		t.Fatalf("save refresh: %v", err)
	}

	mr.FastForward(time.Minute + time.Second)

	if _, err := store.ConsumeRefresh(ctx, "jti-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestDeleteRefreshReportsPresence(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveRefresh(ctx, "jti-3", "user-3", time.Hour); err != nil {
		t.Fatalf("save refresh: %v", err)
	}

	present, err := store.DeleteRefresh(ctx, "jti-3")
	if err != nil || !present {
		t.Fatalf("expected present delete, got present=%v err=%v", present, err)
	}
	present, err = store.DeleteRefresh(ctx, "jti-3")
	if err != nil || present {
		t.Fatalf("expected absent delete, got present=%v err=%v", present, err)
	}
}

func TestBlacklistRemainingLifetime(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Blacklist(ctx, "access-1", 30*time.Second); err != nil {
		t.Fatalf("blacklist: %v", err)
	}

	listed, err := store.IsBlacklisted(ctx, "access-1")
	if err != nil || !listed {
		t.Fatalf("expected blacklisted, got listed=%v err=%v", listed, err)
	}

	mr.FastForward(31 * time.Second)

	listed, err = store.IsBlacklisted(ctx, "access-1")
	if err != nil || listed {
		t.Fatalf("expected entry to expire with the token, got listed=%v err=%v", listed, err)
	}
}

func TestBlacklistSkipsExpiredTokens(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Blacklist(ctx, "access-2", 0); err != nil {
		t.Fatalf("blacklist zero remaining: %v", err)
	}
	if err := store.Blacklist(ctx, "access-3", -time.Minute); err != nil {
		t.Fatalf("blacklist negative remaining: %v", err)
	}

	if n := len(mr.Keys()); n != 0 {
		t.Fatalf("expected no keys written, got %d", n)
	}
}

func TestNamespacesAreDisjoint(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// The same identifier in both namespaces must not collide.
	if err := store.SaveRefresh(ctx, "shared-id", "user-4", time.Hour); err != nil {
		t.Fatalf("save refresh: %v", err)
	}
	if err := store.Blacklist(ctx, "shared-id", time.Hour); err != nil {
		t.Fatalf("blacklist: %v", err)
	}

	owner, err := store.ConsumeRefresh(ctx, "shared-id")
	if err != nil || owner != "user-4" {
		t.Fatalf("refresh consume: owner=%q err=%v", owner, err)
	}
	listed, err := store.IsBlacklisted(ctx, "shared-id")
	if err != nil || !listed {
		t.Fatalf("blacklist survived: listed=%v err=%v", listed, err)
	}
}
