package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/brohem/BudgedBuddy/internal/core"
	applog "github.com/brohem/BudgedBuddy/internal/log"
	"github.com/brohem/BudgedBuddy/internal/store/memory"
)

func TestResolveUnknownSender(t *testing.T) {
	st := memory.New()
	r := NewResolver(st, applog.New(applog.DefaultConfig()))

	id, err := r.Resolve(context.Background(), "+1000")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != "+1000" {
		t.Fatalf("unknown sender must resolve to itself, got %s", id)
	}
}

func TestResolveMemberAndCache(t *testing.T) {
	st := memory.New()
	r := NewResolver(st, applog.New(applog.DefaultConfig()))
	ctx := context.Background()

	a := core.NewAccount("+1000", "+1000", time.Now())
	a.AddMember("+2000")
	if err := st.Save(ctx, a); err != nil {
		t.Fatalf("save: %v", err)
	}

	id, err := r.Resolve(ctx, "+2000")
	if err != nil || id != "+1000" {
		t.Fatalf("resolve: id=%s err=%v", id, err)
	}

	// A second lookup is served from cache even after the store changes.
	a.RemoveMember("+2000")
	if err := st.Save(ctx, a); err != nil {
		t.Fatalf("save: %v", err)
	}
	if id, _ := r.Resolve(ctx, "+2000"); id != "+1000" {
		t.Fatalf("expected cached resolution, got %s", id)
	}

	r.Invalidate("+2000")
	if id, _ := r.Resolve(ctx, "+2000"); id != "+2000" {
		t.Fatalf("post-invalidation resolve = %s, want +2000", id)
	}
}

func TestResolveDoesNotCacheMisses(t *testing.T) {
	st := memory.New()
	r := NewResolver(st, applog.New(applog.DefaultConfig()))
	ctx := context.Background()

	if id, _ := r.Resolve(ctx, "+2000"); id != "+2000" {
		t.Fatalf("miss = %s", id)
	}

	a := core.NewAccount("+1000", "+1000", time.Now())
	a.AddMember("+2000")
	if err := st.Save(ctx, a); err != nil {
		t.Fatalf("save: %v", err)
	}

	if id, _ := r.Resolve(ctx, "+2000"); id != "+1000" {
		t.Fatalf("membership must be visible immediately, got %s", id)
	}
}
