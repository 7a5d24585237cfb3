package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/brohem/BudgedBuddy/internal/cache"
	"github.com/brohem/BudgedBuddy/internal/core"
	applog "github.com/brohem/BudgedBuddy/internal/log"
	"github.com/brohem/BudgedBuddy/internal/store"
)

const (
	resolverCacheSize = 1024
	resolverCacheTTL  = 5 * time.Minute
)

// Resolver maps a raw sender identity to its canonical account id through
// the store's membership index, with a small cache in front. An unknown
// identity resolves to itself: the id of the personal account the turn will
// materialize.
type Resolver struct {
	store store.AccountStore
	cache *cache.LRUCache[string]
	log   *applog.Logger
}

func NewResolver(st store.AccountStore, logger *applog.Logger) *Resolver {
	return &Resolver{
		store: st,
		cache: cache.NewLRUCache[string](resolverCacheSize, resolverCacheTTL),
		log:   logger.WithComponent(applog.ComponentCache),
	}
}

func (r *Resolver) Resolve(ctx context.Context, sender string) (string, error) {
	if id, ok := r.cache.Get(sender); ok {
		return id, nil
	}

	id, err := r.store.FindAccountByMember(ctx, sender)
	if errors.Is(err, core.ErrNotFound) {
		// Not yet materialized; don't cache, membership may appear soon.
		return sender, nil
	}
	if err != nil {
		return "", err
	}

	r.cache.Set(sender, id)
	return id, nil
}

// Invalidate drops cached resolutions after a membership change.
func (r *Resolver) Invalidate(identities ...string) {
	for _, identity := range identities {
		r.cache.Delete(identity)
	}
}
