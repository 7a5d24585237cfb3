package store

import (
	"context"

	"github.com/brohem/BudgedBuddy/internal/core"
)

// AccountStore is the persistence port for account records. Implementations
// hand out copies a caller may mutate freely; changes become visible only
// through Save.
type AccountStore interface {
	// Load returns the account with the given id, or core.ErrNotFound.
	Load(ctx context.Context, id string) (*core.Account, error)

	// Save persists the account as a full-document replace. An account
	// with Version 0 is created; otherwise the stored version must match
	// the loaded one or Save fails with core.ErrConflict. On success the
	// account's Version is advanced in place. The identity→account index
	// is maintained in the same write.
	Save(ctx context.Context, a *core.Account) error

	// Delete removes the account and its index entries. Deleting an
	// unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// FindAccountByMember resolves an identity through the membership
	// index, returning the owning account id or core.ErrNotFound.
	FindAccountByMember(ctx context.Context, identity string) (string, error)

	// FindAccountByInvite returns the first account, in creation order,
	// holding a pending invite for identity, or core.ErrNotFound.
	FindAccountByInvite(ctx context.Context, identity string) (*core.Account, error)

	Close() error
}
