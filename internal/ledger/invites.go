package ledger

import (
	"context"
	"fmt"

	"github.com/brohem/BudgedBuddy/internal/core"
	applog "github.com/brohem/BudgedBuddy/internal/log"
	"github.com/brohem/BudgedBuddy/internal/store"
)

// Invitations manages the pending-invite lifecycle that turns a personal
// account into a shared one.
type Invitations struct {
	store store.AccountStore
	log   *applog.Logger
}

func NewInvitations(st store.AccountStore, logger *applog.Logger) *Invitations {
	return &Invitations{store: st, log: logger.WithComponent(applog.ComponentInvites)}
}

// Invite records a pending invite for invitee on acct. It reports added =
// false with a nil error when invitee is already a member (an advisory
// notice, not a failure). Inviting the same identity twice keeps a single
// pending entry.
func (m *Invitations) Invite(acct *core.Account, invitee string) (added bool, err error) {
	if !core.ValidIdentity(invitee) {
		return false, core.ErrInvalidArgument
	}
	if acct.IsMember(invitee) {
		return false, nil
	}
	acct.AddInvite(invitee)
	return true, nil
}

// Accept joins sender to the first account, in creation order, holding a
// pending invite for them. The sender's prior account (prior, the one this
// turn resolved to) gives up the membership first so an identity never
// belongs to two accounts; a prior account left memberless is deleted.
// Returns the joined account, or core.ErrNotFound when no invite exists.
func (m *Invitations) Accept(ctx context.Context, sender string, prior *core.Account) (*core.Account, error) {
	target, err := m.store.FindAccountByInvite(ctx, sender)
	if err != nil {
		return nil, err
	}

	if prior != nil && prior.ID == target.ID {
		// Stale invite on the sender's own account; just drop it there.
		prior.RemoveInvite(sender)
		return prior, nil
	}

	if prior != nil && prior.IsMember(sender) {
		prior.RemoveMember(sender)
		if len(prior.Members) == 0 {
			// Never-persisted seeds (Version 0) have nothing to delete.
			if prior.Version > 0 {
				if err := m.store.Delete(ctx, prior.ID); err != nil {
					return nil, fmt.Errorf("remove prior account %s: %w", prior.ID, err)
				}
				m.log.InfoContext(ctx, "Removed prior personal account",
					applog.FieldAccountID, prior.ID, applog.FieldSender, sender)
			}
		} else {
			if err := m.store.Save(ctx, prior); err != nil {
				return nil, fmt.Errorf("update prior account %s: %w", prior.ID, err)
			}
		}
	}

	target.RemoveInvite(sender)
	target.AddMember(sender)
	if err := m.store.Save(ctx, target); err != nil {
		return nil, fmt.Errorf("join account %s: %w", target.ID, err)
	}

	m.log.InfoContext(ctx, "Invite accepted",
		applog.FieldAccountID, target.ID, applog.FieldSender, sender)
	return target, nil
}
