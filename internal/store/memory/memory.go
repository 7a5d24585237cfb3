package memory

import (
	"context"
	"sync"

	"github.com/brohem/BudgedBuddy/internal/core"
)

// Store is an in-memory AccountStore used for tests and the "memory"
// backend. It keeps the same identity index and version discipline as the
// SQLite store.
type Store struct {
	mu       sync.Mutex
	accounts map[string]*core.Account
	byMember map[string]string
	order    []string // account ids in creation order
}

func New() *Store {
	return &Store{
		accounts: make(map[string]*core.Account),
		byMember: make(map[string]string),
	}
}

func (s *Store) Load(_ context.Context, id string) (*core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return a.Clone(), nil
}

func (s *Store) Save(_ context.Context, a *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.accounts[a.ID]
	switch {
	case a.Version == 0:
		if exists {
			return core.ErrConflict
		}
		s.order = append(s.order, a.ID)
	case !exists:
		return core.ErrNotFound
	case stored.Version != a.Version:
		return core.ErrConflict
	}

	a.Version++
	s.accounts[a.ID] = a.Clone()
	s.reindex(a.ID, a.Members)
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return nil
	}
	delete(s.accounts, id)
	s.reindex(id, nil)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) FindAccountByMember(_ context.Context, identity string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byMember[identity]
	if !ok {
		return "", core.ErrNotFound
	}
	return id, nil
}

func (s *Store) FindAccountByInvite(_ context.Context, identity string) (*core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		if a := s.accounts[id]; a != nil && a.HasInvite(identity) {
			return a.Clone(), nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) Close() error { return nil }

// reindex replaces all index entries pointing at accountID with the given
// member list. Callers hold s.mu.
func (s *Store) reindex(accountID string, members []string) {
	for identity, id := range s.byMember {
		if id == accountID {
			delete(s.byMember, identity)
		}
	}
	for _, m := range members {
		s.byMember[m] = accountID
	}
}
