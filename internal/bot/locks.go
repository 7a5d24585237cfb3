package bot

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

// accountLocks hands out one weighted semaphore per account id so turns
// against the same account serialize while unrelated accounts proceed.
type accountLocks struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

func newAccountLocks() *accountLocks {
	return &accountLocks{sems: make(map[string]*semaphore.Weighted)}
}

func (l *accountLocks) get(accountID string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, ok := l.sems[accountID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.sems[accountID] = sem
	}
	return sem
}
