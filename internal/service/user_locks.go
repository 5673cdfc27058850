package service

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// userLocks serializes multi-step operations per user. Single-document
// updates are already atomic at the store; these locks cover sequences
// like check-slot-then-debit-then-create whose steps span documents.
type userLocks struct {
	mu    sync.Mutex
	locks map[primitive.ObjectID]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[primitive.ObjectID]*userLock)}
}

// lock blocks until the caller holds the per-user mutex and returns the
// release func. Entries are reference counted so the map is dropped back
// to empty once nobody holds or waits on a user's lock.
func (l *userLocks) lock(id primitive.ObjectID) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &userLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.Lock()
	return func() {
		entry.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
