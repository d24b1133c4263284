package solarledger

import "sync"

// lockTable hands out one mutex per member ID so balance writes for
// different members never contend with each other. Entries are created
// on first use and kept for the life of the engine; the roster is small
// enough that reclaiming them is not worth the bookkeeping.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for key and returns its unlock func.
func (t *lockTable) lock(key string) func() {
	t.mu.Lock()
	m, ok := t.locks[key]
	if !ok {
		m = &sync.Mutex{}
		t.locks[key] = m
	}
	t.mu.Unlock()

	m.Lock()
	return m.Unlock
}
