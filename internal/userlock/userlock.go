// Package userlock provides a per-key mutex so work for one user is serialized
// while different users proceed in parallel.
package userlock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locks is a set of mutexes keyed by user id. The zero value is ready to use.
// Entries are dropped once nobody holds or waits on them.
type Locks struct {
	mu sync.Mutex
	m  map[int64]*entry
}

// Lock blocks until the lock for key is held and returns the matching unlock.
func (l *Locks) Lock(key int64) (unlock func()) {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[int64]*entry)
	}
	e, ok := l.m[key]
	if !ok {
		e = &entry{}
		l.m[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.m, key)
		}
		l.mu.Unlock()
	}
}

// Len reports how many keys currently have a live entry.
func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
