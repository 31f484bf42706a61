package service

import "sync"

// customerLocks hands out one mutex per customer id and drops it once no
// caller holds or waits on it.
type customerLocks struct {
	mu    sync.Mutex
	locks map[int64]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newCustomerLocks() *customerLocks {
	return &customerLocks{locks: make(map[int64]*refMutex)}
}

// lock blocks until id's mutex is held and returns its release func.
func (c *customerLocks) lock(id int64) func() {
	c.mu.Lock()
	m, ok := c.locks[id]
	if !ok {
		m = &refMutex{}
		c.locks[id] = m
	}
	m.refs++
	c.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		c.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(c.locks, id)
		}
		c.mu.Unlock()
	}
}
