package fleet

import "sync"

// pool is the set of currently live handles, keyed by device id.
//
// The supervisor inserts, the poller removes, the reporter reads, and the
// manager drains at shutdown; every access goes through the mutex. A change
// channel is closed and replaced on every mutation so the poller can wake
// as soon as the pool transitions from empty to non-empty instead of
// spinning.
type pool struct {
	mu      sync.RWMutex
	handles map[string]Handle
	change  chan struct{}
}

func newPool() *pool {
	return &pool{
		handles: make(map[string]Handle),
		change:  make(chan struct{}),
	}
}

// add inserts a handle. Returns ErrHandleExists if the device id already
// has a live handle; the pool never holds two entries for one id.
func (p *pool) add(h Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.handles[h.ID()]; exists {
		return ErrHandleExists
	}
	p.handles[h.ID()] = h
	p.notifyLocked()
	return nil
}

// remove deletes and returns the handle for a device id, if present.
func (p *pool) remove(id string) (Handle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, ok := p.handles[id]
	if !ok {
		return nil, false
	}
	delete(p.handles, id)
	p.notifyLocked()
	return h, true
}

// get returns the live handle for a device id, if any.
func (p *pool) get(id string) (Handle, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	h, ok := p.handles[id]
	return h, ok
}

// len returns the number of live handles.
func (p *pool) len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.handles)
}

// snapshot returns the live handles at this instant. Iterating the returned
// slice is safe against concurrent insertion and removal.
func (p *pool) snapshot() []Handle {
	p.mu.RLock()
	defer p.mu.RUnlock()

	handles := make([]Handle, 0, len(p.handles))
	for _, h := range p.handles {
		handles = append(handles, h)
	}
	return handles
}

// drain removes and returns all live handles. Used by the manager during
// final teardown.
func (p *pool) drain() []Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	handles := make([]Handle, 0, len(p.handles))
	for _, h := range p.handles {
		handles = append(handles, h)
	}
	p.handles = make(map[string]Handle)
	p.notifyLocked()
	return handles
}

// changes returns a channel that is closed on the next pool mutation.
// Callers must re-fetch the channel after each wakeup.
func (p *pool) changes() <-chan struct{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.change
}

// notifyLocked wakes all waiters. Callers must hold the write lock.
func (p *pool) notifyLocked() {
	close(p.change)
	p.change = make(chan struct{})
}
