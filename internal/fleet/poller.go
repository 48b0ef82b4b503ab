package fleet

import (
	"context"
	"time"
)

// poller keeps the pool free of dead handles with minimal latency.
//
// While handles exist it polls them in a tight loop with a sub-millisecond
// idle interval. When the pool is empty it parks on the pool's change
// channel instead of spinning, and wakes as soon as the supervisor inserts
// a handle.
type poller struct {
	registry *Registry
	pool     *pool
	events   EventRecorder
	logger   Logger

	pollInterval time.Duration
}

// run polls every live handle until ctx is cancelled. A single failed poll
// is terminal for that handle; reconnection is the supervisor's job.
func (p *poller) run(ctx context.Context) {
	for {
		handles := p.pool.snapshot()
		if len(handles) == 0 {
			select {
			case <-ctx.Done():
				return
			case <-p.pool.changes():
			}
			continue
		}

		for _, h := range handles {
			if !h.Poll() {
				p.evict(h)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.pollInterval):
		}
	}
}

// evict stops a dead handle, removes it from the pool and notifies the
// owning device. A registry lookup miss is tolerated: eviction proceeds,
// only the callback is skipped.
func (p *poller) evict(h Handle) {
	h.Stop()

	if _, ok := p.pool.remove(h.ID()); !ok {
		return
	}

	p.events.Record(h.ID(), EventDisconnected)
	p.logger.Info("device disconnected", "device_id", h.ID())

	if dev, ok := p.registry.Get(h.ID()); ok && dev.OnDisconnect != nil {
		dev.OnDisconnect(dev)
	}
}
