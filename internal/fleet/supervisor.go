package fleet

import (
	"context"
	"sync/atomic"
	"time"
)

// supervisor reconciles the pool toward the registry: every scan it
// attempts to bring up a handle for each registered device that has no
// live handle yet.
//
// There is no retry limit and no exponential backoff. A device that fails
// to connect is simply retried on the next scan, so the scan interval is
// the retry cadence even when every registered device is failing.
type supervisor struct {
	registry *Registry
	pool     *pool
	factory  HandleFactory
	events   EventRecorder
	logger   Logger

	scanInterval time.Duration

	// connecting guards the serial-attempt invariant: at most one
	// connection attempt is in flight at any time, even if more than one
	// supervisor instance ever runs.
	connecting atomic.Bool
}

// run executes reconciliation scans until ctx is cancelled. Cancellation is
// observed between scans and between per-device attempts, never mid-attempt.
func (s *supervisor) run(ctx context.Context) {
	for {
		s.reconcile(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.scanInterval):
		}
	}
}

// reconcile performs one scan. It is a no-op when the pool already matches
// the registry or another attempt is in flight.
func (s *supervisor) reconcile(ctx context.Context) {
	if s.pool.len() == s.registry.Len() {
		return
	}
	if !s.connecting.CompareAndSwap(false, true) {
		return
	}
	defer s.connecting.Store(false)

	for _, dev := range s.registry.Snapshot() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, live := s.pool.get(dev.ID); live {
			continue
		}
		s.connect(dev)
	}
}

// connect attempts to bring up a handle for one device. Failures are never
// surfaced as hard errors; the device is retried on the next scan.
func (s *supervisor) connect(dev *Device) {
	handle := s.factory(dev.ID)

	if err := dev.Start(handle); err != nil {
		handle.Stop()
		s.logger.Debug("device start routine failed, retrying next scan",
			"device_id", dev.ID,
			"error", err,
		)
		return
	}

	if err := handle.Start(); err != nil {
		handle.Stop()
		s.logger.Warn("handle runtime failed to start",
			"device_id", dev.ID,
			"error", err,
		)
		return
	}

	if dev.OnConnect != nil {
		dev.OnConnect(handle)
	}

	if err := s.pool.add(handle); err != nil {
		// A live handle for this id appeared while we were connecting.
		// Ours loses; the pool never holds two entries for one id.
		handle.Stop()
		s.logger.Warn("discarding duplicate handle",
			"device_id", dev.ID,
			"error", err,
		)
		return
	}

	s.events.Record(dev.ID, EventConnected)
	s.logger.Info("device connected", "device_id", dev.ID)
}
