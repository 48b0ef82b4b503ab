package fleet

import (
	"context"
	"time"
)

// TelemetrySink receives periodic device snapshots. Implementations decide
// the transport; the fleet package only guarantees the cadence and the
// per-device fault isolation.
type TelemetrySink interface {
	PublishDeviceInfo(rec InfoRecord) error
	PublishDeviceStats(rec StatsRecord) error
}

// noopSink discards all snapshots.
type noopSink struct{}

func (noopSink) PublishDeviceInfo(InfoRecord) error   { return nil }
func (noopSink) PublishDeviceStats(StatsRecord) error { return nil }

// reporter forwards periodic info/stats snapshots for every live handle to
// the telemetry sink.
type reporter struct {
	pool   *pool
	sink   TelemetrySink
	logger Logger

	reportInterval time.Duration
}

// run reports immediately, then at the configured interval until ctx is
// cancelled.
func (r *reporter) run(ctx context.Context) {
	for {
		r.report()

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.reportInterval):
		}
	}
}

// report performs one cycle. Any snapshot or publish failure for one handle
// is logged and that handle is skipped; siblings are unaffected.
func (r *reporter) report() {
	for _, h := range r.pool.snapshot() {
		info, err := h.Info()
		if err != nil {
			r.logger.Debug("info snapshot failed", "device_id", h.ID(), "error", err)
			continue
		}

		stats, err := h.Stats()
		if err != nil {
			r.logger.Debug("stats snapshot failed", "device_id", h.ID(), "error", err)
			continue
		}

		if err := r.sink.PublishDeviceInfo(info); err != nil {
			r.logger.Debug("publishing device info failed", "device_id", h.ID(), "error", err)
			continue
		}
		if err := r.sink.PublishDeviceStats(stats); err != nil {
			r.logger.Debug("publishing device stats failed", "device_id", h.ID(), "error", err)
		}
	}
}
