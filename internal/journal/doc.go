// Package journal persists device connection events for Fleetcam Core.
//
// Every connect and disconnect transition handled by the fleet manager is
// appended to a SQLite table, giving operators an audit trail of fleet
// behaviour: which cameras flapped, when they came back, how long outages
// lasted.
//
// # Storage
//
// Events live in a single connection_events table:
//
//	id          INTEGER PRIMARY KEY
//	device_id   TEXT
//	event       TEXT        ("connected" or "disconnected")
//	recorded_at TIMESTAMP
//
// WAL mode is enabled by default so reads (Recent, DeviceHistory) do not
// block the fleet loops writing events.
//
// # Usage
//
//	j, err := journal.Open(cfg.Journal)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer j.Close()
//
//	j.Record("cam-entrance", "connected")
//	entries, _ := j.Recent(ctx, 50)
//
// # Error Handling
//
// Record never returns an error: it runs on the fleet loop goroutines and a
// broken journal must not stall connection handling. Failures are logged via
// the configured Logger. Use RecordEvent directly when the caller wants the
// error.
package journal
