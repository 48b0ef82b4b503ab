package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/nerrad567/fleetcam-core/internal/infrastructure/config"
)

// Journal configuration constants.
const (
	// dirPermissions is the permission mode for the journal directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the journal file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second

	// recordTimeout bounds a single event insert. Record runs on the fleet
	// loop goroutines and must not stall them.
	recordTimeout = 2 * time.Second

	// connMaxIdleTime is how long idle connections are kept open.
	connMaxIdleTime = 30 * time.Minute
)

// Logger defines the logging interface used by the journal package.
type Logger interface {
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Error(string, ...any) {}

// Entry is one recorded connection lifecycle event.
type Entry struct {
	ID         int64     `json:"id"`
	DeviceID   string    `json:"device_id"`
	Event      string    `json:"event"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Journal persists device connection events to SQLite.
//
// It keeps an append-only history of connect/disconnect transitions so
// operators can reconstruct fleet behaviour after the fact.
type Journal struct {
	db     *sql.DB
	path   string
	logger Logger
}

// Open creates the journal database with the specified configuration.
//
// It performs the following setup:
//  1. Creates the journal directory if it doesn't exist
//  2. Opens the database file (creates if not present)
//  3. Configures WAL mode and busy timeout
//  4. Sets appropriate file permissions (0600)
//  5. Creates the connection_events table if missing
//
// Parameters:
//   - cfg: Journal configuration from config.yaml
//
// Returns:
//   - *Journal: Ready journal
//   - error: If connection or schema setup fails
func Open(cfg config.JournalConfig) (*Journal, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	// Build connection string with pragmas
	// See: https://github.com/mattn/go-sqlite3#connection-string
	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)

	if cfg.WALMode {
		connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}

	// SQLite works best with a single writer, but multiple readers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	j := &Journal{
		db:     db,
		path:   cfg.Path,
		logger: noopLogger{},
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying journal connection: %w", err)
	}

	if err := j.initSchema(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, err
	}

	// Set file permissions (owner read/write only)
	_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // Intentional: first run creates file later

	return j, nil
}

// initSchema creates the connection_events table if it doesn't exist.
func (j *Journal) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS connection_events (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    device_id   TEXT NOT NULL,
    event       TEXT NOT NULL,
    recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_connection_events_device
    ON connection_events(device_id, recorded_at);
`
	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating journal schema: %w", err)
	}
	return nil
}

// SetLogger sets the logger for insert failures. Record swallows errors so
// the fleet loops never block on journal problems; without a logger those
// failures are invisible.
func (j *Journal) SetLogger(logger Logger) {
	j.logger = logger
}

// Record persists one lifecycle event. It satisfies the fleet manager's
// event recorder contract: failures are logged, never returned, so a broken
// journal cannot stall connection handling.
func (j *Journal) Record(deviceID, event string) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := j.RecordEvent(ctx, deviceID, event); err != nil {
		j.logger.Error("failed to record connection event",
			"device_id", deviceID,
			"event", event,
			"error", err,
		)
	}
}

// RecordEvent persists one lifecycle event, returning any insert error.
func (j *Journal) RecordEvent(ctx context.Context, deviceID, event string) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO connection_events (device_id, event, recorded_at) VALUES (?, ?, ?)",
		deviceID, event, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting connection event: %w", err)
	}
	return nil
}

// Recent returns the most recent events, newest first.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - limit: Maximum number of entries to return
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT id, device_id, event, recorded_at FROM connection_events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying connection events: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.DeviceID, &e.Event, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning connection event: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating connection events: %w", err)
	}

	return entries, nil
}

// DeviceHistory returns events for one device, newest first.
func (j *Journal) DeviceHistory(ctx context.Context, deviceID string, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT id, device_id, event, recorded_at FROM connection_events WHERE device_id = ? ORDER BY id DESC LIMIT ?",
		deviceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying device history: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.DeviceID, &e.Event, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning device history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device history: %w", err)
	}

	return entries, nil
}

// HealthCheck verifies the journal database is accessible and functioning.
func (j *Journal) HealthCheck(ctx context.Context) error {
	var result int
	if err := j.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("journal health check failed: %w", err)
	}
	return nil
}

// Path returns the filesystem path to the journal file.
func (j *Journal) Path() string {
	return j.path
}

// Close closes the journal database gracefully.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("closing journal: %w", err)
	}
	return nil
}
