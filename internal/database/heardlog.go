package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kd9lsv/packetmap/internal/model"
)

// HeardLog provides SQLite-based storage for session history and heard
// station observations. The map document carries only the latest state;
// the heard log is the append-side memory that answers "when did anyone
// last hear X" and "how did previous attempts against Y go" across runs.
//
// Design decision: one database file per station, not per crawl. Session
// history only becomes useful when it spans runs, and the staleness
// filter needs last-heard evidence older than the current document.
type HeardLog struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HeardLog behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended: the crawler
	// writes while report generation reads.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HeardLog in the specified directory.
func Open(dbDir string, opts Options) (*HeardLog, error) {
	dbPath := filepath.Join(dbDir, "packetmap.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("heard log not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("check heard log path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("create heard log directory: %w", err)
		}
	}

	// modernc.org/sqlite DSN: mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open heard log: %w", err)
	}

	// SQLite supports one writer; the crawl is single-threaded anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	log := &HeardLog{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	if err := log.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return log, nil
}

// Close closes the database connection.
func (hl *HeardLog) Close() error {
	return hl.db.Close()
}

// Path returns the database file path.
func (hl *HeardLog) Path() string {
	return hl.dbPath
}

// createTables creates the schema if it doesn't exist.
func (hl *HeardLog) createTables() error {
	schema := `
	-- One row per interrogation attempt against a node
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		hops INTEGER NOT NULL DEFAULT 0,
		complete INTEGER NOT NULL DEFAULT 0,
		software TEXT,
		detail TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_target ON sessions(target);
	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);

	-- Latest heard observation per (station, reporter, port)
	CREATE TABLE IF NOT EXISTS heard (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		station TEXT NOT NULL,
		reporter TEXT NOT NULL,
		port INTEGER NOT NULL DEFAULT 0,
		heard_at DATETIME NOT NULL,
		UNIQUE(station, reporter, port)
	);

	CREATE INDEX IF NOT EXISTS idx_heard_station ON heard(station);
	CREATE INDEX IF NOT EXISTS idx_heard_at ON heard(heard_at);
	`

	_, err := hl.db.ExecContext(context.Background(), schema)
	return err
}

// SessionRecord is one stored interrogation attempt.
type SessionRecord struct {
	ID         int64
	Target     model.Callsign
	StartedAt  time.Time
	FinishedAt time.Time
	Hops       int
	Complete   bool
	Software   model.SoftwareFamily
	Detail     string
}

// RecordSession appends an interrogation attempt to the history.
func (hl *HeardLog) RecordSession(ctx context.Context, rec *SessionRecord) (int64, error) {
	query := `
	INSERT INTO sessions (target, started_at, finished_at, hops, complete, software, detail)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := hl.db.ExecContext(ctx, query,
		rec.Target.String(),
		rec.StartedAt.UTC(),
		rec.FinishedAt.UTC(),
		rec.Hops,
		rec.Complete,
		rec.Software.String(),
		rec.Detail,
	)
	if err != nil {
		return 0, fmt.Errorf("record session: %w", err)
	}
	return result.LastInsertId()
}

// RecentSessions returns the newest session records for a target, most
// recent first.
func (hl *HeardLog) RecentSessions(ctx context.Context, target model.Callsign, limit int) ([]SessionRecord, error) {
	query := `
	SELECT id, target, started_at, finished_at, hops, complete, software, detail
	FROM sessions
	WHERE target = ?
	ORDER BY started_at DESC
	LIMIT ?
	`

	rows, err := hl.db.QueryContext(ctx, query, target.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var targetStr, software string
		if err := rows.Scan(&rec.ID, &targetStr, &rec.StartedAt, &rec.FinishedAt,
			&rec.Hops, &rec.Complete, &software, &rec.Detail); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		call, callErr := model.NewCallsign(targetStr)
		if callErr != nil {
			continue
		}
		rec.Target = call
		rec.Software = model.ParseSoftwareFamily(software)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// HeardObservation is one station heard by one reporter on one port.
type HeardObservation struct {
	Station  model.Callsign
	Reporter model.Callsign
	Port     int
	HeardAt  time.Time
}

// RecordHeard upserts a heard observation, keeping the later timestamp
// when the same (station, reporter, port) has been seen before. Nodes
// replay stale MHEARD rows on every visit; only forward movement counts.
func (hl *HeardLog) RecordHeard(ctx context.Context, obs *HeardObservation) error {
	if obs.HeardAt.IsZero() {
		return nil
	}

	query := `
	INSERT INTO heard (station, reporter, port, heard_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(station, reporter, port) DO UPDATE SET
		heard_at = excluded.heard_at
	WHERE excluded.heard_at > heard.heard_at
	`

	_, err := hl.db.ExecContext(ctx, query,
		obs.Station.String(),
		obs.Reporter.String(),
		obs.Port,
		obs.HeardAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record heard observation: %w", err)
	}
	return nil
}

// LastHeard returns the most recent time any reporter heard the station.
// The boolean is false when the station has never been heard.
func (hl *HeardLog) LastHeard(ctx context.Context, station model.Callsign) (time.Time, bool, error) {
	query := `SELECT MAX(heard_at) FROM heard WHERE station = ?`

	var heardAt sql.NullTime
	err := hl.db.QueryRowContext(ctx, query, station.String()).Scan(&heardAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query last heard: %w", err)
	}
	if !heardAt.Valid {
		return time.Time{}, false, nil
	}
	return heardAt.Time, true, nil
}

// Reporters returns which reporters have heard the station, with their
// latest timestamps, most recent first.
func (hl *HeardLog) Reporters(ctx context.Context, station model.Callsign) ([]HeardObservation, error) {
	query := `
	SELECT station, reporter, port, heard_at
	FROM heard
	WHERE station = ?
	ORDER BY heard_at DESC
	`

	rows, err := hl.db.QueryContext(ctx, query, station.String())
	if err != nil {
		return nil, fmt.Errorf("query reporters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var observations []HeardObservation
	for rows.Next() {
		var stationStr, reporterStr string
		var obs HeardObservation
		if err := rows.Scan(&stationStr, &reporterStr, &obs.Port, &obs.HeardAt); err != nil {
			return nil, fmt.Errorf("scan heard row: %w", err)
		}
		station, err1 := model.NewCallsign(stationStr)
		reporter, err2 := model.NewCallsign(reporterStr)
		if err1 != nil || err2 != nil {
			continue
		}
		obs.Station = station
		obs.Reporter = reporter
		observations = append(observations, obs)
	}
	return observations, rows.Err()
}
