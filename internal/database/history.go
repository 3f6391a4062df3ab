package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/modelcount/internal/model"
)

// HistoryDB provides SQLite-based storage for scan history.
// It manages connection pooling and provides methods for saving and
// querying finished reports.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "modelcount.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the path of the underlying database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per finished scan run
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		inputs TEXT NOT NULL,
		target_key TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		total_bytes INTEGER NOT NULL,
		models_seen INTEGER NOT NULL,
		unique_models INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scans_started ON scans(started_at);

	-- One row per distinct model value per scan. The fingerprint is the
	-- xxhash64 of the value, stored so values can be joined across scans
	-- without comparing full strings.
	CREATE TABLE IF NOT EXISTS model_counts (
		scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
		fingerprint INTEGER NOT NULL,
		value TEXT NOT NULL,
		count INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_counts_scan ON model_counts(scan_id);
	CREATE INDEX IF NOT EXISTS idx_counts_fingerprint ON model_counts(fingerprint);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// ScanRecord is one stored scan run.
type ScanRecord struct {
	ID           int64
	Inputs       []string
	TargetKey    string
	StartedAt    time.Time
	Duration     time.Duration
	TotalBytes   int64
	ModelsSeen   uint64
	UniqueModels int
}

// SaveReport stores a finished report and returns the new scan ID.
// The scan row and all its model counts are written in one transaction.
func (hdb *HistoryDB) SaveReport(ctx context.Context, report *model.ScanReport) (int64, error) {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO scans (inputs, target_key, started_at, duration_ms, total_bytes, models_seen, unique_models)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strings.Join(report.Inputs, string(filepath.ListSeparator)),
		report.TargetKey,
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.Duration.Milliseconds(),
		report.TotalBytes,
		int64(report.ModelsSeen),
		report.UniqueModels,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan: %w", err)
	}

	scanID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get scan id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO model_counts (scan_id, fingerprint, value, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, vc := range report.Models {
		fp := int64(xxhash.Sum64String(vc.Value))
		if _, err := stmt.ExecContext(ctx, scanID, fp, vc.Value, int64(vc.Count)); err != nil {
			return 0, fmt.Errorf("failed to insert model count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	return scanID, nil
}

// RecentScans returns the most recent scan runs, newest first.
func (hdb *HistoryDB) RecentScans(ctx context.Context, limit int) ([]ScanRecord, error) {
	rows, err := hdb.db.QueryContext(ctx,
		`SELECT id, inputs, target_key, started_at, duration_ms, total_bytes, models_seen, unique_models
		 FROM scans ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []ScanRecord
	for rows.Next() {
		var (
			rec        ScanRecord
			inputs     string
			startedAt  string
			durationMS int64
			seen       int64
		)
		if err := rows.Scan(&rec.ID, &inputs, &rec.TargetKey, &startedAt,
			&durationMS, &rec.TotalBytes, &seen, &rec.UniqueModels); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec.Inputs = strings.Split(inputs, string(filepath.ListSeparator))
		rec.StartedAt = parseTimestamp(startedAt)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.ModelsSeen = uint64(seen)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// timestampFormats are the layouts SQLite may hand back depending on how
// the value was written.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999",
	"2006-01-02 15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. If parsing fails with all formats, returns zero time rather
// than failing the whole listing.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ScanCounts returns the stored value counts for one scan, ordered by
// descending count with ties broken by ascending value.
func (hdb *HistoryDB) ScanCounts(ctx context.Context, scanID int64) ([]model.ValueCount, error) {
	rows, err := hdb.db.QueryContext(ctx,
		`SELECT value, count FROM model_counts WHERE scan_id = ? ORDER BY count DESC, value ASC`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query model counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []model.ValueCount
	for rows.Next() {
		var (
			vc    model.ValueCount
			count int64
		)
		if err := rows.Scan(&vc.Value, &count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		vc.Count = uint64(count)
		counts = append(counts, vc)
	}

	return counts, rows.Err()
}
