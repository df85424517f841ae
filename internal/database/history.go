package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/pdfdiff/internal/model"
)

// FileName is the name of the history database file inside its directory.
const FileName = "pdfdiff.db"

// sqliteTime is the layout used to store timestamps.
const sqliteTime = "2006-01-02 15:04:05"

// HistoryDB stores comparison runs.
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

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file; mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

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
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS comparisons (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		timestamp DATETIME NOT NULL,
		base_file TEXT NOT NULL,
		compared_file TEXT NOT NULL,
		base_fingerprint TEXT NOT NULL,
		compared_fingerprint TEXT NOT NULL,
		threshold INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		overall_change REAL NOT NULL,
		archive_path TEXT,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_comparisons_timestamp ON comparisons(timestamp);
	CREATE INDEX IF NOT EXISTS idx_comparisons_pair ON comparisons(base_fingerprint, compared_fingerprint);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// Fingerprint returns the hex BLAKE2b-256 digest of a document.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Comparison is the summary of one recorded run.
type Comparison struct {
	// ID is the database identifier.
	ID int64

	// RunID is the comparison run id.
	RunID string

	// Timestamp is when the report was generated.
	Timestamp time.Time

	BaseFile            string
	ComparedFile        string
	BaseFingerprint     string
	ComparedFingerprint string

	// Threshold is the diff threshold used.
	Threshold int

	// Pages is the number of pages analyzed.
	Pages int

	// OverallChangePercent is the pixel-weighted visual change.
	OverallChangePercent float64

	// ArchivePath is where the archive was written.
	ArchivePath string
}

// SaveComparison records a run. Timestamp, file names, page count and
// overall change are taken from report; the other fields from c.
// It returns the new record id.
func (h *HistoryDB) SaveComparison(ctx context.Context, c *Comparison, report *model.ComparisonReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO comparisons (
		run_id, timestamp, base_file, compared_file, base_fingerprint, compared_fingerprint,
		threshold, pages, overall_change, archive_path, report_json
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := h.db.ExecContext(ctx, query,
		c.RunID,
		report.GeneratedAt.UTC().Format(sqliteTime),
		report.BaseFile,
		report.ComparedFile,
		c.BaseFingerprint,
		c.ComparedFingerprint,
		c.Threshold,
		report.PagesAnalyzed,
		report.OverallVisualChangePercent,
		c.ArchivePath,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save comparison: %w", err)
	}

	return result.LastInsertId()
}

// ListComparisons returns the most recent runs, newest first.
// A non-positive limit returns every run.
func (h *HistoryDB) ListComparisons(ctx context.Context, limit int) ([]Comparison, error) {
	query := `
	SELECT id, run_id, timestamp, base_file, compared_file, base_fingerprint, compared_fingerprint,
		threshold, pages, overall_change, archive_path
	FROM comparisons
	ORDER BY timestamp DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comparisons: %w", err)
	}
	defer rows.Close()

	var results []Comparison
	for rows.Next() {
		var c Comparison
		var timestamp string
		var archivePath sql.NullString

		if err := rows.Scan(
			&c.ID, &c.RunID, &timestamp, &c.BaseFile, &c.ComparedFile,
			&c.BaseFingerprint, &c.ComparedFingerprint,
			&c.Threshold, &c.Pages, &c.OverallChangePercent, &archivePath,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comparison: %w", err)
		}

		c.Timestamp = parseTimestamp(timestamp)
		c.ArchivePath = archivePath.String
		results = append(results, c)
	}

	return results, rows.Err()
}

// GetReport returns the stored report of a run, or nil if id is unknown.
func (h *HistoryDB) GetReport(ctx context.Context, id int64) (*model.ComparisonReport, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx, `SELECT report_json FROM comparisons WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.ComparisonReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// CountPair returns how many runs compared documents with these fingerprints.
func (h *HistoryDB) CountPair(ctx context.Context, baseFingerprint, comparedFingerprint string) (int, error) {
	var n int
	err := h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comparisons WHERE base_fingerprint = ? AND compared_fingerprint = ?`,
		baseFingerprint, comparedFingerprint,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count comparisons: %w", err)
	}
	return n, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// More specific formats come first.
var timestampFormats = []string{
	sqliteTime,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses a timestamp in any of timestampFormats, returning the
// zero time when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
