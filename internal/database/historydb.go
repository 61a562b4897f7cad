package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/storepreview/internal/model"
)

// FileName is the history database file inside the data directory.
const FileName = "history.db"

// storedTimeFormat has a fixed width so captured_at sorts as text.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryDB is the SQLite capture history.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL switches the journal to write-ahead logging.
	EnableWAL bool
}

// DefaultOptions creates the database and enables WAL.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// ErrNotFound is returned when the database file is missing and
// CreateIfNotExists is false.
var ErrNotFound = errors.New("history database not found")

// Open opens the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	mode := "rwc"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
		mode = "rw"
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer; batch captures share this handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := h.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return h, nil
}

// Close closes the database.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

func (h *HistoryDB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS captures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		capture_id TEXT,
		name TEXT NOT NULL,
		url TEXT NOT NULL,
		origin TEXT NOT NULL,
		captured_at TEXT NOT NULL,
		output_path TEXT NOT NULL,
		title TEXT,
		fetched_bytes INTEGER NOT NULL,
		output_bytes INTEGER NOT NULL,
		remaining_scripts INTEGER NOT NULL,
		scripts_removed INTEGER NOT NULL,
		script_hosts TEXT,
		stats TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_captures_name ON captures(name);
	CREATE INDEX IF NOT EXISTS idx_captures_captured_at ON captures(captured_at);
	`
	_, err := h.db.ExecContext(ctx, schema)
	return err
}

// CaptureRecord is one row of the capture history.
type CaptureRecord struct {
	ID               int64
	CaptureID        string
	Name             string
	URL              string
	Origin           string
	CapturedAt       time.Time
	OutputPath       string
	Title            string
	FetchedBytes     int
	OutputBytes      int
	RemainingScripts int
	ScriptsRemoved   int
	ScriptHosts      []string
	Stats            model.Stats
}

// InsertCapture records a written preview and returns the new row ID.
func (h *HistoryDB) InsertCapture(ctx context.Context, s *model.Summary) (int64, error) {
	hosts, err := json.Marshal(s.ScriptHosts)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize script hosts: %w", err)
	}
	stats, err := json.Marshal(s.Stats)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize stats: %w", err)
	}

	capturedAt := s.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}

	query := `
	INSERT INTO captures (capture_id, name, url, origin, captured_at, output_path, title,
		fetched_bytes, output_bytes, remaining_scripts, scripts_removed, script_hosts, stats)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := h.db.ExecContext(ctx, query,
		s.CaptureID,
		s.Name,
		s.URL,
		s.Origin,
		capturedAt.UTC().Format(storedTimeFormat),
		s.OutputPath,
		s.Title,
		s.FetchedBytes,
		s.OutputBytes,
		s.RemainingScripts,
		s.Stats.ScriptsRemoved,
		string(hosts),
		string(stats),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert capture: %w", err)
	}
	return res.LastInsertId()
}

const selectColumns = `id, COALESCE(capture_id, ''), name, url, origin, captured_at, output_path, COALESCE(title, ''),
	fetched_bytes, output_bytes, remaining_scripts, scripts_removed,
	COALESCE(script_hosts, ''), COALESCE(stats, '')`

// ListCaptures returns captures newest first. An empty name lists every
// preview; limit <= 0 means no limit.
func (h *HistoryDB) ListCaptures(ctx context.Context, name string, limit int) ([]CaptureRecord, error) {
	query := "SELECT " + selectColumns + " FROM captures"
	var args []any
	if name != "" {
		query += " WHERE name = ?"
		args = append(args, name)
	}
	query += " ORDER BY captured_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list captures: %w", err)
	}
	defer rows.Close()

	var records []CaptureRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LatestCapture returns the newest capture for name, or nil if there is none.
func (h *HistoryDB) LatestCapture(ctx context.Context, name string) (*CaptureRecord, error) {
	records, err := h.ListCaptures(ctx, name, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// ListNames returns every preview name in the history, sorted.
func (h *HistoryDB) ListNames(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, "SELECT DISTINCT name FROM captures ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func scanRecord(rows *sql.Rows) (CaptureRecord, error) {
	var (
		rec                         CaptureRecord
		capturedAt, hosts, statsRaw string
	)
	err := rows.Scan(
		&rec.ID, &rec.CaptureID, &rec.Name, &rec.URL, &rec.Origin, &capturedAt, &rec.OutputPath, &rec.Title,
		&rec.FetchedBytes, &rec.OutputBytes, &rec.RemainingScripts, &rec.ScriptsRemoved,
		&hosts, &statsRaw,
	)
	if err != nil {
		return CaptureRecord{}, fmt.Errorf("failed to scan capture: %w", err)
	}
	rec.CapturedAt = parseTimestamp(capturedAt)
	if hosts != "" {
		if err := json.Unmarshal([]byte(hosts), &rec.ScriptHosts); err != nil {
			return CaptureRecord{}, fmt.Errorf("failed to parse script hosts: %w", err)
		}
	}
	if statsRaw != "" {
		if err := json.Unmarshal([]byte(statsRaw), &rec.Stats); err != nil {
			return CaptureRecord{}, fmt.Errorf("failed to parse stats: %w", err)
		}
	}
	return rec, nil
}

var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp returns the zero time when no known format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
