// Package store provides a SQLite-backed ledger of projection runs and the
// file tracker batch runs use to skip unchanged inputs.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/proforma/internal/engine"

	_ "modernc.org/sqlite" // register sqlite driver
)

// timeLayout keeps fractional seconds at fixed width so created_at sorts
// as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Run is one recorded projection. Result is nil for failed runs.
type Run struct {
	ID          string         `json:"id"`
	Source      string         `json:"source"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	Status      string         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Periods     int            `json:"periods"`
	EndingCash  float64        `json:"ending_cash"`
	Result      *engine.Result `json:"result,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewRun builds a run record for a finished projection. Exactly one of r
// and projErr is expected to be set.
func NewRun(source, fingerprint string, r *engine.Result, projErr error) Run {
	run := Run{
		Source:      source,
		Fingerprint: fingerprint,
		Status:      StatusOK,
	}
	if projErr != nil {
		run.Status = StatusError
		run.Message = projErr.Error()
		return run
	}
	if r != nil {
		run.Result = r
		run.Periods = r.Len()
		run.EndingCash = r.FinalCash()
	}
	return run
}

// Ledger provides SQLite-backed run storage.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger database at the given path.
func Open(dbPath string) (*Ledger, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Close closes the ledger database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// FileInfo holds the tracked mtime and size for a file, the horizon it was
// projected under and the run that recorded it.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
	Options   string
	RunID     string
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertRun(e execer, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	var result sql.NullString
	if run.Result != nil {
		data, err := json.Marshal(run.Result)
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		result = sql.NullString{String: string(data), Valid: true}
	}

	_, err := e.Exec(`INSERT INTO runs
		(id, source, fingerprint, status, message, periods, ending_cash, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Fingerprint, run.Status, run.Message,
		run.Periods, run.EndingCash, result, run.CreatedAt.UTC().Format(timeLayout),
	)
	return err
}

// SaveRun stores run, assigning its ID and CreatedAt when unset.
func (l *Ledger) SaveRun(run *Run) error {
	return insertRun(l.db, run)
}

// SaveFileRun stores run and points the file tracker entry for path at it
// in one transaction. fi.RunID is ignored.
func (l *Ledger) SaveFileRun(run *Run, path string, fi FileInfo) error {
	tx, err := l.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertRun(tx, run); err != nil {
		return err
	}
	fi.RunID = run.ID
	if err := trackFile(tx, path, fi); err != nil {
		return err
	}
	return tx.Commit()
}

func trackFile(e execer, path string, fi FileInfo) error {
	_, err := e.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes, options, run_id)
		VALUES (?, ?, ?, ?, ?)`, path, fi.MtimeNs, fi.SizeBytes, fi.Options, fi.RunID)
	return err
}

// TrackFile records fi as the latest projection of path.
func (l *Ledger) TrackFile(path string, fi FileInfo) error {
	return trackFile(l.db, path, fi)
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (l *Ledger) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := l.db.Query("SELECT file_path, mtime_ns, size_bytes, options, run_id FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes, &fi.Options, &fi.RunID); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// DeleteFileTracker removes a file tracking entry.
func (l *Ledger) DeleteFileTracker(filePath string) error {
	_, err := l.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", filePath)
	return err
}

const runColumns = `id, source, fingerprint, status, message, periods, ending_cash, result, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner, withResult bool) (Run, error) {
	var run Run
	var result sql.NullString
	var created string
	if err := s.Scan(&run.ID, &run.Source, &run.Fingerprint, &run.Status, &run.Message,
		&run.Periods, &run.EndingCash, &result, &created); err != nil {
		return Run{}, err
	}
	run.CreatedAt, _ = time.Parse(timeLayout, created)
	if withResult && result.Valid && result.String != "" {
		var r engine.Result
		if err := json.Unmarshal([]byte(result.String), &r); err != nil {
			return Run{}, fmt.Errorf("decoding result of run %s: %w", run.ID, err)
		}
		run.Result = &r
	}
	return run, nil
}

// LatestRuns returns up to limit runs, newest first, without their results.
func (l *Ledger) LatestRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.Query(`SELECT `+runColumns+` FROM runs
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows, false)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunByID loads one run with its result. ok is false if no such run exists.
func (l *Ledger) RunByID(id string) (Run, bool, error) {
	row := l.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return oneRun(row)
}

// RunByFingerprint loads the newest successful run for a fingerprint.
func (l *Ledger) RunByFingerprint(fingerprint string) (Run, bool, error) {
	row := l.db.QueryRow(`SELECT `+runColumns+` FROM runs
		WHERE fingerprint = ? AND status = ?
		ORDER BY created_at DESC, rowid DESC LIMIT 1`, fingerprint, StatusOK)
	return oneRun(row)
}

func oneRun(row *sql.Row) (Run, bool, error) {
	run, err := scanRun(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	return run, true, nil
}

// RunCount returns the number of recorded runs.
func (l *Ledger) RunCount() (int, error) {
	var count int
	err := l.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}
