// Package store persists AnalysisRecords. The analysis pipeline never writes
// here; the upload handler and the CLI --save flag do.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resumalyzer/internal/errors"
	"resumalyzer/internal/types"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100

	// fixed width so created_at sorts lexically
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// Store reads and writes analysis records
type Store interface {
	Save(ctx context.Context, rec *types.AnalysisRecord) error
	Get(ctx context.Context, id string) (*types.AnalysisRecord, error)
	ListByEmail(ctx context.Context, email string, limit int) ([]types.AnalysisRecord, error)
	Close() error
}

// SQLiteStore keeps records in a single SQLite file
type SQLiteStore struct {
	db     *sql.DB
	logger *errors.Logger
}

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at path
func OpenSQLite(path string, logger *errors.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = errors.Discard()
	}
	if path == "" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "store path is empty", nil)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, errors.NewIOError(errors.ErrCodeStoreFailed,
				fmt.Sprintf("Cannot create store directory: %s", dir), err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeStoreFailed, "Failed to open store", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, errors.NewIOError(errors.ErrCodeStoreFailed, "Failed to initialize store schema", err)
	}

	logger.Debug("Analysis store opened", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS analyses (
		id            TEXT PRIMARY KEY,
		user_email    TEXT NOT NULL DEFAULT '',
		target_domain TEXT NOT NULL DEFAULT '',
		resume_text   TEXT NOT NULL DEFAULT '',
		results       TEXT NOT NULL,
		created_at    TEXT NOT NULL
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_analyses_email ON analyses (user_email, created_at)`)
	return err
}

// Save inserts rec, assigning an ID and creation time when unset
func (s *SQLiteStore) Save(ctx context.Context, rec *types.AnalysisRecord) error {
	if rec == nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "record is nil", nil)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	results, err := json.Marshal(rec.Results)
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeStoreFailed, "Failed to encode analysis results", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, user_email, target_domain, resume_text, results, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, strings.ToLower(strings.TrimSpace(rec.UserEmail)), rec.TargetDomain,
		rec.ResumeText, string(results), rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeStoreFailed, "Failed to save analysis", err).
			WithContext("id", rec.ID)
	}

	s.logger.Debug("Analysis saved", "id", rec.ID, "target_domain", rec.TargetDomain)
	return nil
}

// Get returns the record with id, or a NOT_FOUND validation error
func (s *SQLiteStore) Get(ctx context.Context, id string) (*types.AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_email, target_domain, resume_text, results, created_at
		 FROM analyses WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewValidationError(errors.ErrCodeNotFound,
			fmt.Sprintf("Analysis %s not found", id), nil)
	}
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeStoreFailed, "Failed to read analysis", err).
			WithContext("id", id)
	}
	return rec, nil
}

// ListByEmail returns the newest records of email first
func (s *SQLiteStore) ListByEmail(ctx context.Context, email string, limit int) ([]types.AnalysisRecord, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_email, target_domain, resume_text, results, created_at
		 FROM analyses WHERE user_email = ? ORDER BY created_at DESC LIMIT ?`,
		strings.ToLower(strings.TrimSpace(email)), limit)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeStoreFailed, "Failed to list analyses", err)
	}
	defer func() { _ = rows.Close() }()

	records := []types.AnalysisRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.NewIOError(errors.ErrCodeStoreFailed, "Failed to read analysis", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeStoreFailed, "Failed to list analyses", err)
	}
	return records, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*types.AnalysisRecord, error) {
	var (
		rec       types.AnalysisRecord
		results   string
		createdAt string
	)
	if err := sc.Scan(&rec.ID, &rec.UserEmail, &rec.TargetDomain, &rec.ResumeText, &results, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(results), &rec.Results); err != nil {
		return nil, fmt.Errorf("decode results of %s: %w", rec.ID, err)
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at of %s: %w", rec.ID, err)
	}
	rec.CreatedAt = t
	return &rec, nil
}
