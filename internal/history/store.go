package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"loopguard/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users clear the history database to adopt the new schema.
const schemaVersion = 1

// lockRetryDelay is the poll interval while waiting for the file lock.
const lockRetryDelay = 50 * time.Millisecond

// timeLayout is RFC 3339 with fixed nanosecond width so stored timestamps
// compare correctly as strings in SQL.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages history persistence backed by SQLite. Mutations are
// serialized across processes by a sidecar flock file next to the database.
type Store struct {
	db          *sql.DB
	path        string
	lock        *flock.Flock
	lockTimeout time.Duration
	window      time.Duration
}

// Open initializes or connects to the history database and applies the schema.
// Database-level failures are reported as ErrUnavailable so callers can fail
// open.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.HistoryFile)
	if err != nil {
		return nil, unavailable("open history db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, unavailable(fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{
		db:          db,
		path:        cfg.HistoryFile,
		lock:        flock.New(cfg.HistoryFile + ".lock"),
		lockTimeout: cfg.LockTimeout(),
		window:      cfg.TimeWindow(),
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Window returns the duplicate-detection window the store was opened with.
func (s *Store) Window() time.Duration {
	return s.window
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return unavailable("check schema_version table", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return unavailable("read schema version", err)
	}
	if version != schemaVersion {
		return unavailable(fmt.Sprintf("history database has schema version %d, expected %d (run 'loopguard history clear' or delete the file)", version, schemaVersion), nil)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin schema tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return unavailable("create schema", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return unavailable("record schema version", err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit schema", err)
	}
	return nil
}

// Tx exposes history operations inside one locked transaction.
type Tx struct {
	tx     *sql.Tx
	window time.Duration
}

// Transact runs fn inside the cross-process lock and a SQL transaction.
// The lock wait is bounded; a timeout converts to ErrUnavailable. The lock
// and the transaction are released on every exit path.
func (s *Store) Transact(ctx context.Context, fn func(*Tx) error) error {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	ok, err := s.lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return unavailable("acquire history lock", err)
	}
	if !ok {
		return unavailable("history lock timeout", nil)
	}
	defer func() { _ = s.lock.Unlock() }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin history tx", err)
	}
	htx := &Tx{tx: tx, window: s.window}
	if err := fn(htx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit history tx", err)
	}
	return nil
}

const entryColumns = "id, identity, display_name, normalized_name, duplicate_key, category, job_id, status, first_seen_at, last_updated_at"

func (t *Tx) cutoff(now time.Time) string {
	return now.Add(-t.window).UTC().Format(timeLayout)
}

// FindActive returns non-expired entries for an identity, most recently
// updated first.
func (t *Tx) FindActive(ctx context.Context, identity string, now time.Time) ([]*Entry, error) {
	rows, err := t.tx.QueryContext(
		ctx,
		`SELECT `+entryColumns+` FROM history_entries
         WHERE identity = ? AND last_updated_at >= ?
         ORDER BY last_updated_at DESC`,
		identity,
		t.cutoff(now),
	)
	if err != nil {
		return nil, unavailable("query active entries", err)
	}
	return collectEntries(rows)
}

// FindPending returns all non-expired pending entries, most recently updated
// first.
func (t *Tx) FindPending(ctx context.Context, now time.Time) ([]*Entry, error) {
	rows, err := t.tx.QueryContext(
		ctx,
		`SELECT `+entryColumns+` FROM history_entries
         WHERE status = ? AND last_updated_at >= ?
         ORDER BY last_updated_at DESC`,
		StatusPending,
		t.cutoff(now),
	)
	if err != nil {
		return nil, unavailable("query pending entries", err)
	}
	return collectEntries(rows)
}

// Insert records a new pending entry and deletes any failed entries for the
// same identity, so a retry supersedes the failure it replaces.
func (t *Tx) Insert(ctx context.Context, entry *Entry, now time.Time) error {
	if entry == nil {
		return errors.New("entry is nil")
	}
	if entry.Status == "" {
		entry.Status = StatusPending
	}
	if entry.FirstSeenAt.IsZero() {
		entry.FirstSeenAt = now
	}
	entry.LastUpdatedAt = now

	if _, err := t.tx.ExecContext(
		ctx,
		`DELETE FROM history_entries WHERE identity = ? AND status = ?`,
		entry.Identity,
		StatusFailed,
	); err != nil {
		return unavailable("supersede failed entries", err)
	}

	res, err := t.tx.ExecContext(
		ctx,
		`INSERT INTO history_entries (
            identity, display_name, normalized_name, duplicate_key,
            category, job_id, status, first_seen_at, last_updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Identity,
		entry.DisplayName,
		entry.NormalizedName,
		nullableString(entry.DuplicateKey),
		nullableString(entry.Category),
		nullableString(entry.JobID),
		entry.Status,
		entry.FirstSeenAt.UTC().Format(timeLayout),
		entry.LastUpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return unavailable("insert entry", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return unavailable("last insert id", err)
	}
	entry.ID = id
	return nil
}

// UpdateStatus transitions a pending entry to a terminal status. Transitions
// out of success or failed are rejected.
func (t *Tx) UpdateStatus(ctx context.Context, id int64, to Status, now time.Time) error {
	var current Status
	err := t.tx.QueryRowContext(ctx, `SELECT status FROM history_entries WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("entry %d not found", id)
	}
	if err != nil {
		return unavailable("read entry status", err)
	}
	if !CanTransition(current, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, to)
	}
	if _, err := t.tx.ExecContext(
		ctx,
		`UPDATE history_entries SET status = ?, last_updated_at = ? WHERE id = ?`,
		to,
		now.UTC().Format(timeLayout),
		id,
	); err != nil {
		return unavailable("update entry status", err)
	}
	return nil
}

// Prune physically removes expired entries.
func (t *Tx) Prune(ctx context.Context, now time.Time) (int64, error) {
	res, err := t.tx.ExecContext(
		ctx,
		`DELETE FROM history_entries WHERE last_updated_at < ?`,
		t.cutoff(now),
	)
	if err != nil {
		return 0, unavailable("prune expired entries", err)
	}
	return res.RowsAffected()
}

func collectEntries(rows *sql.Rows) ([]*Entry, error) {
	defer rows.Close()
	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, unavailable("scan entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate entries", err)
	}
	return entries, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id         int64
		identity   string
		display    string
		normalized string
		dupKey     sql.NullString
		category   sql.NullString
		jobID      sql.NullString
		statusStr  string
		firstRaw   string
		updatedRaw string
	)
	if err := scanner.Scan(&id, &identity, &display, &normalized, &dupKey, &category, &jobID, &statusStr, &firstRaw, &updatedRaw); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:             id,
		Identity:       identity,
		DisplayName:    display,
		NormalizedName: normalized,
		DuplicateKey:   dupKey.String,
		Category:       category.String,
		JobID:          jobID.String,
		Status:         Status(statusStr),
	}
	if first, err := parseTimeString(firstRaw); err == nil {
		entry.FirstSeenAt = first
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		entry.LastUpdatedAt = updated
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

// List returns entries filtered by status set (or all entries when no status
// is provided), most recently updated first. Read-only; no lock is taken.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Entry, error) {
	baseQuery := `SELECT ` + entryColumns + ` FROM history_entries`
	orderClause := ` ORDER BY last_updated_at DESC`

	var (
		rows *sql.Rows
		err  error
	)
	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, unavailable("list entries", err)
	}
	return collectEntries(rows)
}

// Stats returns a count of entries grouped by status.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM history_entries GROUP BY status`)
	if err != nil {
		return nil, unavailable("history stats", err)
	}
	defer rows.Close()

	stats := make(Stats)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, unavailable("scan stats", err)
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Prune removes expired entries under the cross-process lock.
func (s *Store) Prune(ctx context.Context, now time.Time) (int64, error) {
	var removed int64
	err := s.Transact(ctx, func(tx *Tx) error {
		var pruneErr error
		removed, pruneErr = tx.Prune(ctx, now)
		return pruneErr
	})
	return removed, err
}

// Clear removes all entries under the cross-process lock.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	var removed int64
	err := s.Transact(ctx, func(tx *Tx) error {
		res, execErr := tx.tx.ExecContext(ctx, `DELETE FROM history_entries`)
		if execErr != nil {
			return unavailable("clear history", execErr)
		}
		removed, execErr = res.RowsAffected()
		return execErr
	})
	return removed, err
}

// CheckHealth returns diagnostic information about the history database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat history database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("history database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, unavailable("ping history database", err)
	}
	health.DatabaseReadable = true

	var tableName string
	row := s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'history_entries'")
	if err := row.Scan(&tableName); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			health.Error = err.Error()
			return health, unavailable("query table info", err)
		}
	} else {
		health.TableExists = true
	}

	if health.TableExists {
		row = s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM history_entries")
		if err := row.Scan(&health.TotalEntries); err != nil {
			health.Error = err.Error()
			return health, unavailable("count entries", err)
		}
	}

	var integrityResult string
	row = s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, unavailable("integrity check", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
