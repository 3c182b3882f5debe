/*
Package sqlite provides the SQLite-backed event log and roster.

PURPOSE:
  Durable storage for the attendance system in a single file. The
  clock_events table is the append-only log the engine reconstructs from;
  users and admins back the roster for single-binary deploys.

APPEND-ONLY ENFORCEMENT:
  No UPDATE or DELETE ever touches clock_events. Corrections are new rows;
  the last row per slot wins on replay.

LOG ORDER:
  Queries order by rowid, i.e. by the order appends completed - never by a
  field inside the event. Timestamps are stored as RFC3339 UTC so the
  per-day range scan is a plain string comparison.

WAL MODE:
  The database is opened with WAL so readers (the reminder pass) never
  block the single writer.

USAGE:
  s, err := sqlite.New("./dtr.db")
  defer s.Close()
  engine := dtr.NewEngine(s, s, clock, rules)

SEE ALSO:
  - dtr/store.go: the contracts this implements
  - dtr/store/memory.go: the in-memory twin used in tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hawks/dtr-engine/dtr"
)

// Store implements dtr.EventLog and dtr.RosterStore on one database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Clock events (append-only log; rowid is log order)
	CREATE TABLE IF NOT EXISTS clock_events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		logged_at TEXT NOT NULL,
		kind TEXT NOT NULL,
		input_time TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_clock_events_user_day
		ON clock_events(user_id, logged_at);

	-- Roster
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS admins (
		user_id TEXT PRIMARY KEY
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EVENT LOG
// =============================================================================

const insertEvent = `INSERT INTO clock_events (id, user_id, logged_at, kind, input_time) VALUES (?, ?, ?, ?, ?)`

// Append persists one event.
func (s *Store) Append(ctx context.Context, ev dtr.ClockEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, insertEvent,
		ev.ID, string(ev.User), ev.LoggedAt.UTC().Format(time.RFC3339), string(ev.Kind), ev.InputTime)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// AppendBatch persists several events in one transaction. Either all rows
// land or none do.
func (s *Store) AppendBatch(ctx context.Context, evs []dtr.ClockEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	for _, ev := range evs {
		if _, err := tx.ExecContext(ctx, insertEvent,
			ev.ID, string(ev.User), ev.LoggedAt.UTC().Format(time.RFC3339), string(ev.Kind), ev.InputTime); err != nil {
			tx.Rollback()
			return fmt.Errorf("append batch event: %w", err)
		}
	}
	return tx.Commit()
}

// QueryByUserAndDate returns the user's events for the calendar date, in
// log order. The date's location decides the day boundaries.
func (s *Store) QueryByUserAndDate(ctx context.Context, user dtr.UserID, date time.Time) ([]dtr.ClockEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	y, mo, d := date.Date()
	dayStart := time.Date(y, mo, d, 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, logged_at, kind, input_time
		FROM clock_events
		WHERE user_id = ? AND logged_at >= ? AND logged_at < ?
		ORDER BY rowid`,
		string(user), dayStart.UTC().Format(time.RFC3339), dayEnd.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []dtr.ClockEvent
	for rows.Next() {
		var ev dtr.ClockEvent
		var userID, loggedAt, kind string
		if err := rows.Scan(&ev.ID, &userID, &loggedAt, &kind, &ev.InputTime); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		t, err := time.Parse(time.RFC3339, loggedAt)
		if err != nil {
			return nil, fmt.Errorf("parse logged_at %q: %w", loggedAt, err)
		}
		ev.User = dtr.UserID(userID)
		ev.LoggedAt = t.In(date.Location())
		ev.Kind = dtr.EventKind(kind)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// =============================================================================
// ROSTER
// =============================================================================

// ListUsers returns all registered users ordered by display name.
func (s *Store) ListUsers(ctx context.Context) ([]dtr.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, display_name FROM users ORDER BY display_name`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []dtr.UserProfile
	for rows.Next() {
		var p dtr.UserProfile
		var id string
		if err := rows.Scan(&id, &p.DisplayName); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		p.ID = dtr.UserID(id)
		users = append(users, p)
	}
	return users, rows.Err()
}

// Lookup returns the profile for id, or nil when not registered.
func (s *Store) Lookup(ctx context.Context, id dtr.UserID) (*dtr.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var name string
	err := s.db.QueryRowContext(ctx, `SELECT display_name FROM users WHERE id = ?`, string(id)).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return &dtr.UserProfile{ID: id, DisplayName: name}, nil
}

// IsAdmin reports whether id is in the admins table.
func (s *Store) IsAdmin(ctx context.Context, id dtr.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM admins WHERE user_id = ?`, string(id)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup admin: %w", err)
	}
	return true, nil
}

// AddUser registers a user. Fails on a duplicate ID.
func (s *Store) AddUser(ctx context.Context, p dtr.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id, display_name) VALUES (?, ?)`,
		string(p.ID), p.DisplayName)
	if err != nil {
		return fmt.Errorf("add user: %w", err)
	}
	return nil
}

// Rename changes a user's display name.
func (s *Store) Rename(ctx context.Context, id dtr.UserID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE users SET display_name = ? WHERE id = ?`, name, string(id))
	if err != nil {
		return fmt.Errorf("rename user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return dtr.ErrUnknownUser
	}
	return nil
}

// Remove deregisters a user. Their clock events stay in the log.
func (s *Store) Remove(ctx context.Context, id dtr.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("remove user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return dtr.ErrUnknownUser
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM admins WHERE user_id = ?`, string(id))
	return err
}

// SetAdmin grants or revokes admin privileges.
func (s *Store) SetAdmin(ctx context.Context, id dtr.UserID, admin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if admin {
		_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO admins (user_id) VALUES (?)`, string(id))
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM admins WHERE user_id = ?`, string(id))
	return err
}
