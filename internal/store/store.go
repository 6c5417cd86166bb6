// internal/store/store.go
// Package store persists per-session keying aggregates in SQLite.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Session is one completed keying run. Only aggregates are recorded; the
// decoded transcript never reaches the database.
type Session struct {
	ID         int64
	StartedAt  time.Time
	EndedAt    time.Time
	Mode       string
	WPM        int
	Characters int
	Words      int
	Unknown    int
	// Accuracy is the mean press score over the session, in [0,1].
	Accuracy float64
	// TimedElements is how many straight-key presses produced Accuracy.
	// Zero in paddle modes, where element timing is machine-generated.
	TimedElements int
}

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			characters INTEGER NOT NULL,
			words INTEGER NOT NULL,
			unknown INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			timed_elements INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a completed session and returns its row ID.
func (s *Store) InsertSession(ctx context.Context, sess Session) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (started_at, ended_at, mode, wpm, characters, words, unknown, accuracy, timed_elements)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.StartedAt.Format(time.RFC3339Nano),
		sess.EndedAt.Format(time.RFC3339Nano),
		sess.Mode,
		sess.WPM,
		sess.Characters,
		sess.Words,
		sess.Unknown,
		sess.Accuracy,
		sess.TimedElements,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSessions returns stored sessions, most recent first. A limit of zero
// or less returns all of them.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	query := `SELECT id, started_at, ended_at, mode, wpm, characters, words, unknown, accuracy, timed_elements
		FROM sessions
		ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var startedAt, endedAt string
		if err := rows.Scan(&sess.ID, &startedAt, &endedAt, &sess.Mode, &sess.WPM,
			&sess.Characters, &sess.Words, &sess.Unknown, &sess.Accuracy, &sess.TimedElements); err != nil {
			return nil, err
		}
		sess.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, err
		}
		sess.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
