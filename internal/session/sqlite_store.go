package session

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS session (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	token TEXT NOT NULL,
	user_id TEXT NOT NULL,
	username TEXT NOT NULL
);`

// SQLiteStore persists the session in a single-row SQLite table so it
// survives process restarts, the way a mobile keychain would.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the session database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Save upserts the single session row. The write is a single statement, so
// readers never observe a partial session.
func (s *SQLiteStore) Save(sess Session) error {
	_, err := s.db.Exec(`
		INSERT INTO session (id, token, user_id, username) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token,
			user_id = excluded.user_id, username = excluded.username`,
		sess.Token, sess.UserID, sess.Username)
	return err
}

// Get loads the persisted session. Any read failure is reported as absent.
func (s *SQLiteStore) Get() (Session, bool) {
	var sess Session
	err := s.db.QueryRow(`SELECT token, user_id, username FROM session WHERE id = 1`).
		Scan(&sess.Token, &sess.UserID, &sess.Username)
	if err != nil {
		return Session{}, false
	}
	if sess.Token == "" {
		return Session{}, false
	}
	return sess, true
}

// Clear removes the persisted session.
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM session WHERE id = 1`)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
