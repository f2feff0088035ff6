package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"goalspace-backend/pkg/logger"

	_ "modernc.org/sqlite"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	user_id    TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Cache is the local durable mirror of store state: one row per user
// holding the whole JSON-serialized snapshot. It exists so a process
// restart does not lose in-progress session state; it is never
// consulted as an authority once remote data is available.
type Cache struct {
	db  *sql.DB
	log *logger.Logger
}

// OpenCache opens (creating if needed) the snapshot database at path.
func OpenCache(path string, log *logger.Logger) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// A single writer is enough for a snapshot mirror.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &Cache{db: db, log: log.With("component", "cache")}, nil
}

// Save upserts the user's whole snapshot.
func (c *Cache) Save(userID string, snap Snapshot) error {
	state, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	_, err = c.db.Exec(`
		INSERT INTO snapshots (user_id, state, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at
	`, userID, string(state), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Load returns the cached snapshot for a user. Absence (first run) and
// an unparseable row both report ok=false; corruption is logged and
// treated like absence rather than blocking startup.
func (c *Cache) Load(userID string) (Snapshot, bool) {
	var state string
	err := c.db.QueryRow(`SELECT state FROM snapshots WHERE user_id = ?`, userID).Scan(&state)
	if err == sql.ErrNoRows {
		return Snapshot{}, false
	}
	if err != nil {
		c.log.Warn("failed to read snapshot", "user_id", userID, "error", err)
		return Snapshot{}, false
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(state), &snap); err != nil {
		c.log.Warn("discarding corrupt snapshot", "user_id", userID, "error", err)
		return Snapshot{}, false
	}
	return snap, true
}

// Delete removes a user's snapshot (sign-out).
func (c *Cache) Delete(userID string) error {
	if _, err := c.db.Exec(`DELETE FROM snapshots WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}
