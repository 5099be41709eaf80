package ledger

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init opens the ledger database and ensures all necessary tables are
// created.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// The audit log is append-only: nothing in this package issues UPDATE
	// or DELETE against moderation_actions.
	schema := []string{
		`CREATE TABLE IF NOT EXISTS moderation_actions (
	          guild_id TEXT NOT NULL,
	          action_id INTEGER NOT NULL,
	          issuer_id TEXT NOT NULL,
	          target_id TEXT NOT NULL,
	          kind TEXT NOT NULL,
	          reason TEXT NOT NULL DEFAULT '',
	          duration_seconds INTEGER NOT NULL DEFAULT 0,
	          timestamp INTEGER NOT NULL,
	          PRIMARY KEY (guild_id, action_id)
	      );`,
		`CREATE INDEX IF NOT EXISTS idx_actions_target ON moderation_actions (guild_id, target_id);`,
		`CREATE TABLE IF NOT EXISTS active_restrictions (
	          user_id TEXT NOT NULL,
	          guild_id TEXT NOT NULL,
	          kind TEXT NOT NULL,
	          expires_at INTEGER NOT NULL,
	          action_id INTEGER NOT NULL,
	          PRIMARY KEY (user_id, guild_id, kind)
	      );`,
		`CREATE INDEX IF NOT EXISTS idx_restrictions_expiry ON active_restrictions (expires_at);`,
		`CREATE TABLE IF NOT EXISTS warnings (
	          warning_id INTEGER PRIMARY KEY AUTOINCREMENT,
	          user_id TEXT NOT NULL,
	          guild_id TEXT NOT NULL,
	          issuer_id TEXT NOT NULL,
	          reason TEXT NOT NULL DEFAULT '',
	          timestamp INTEGER NOT NULL,
	          active INTEGER NOT NULL DEFAULT 1
	      );`,
		`CREATE INDEX IF NOT EXISTS idx_warnings_subject ON warnings (guild_id, user_id, active);`,
		`CREATE TABLE IF NOT EXISTS guild_counters (
	          guild_id TEXT PRIMARY KEY,
	          next_action_id INTEGER NOT NULL
	      );`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create ledger schema: %w", err)
		}
	}

	return db, nil
}
