package state

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS playback_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			volume REAL NOT NULL DEFAULT 1.0,
			rate REAL NOT NULL DEFAULT 1.0,
			source TEXT,
			position_ms INTEGER,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS recent_sources (
			locator TEXT PRIMARY KEY,
			title TEXT,
			play_count INTEGER NOT NULL DEFAULT 1,
			played_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_recent_sources_played_at ON recent_sources(played_at DESC);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
