package state

import (
	"context"
	"database/sql"
	"time"

	"github.com/llehouerou/starlight/internal/db"
)

const maxRecentSources = 50

// RecentSource is a previously loaded locator.
type RecentSource struct {
	Locator   string
	Title     string
	PlayCount int
	PlayedAt  time.Time
}

// AddRecent records a load of locator and trims the history.
func (m *Manager) AddRecent(ctx context.Context, locator, title string) error {
	if locator == "" || isInline(locator) {
		return nil
	}
	return db.WithTx(ctx, m.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO recent_sources (locator, title, play_count, played_at)
			VALUES (?, ?, 1, ?)
			ON CONFLICT(locator) DO UPDATE SET
				title = COALESCE(excluded.title, recent_sources.title),
				play_count = recent_sources.play_count + 1,
				played_at = excluded.played_at
		`, locator, db.NullString(title), time.Now().UnixNano())
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			DELETE FROM recent_sources WHERE locator NOT IN (
				SELECT locator FROM recent_sources ORDER BY played_at DESC LIMIT ?
			)
		`, maxRecentSources)
		return err
	})
}

// RecentSources returns up to limit locators, most recent first.
func (m *Manager) RecentSources(limit int) ([]RecentSource, error) {
	if limit <= 0 || limit > maxRecentSources {
		limit = maxRecentSources
	}
	rows, err := m.db.Query(`
		SELECT locator, title, play_count, played_at
		FROM recent_sources
		ORDER BY played_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecentSource
	for rows.Next() {
		var (
			r        RecentSource
			title    sql.NullString
			playedAt int64
		)
		if err := rows.Scan(&r.Locator, &title, &r.PlayCount, &playedAt); err != nil {
			return nil, err
		}
		r.Title = db.NullStringValue(title)
		r.PlayedAt = time.Unix(0, playedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}
