package state

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/llehouerou/starlight/internal/db"
)

// PlaybackState is what is restored on the next start.
type PlaybackState struct {
	Volume    float64
	Rate      float64
	Source    string
	Position  time.Duration
	UpdatedAt time.Time
}

// GetPlayback returns the saved state, or full volume at normal rate when
// nothing was saved yet.
func (m *Manager) GetPlayback() (*PlaybackState, error) {
	return getPlayback(m.db)
}

func getPlayback(conn *sql.DB) (*PlaybackState, error) {
	var (
		s         PlaybackState
		source    sql.NullString
		position  sql.NullInt64
		updatedAt int64
	)
	err := conn.QueryRow(`
		SELECT volume, rate, source, position_ms, updated_at
		FROM playback_state WHERE id = 1
	`).Scan(&s.Volume, &s.Rate, &source, &position, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &PlaybackState{Volume: 1.0, Rate: 1.0}, nil
	}
	if err != nil {
		return nil, err
	}

	s.Source = db.NullStringValue(source)
	s.Position = db.NullMillis(position)
	s.UpdatedAt = time.Unix(updatedAt, 0)
	return &s, nil
}

func savePlayback(conn *sql.DB, s PlaybackState) error {
	source := s.Source
	// Inline audio is not worth keeping around.
	if isInline(source) {
		source = ""
	}
	var position sql.NullInt64
	if source != "" {
		position = sql.NullInt64{Int64: db.Millis(s.Position), Valid: true}
	}

	_, err := conn.Exec(`
		INSERT INTO playback_state (id, volume, rate, source, position_ms, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			rate = excluded.rate,
			source = excluded.source,
			position_ms = excluded.position_ms,
			updated_at = excluded.updated_at
	`, s.Volume, s.Rate, db.NullString(source), position, time.Now().Unix())
	return err
}

func isInline(locator string) bool {
	return len(locator) >= 5 && strings.EqualFold(locator[:5], "data:")
}
