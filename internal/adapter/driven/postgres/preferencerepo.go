package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
	"github.com/ericfisherdev/tcpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PreferenceStore = (*PreferenceRepo)(nil)

const displayPrefKey = "build_display"

// PreferenceRepo is the PostgreSQL implementation of the PreferenceStore port interface.
type PreferenceRepo struct {
	db *sql.DB
}

// NewPreferenceRepo creates a new PreferenceRepo backed by db.
func NewPreferenceRepo(db *sql.DB) *PreferenceRepo {
	return &PreferenceRepo{db: db}
}

// GetDisplay returns the stored display preferences or the defaults.
func (r *PreferenceRepo) GetDisplay(ctx context.Context) (model.DisplayPreferences, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT pref_value FROM user_preferences WHERE pref_key = $1`, displayPrefKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultDisplayPreferences(), nil
	}
	if err != nil {
		return model.DisplayPreferences{}, fmt.Errorf("get display preferences: %w", err)
	}

	prefs := model.DefaultDisplayPreferences()
	if err := json.Unmarshal(raw, &prefs); err != nil {
		slog.Warn("stored display preferences corrupt, using defaults", "error", err)
		return model.DefaultDisplayPreferences(), nil
	}

	return prefs, nil
}

// SetDisplay stores the display preferences, replacing any previous value.
func (r *PreferenceRepo) SetDisplay(ctx context.Context, prefs model.DisplayPreferences) error {
	const query = `
		INSERT INTO user_preferences (pref_key, pref_value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (pref_key) DO UPDATE SET pref_value = EXCLUDED.pref_value, updated_at = EXCLUDED.updated_at
	`

	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode display preferences: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, displayPrefKey, string(raw), time.Now().UTC()); err != nil {
		return fmt.Errorf("set display preferences: %w", err)
	}

	return nil
}
