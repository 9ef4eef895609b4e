package driven

import (
	"context"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

// PreferenceStore defines the driven port for dashboard display preferences.
// GetDisplay returns the defaults when nothing has been saved.
type PreferenceStore interface {
	GetDisplay(ctx context.Context) (model.DisplayPreferences, error)
	SetDisplay(ctx context.Context, prefs model.DisplayPreferences) error
}
