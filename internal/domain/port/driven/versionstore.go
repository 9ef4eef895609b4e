package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

// ErrVersionConfigCorrupt indicates the persisted version document could not be parsed.
var ErrVersionConfigCorrupt = errors.New("version config corrupt")

// VersionStore defines the driven port for the current-versions document.
// Load returns nil, nil when no document has been saved yet.
type VersionStore interface {
	Load(ctx context.Context) (*model.VersionConfig, error)
	Save(ctx context.Context, cfg model.VersionConfig) error
}
