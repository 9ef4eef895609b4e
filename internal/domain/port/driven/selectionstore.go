package driven

import (
	"context"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

// SelectionStore defines the driven port for the persisted build selection.
// BulkReplace replaces the whole set atomically; metadata may omit IDs. An
// empty set clears the selection.
type SelectionStore interface {
	BulkReplace(ctx context.Context, ids []string, meta map[string]model.SelectionMeta) error
	SelectedIDs(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]model.Selection, error)
}
