package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
	"github.com/ericfisherdev/tcpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SelectionStore = (*SelectionRepo)(nil)

// SelectionRepo is the PostgreSQL implementation of the SelectionStore port interface.
type SelectionRepo struct {
	db *sql.DB
}

// NewSelectionRepo creates a new SelectionRepo backed by db.
func NewSelectionRepo(db *sql.DB) *SelectionRepo {
	return &SelectionRepo{db: db}
}

// BulkReplace atomically replaces the whole selection with ids.
func (r *SelectionRepo) BulkReplace(ctx context.Context, ids []string, meta map[string]model.SelectionMeta) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_build_selections`); err != nil {
		return fmt.Errorf("clear selections: %w", err)
	}

	const insertQuery = `
		INSERT INTO user_build_selections (build_type_id, project_name, build_name, is_selected, selected_at, last_updated)
		VALUES ($1, $2, $3, TRUE, $4, $4)
		ON CONFLICT (build_type_id) DO UPDATE SET
			project_name = EXCLUDED.project_name,
			build_name = EXCLUDED.build_name,
			last_updated = EXCLUDED.last_updated
	`

	now := time.Now().UTC()
	for _, id := range ids {
		m := meta[id]
		if _, err := tx.ExecContext(ctx, insertQuery, id, m.ProjectName, m.BuildName, now); err != nil {
			return fmt.Errorf("insert selection %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// SelectedIDs returns the IDs marked selected, ordered by ID.
func (r *SelectionRepo) SelectedIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT build_type_id FROM user_build_selections WHERE is_selected ORDER BY build_type_id`)
	if err != nil {
		return nil, fmt.Errorf("list selected ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan selected id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate selected ids: %w", err)
	}

	return ids, nil
}

// List returns every stored selection ordered by project then build name.
func (r *SelectionRepo) List(ctx context.Context) ([]model.Selection, error) {
	const query = `
		SELECT build_type_id, project_name, build_name, is_selected, selected_at, last_updated
		FROM user_build_selections
		ORDER BY project_name, build_name, build_type_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	defer rows.Close()

	var selections []model.Selection
	for rows.Next() {
		var sel model.Selection
		if err := rows.Scan(&sel.BuildTypeID, &sel.ProjectName, &sel.BuildName,
			&sel.Selected, &sel.SelectedAt, &sel.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		sel.SelectedAt = sel.SelectedAt.UTC()
		sel.UpdatedAt = sel.UpdatedAt.UTC()
		selections = append(selections, sel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate selections: %w", err)
	}

	return selections, nil
}
