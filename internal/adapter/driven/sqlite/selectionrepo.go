package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
	"github.com/ericfisherdev/tcpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SelectionStore = (*SelectionRepo)(nil)

// SelectionRepo is the SQLite implementation of the SelectionStore port interface.
type SelectionRepo struct {
	db  *DB
	now func() time.Time
}

// NewSelectionRepo creates a new SelectionRepo backed by the given DB.
func NewSelectionRepo(db *DB) *SelectionRepo {
	return &SelectionRepo{db: db, now: time.Now}
}

// BulkReplace atomically replaces the whole selection with ids.
// It deletes existing rows and inserts the provided ids in a single transaction.
func (r *SelectionRepo) BulkReplace(ctx context.Context, ids []string, meta map[string]model.SelectionMeta) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_build_selections`); err != nil {
		return fmt.Errorf("clear selections: %w", err)
	}

	const insertQuery = `
		INSERT INTO user_build_selections (build_type_id, project_name, build_name, is_selected, selected_at, last_updated)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(build_type_id) DO UPDATE SET
			project_name = excluded.project_name,
			build_name = excluded.build_name,
			last_updated = excluded.last_updated
	`

	now := formatTime(r.now())
	for _, id := range ids {
		m := meta[id]
		if _, err := tx.ExecContext(ctx, insertQuery, id, m.ProjectName, m.BuildName, now, now); err != nil {
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
	const query = `SELECT build_type_id FROM user_build_selections WHERE is_selected = 1 ORDER BY build_type_id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
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

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	defer rows.Close()

	var selections []model.Selection
	for rows.Next() {
		sel, err := scanSelection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		selections = append(selections, *sel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate selections: %w", err)
	}

	return selections, nil
}


// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSelection(s scanner) (*model.Selection, error) {
	var sel model.Selection
	var isSelected int
	var selectedAt, updatedAt string

	if err := s.Scan(&sel.BuildTypeID, &sel.ProjectName, &sel.BuildName, &isSelected, &selectedAt, &updatedAt); err != nil {
		return nil, err
	}

	sel.Selected = isSelected == 1

	var err error
	sel.SelectedAt, err = parseTime(selectedAt)
	if err != nil {
		return nil, fmt.Errorf("parse selected_at: %w", err)
	}
	sel.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse last_updated: %w", err)
	}

	return &sel, nil
}
