package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/showbinder/internal/binder"
	"github.com/louisbranch/showbinder/internal/storage"
)

// PutBinder persists a binder record, replacing any existing row.
func (s *Store) PutBinder(ctx context.Context, record binder.Binder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return binder.ErrEmptyID
	}

	state, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal binder state: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO binders (id, state, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at
`,
		record.ID,
		string(state),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put binder: %w", err)
	}
	return nil
}

// GetBinder retrieves a binder by id.
func (s *Store) GetBinder(ctx context.Context, binderID string) (binder.Binder, error) {
	if err := ctx.Err(); err != nil {
		return binder.Binder{}, err
	}
	if s == nil || s.sqlDB == nil {
		return binder.Binder{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT state FROM binders WHERE id = ?`, binderID)
	return scanBinderState(row)
}

// ListBinders returns all binders ordered by id.
func (s *Store) ListBinders(ctx context.Context) ([]binder.Binder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT state FROM binders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list binders: %w", err)
	}
	defer rows.Close()

	var records []binder.Binder
	for rows.Next() {
		var state string
		if err := rows.Scan(&state); err != nil {
			return nil, fmt.Errorf("scan binder row: %w", err)
		}
		var record binder.Binder
		if err := json.Unmarshal([]byte(state), &record); err != nil {
			return nil, fmt.Errorf("unmarshal binder state: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate binder rows: %w", err)
	}
	return records, nil
}

// PatchBinder merges a JSON patch into the stored binder blob and returns the
// patched record.
func (s *Store) PatchBinder(ctx context.Context, binderID string, patch []byte) (binder.Binder, error) {
	if err := ctx.Err(); err != nil {
		return binder.Binder{}, err
	}
	if s == nil || s.sqlDB == nil {
		return binder.Binder{}, fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return binder.Binder{}, fmt.Errorf("begin patch transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var state string
	if err := tx.QueryRowContext(ctx, `SELECT state FROM binders WHERE id = ?`, binderID).Scan(&state); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return binder.Binder{}, storage.ErrNotFound
		}
		return binder.Binder{}, fmt.Errorf("load binder state: %w", err)
	}

	merged, err := storage.MergePatch([]byte(state), patch)
	if err != nil {
		return binder.Binder{}, err
	}
	var patched binder.Binder
	if err := json.Unmarshal(merged, &patched); err != nil {
		return binder.Binder{}, fmt.Errorf("unmarshal merged binder: %w", err)
	}
	patched.ID = binderID

	canonical, err := json.Marshal(patched)
	if err != nil {
		return binder.Binder{}, fmt.Errorf("marshal patched binder: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE binders SET state = ?, updated_at = ? WHERE id = ?`,
		string(canonical), toMillis(patched.UpdatedAt), binderID); err != nil {
		return binder.Binder{}, fmt.Errorf("store patched binder: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return binder.Binder{}, fmt.Errorf("commit patch transaction: %w", err)
	}
	return patched, nil
}

// DeleteBinder removes a binder record.
func (s *Store) DeleteBinder(ctx context.Context, binderID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM binders WHERE id = ?`, binderID)
	if err != nil {
		return fmt.Errorf("delete binder: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete binder rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanBinderState(row *sql.Row) (binder.Binder, error) {
	var state string
	if err := row.Scan(&state); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return binder.Binder{}, storage.ErrNotFound
		}
		return binder.Binder{}, fmt.Errorf("scan binder state: %w", err)
	}
	var record binder.Binder
	if err := json.Unmarshal([]byte(state), &record); err != nil {
		return binder.Binder{}, fmt.Errorf("unmarshal binder state: %w", err)
	}
	return record, nil
}
