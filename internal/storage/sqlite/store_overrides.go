package sqlite

import (
	"context"
	"fmt"

	"github.com/louisbranch/showbinder/internal/binder/override"
)

// PutOverride persists an override keyed by (binder, route, field).
func (s *Store) PutOverride(ctx context.Context, record override.RouteOverride) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO route_overrides (binder_id, route_id, field, old_value, new_value, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(binder_id, route_id, field) DO UPDATE SET
	old_value = excluded.old_value,
	new_value = excluded.new_value,
	updated_at = excluded.updated_at
`,
		record.BinderID,
		record.RouteID,
		record.Field,
		record.OldValue,
		record.NewValue,
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put override: %w", err)
	}
	return nil
}

// ListOverrides returns all overrides for a binder ordered by route and field.
func (s *Store) ListOverrides(ctx context.Context, binderID string) ([]override.RouteOverride, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT binder_id, route_id, field, old_value, new_value, updated_at
FROM route_overrides
WHERE binder_id = ?
ORDER BY route_id, field
`, binderID)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	var records []override.RouteOverride
	for rows.Next() {
		var (
			record    override.RouteOverride
			updatedAt int64
		)
		if err := rows.Scan(&record.BinderID, &record.RouteID, &record.Field, &record.OldValue, &record.NewValue, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan override row: %w", err)
		}
		record.UpdatedAt = fromMillis(updatedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate override rows: %w", err)
	}
	return records, nil
}

// DeleteOverride removes one override. Deleting an override that was never
// recorded is a no-op.
func (s *Store) DeleteOverride(ctx context.Context, binderID, routeID, field string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
DELETE FROM route_overrides WHERE binder_id = ? AND route_id = ? AND field = ?
`, binderID, routeID, field)
	if err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	return nil
}

// DeleteOverrides removes every override for a binder.
func (s *Store) DeleteOverrides(ctx context.Context, binderID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	_, err := s.sqlDB.ExecContext(ctx, `DELETE FROM route_overrides WHERE binder_id = ?`, binderID)
	if err != nil {
		return fmt.Errorf("delete overrides: %w", err)
	}
	return nil
}
