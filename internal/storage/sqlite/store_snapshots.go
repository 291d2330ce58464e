package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/louisbranch/showbinder/internal/binder"
	"github.com/louisbranch/showbinder/internal/binder/lock"
	"github.com/louisbranch/showbinder/internal/storage"
)

// AppendSnapshot stores one immutable lock snapshot. Versions are unique per
// binder; re-inserting an existing version fails rather than overwriting.
func (s *Store) AppendSnapshot(ctx context.Context, record lock.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	state, err := json.Marshal(record.State)
	if err != nil {
		return fmt.Errorf("marshal snapshot state: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO lock_snapshots (binder_id, version, id, locked_at, locked_by, state)
VALUES (?, ?, ?, ?, ?, ?)
`,
		record.BinderID,
		record.Version,
		record.ID,
		toMillis(record.LockedAt),
		record.LockedBy,
		string(state),
	)
	if err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns a binder's snapshots newest first.
func (s *Store) ListSnapshots(ctx context.Context, binderID string) ([]lock.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT binder_id, version, id, locked_at, locked_by, state
FROM lock_snapshots
WHERE binder_id = ?
ORDER BY version DESC
`, binderID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var records []lock.Snapshot
	for rows.Next() {
		record, err := scanSnapshotRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return records, nil
}

// GetSnapshot retrieves one snapshot by lock version.
func (s *Store) GetSnapshot(ctx context.Context, binderID string, version int) (lock.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return lock.Snapshot{}, err
	}
	if s == nil || s.sqlDB == nil {
		return lock.Snapshot{}, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT binder_id, version, id, locked_at, locked_by, state
FROM lock_snapshots
WHERE binder_id = ? AND version = ?
`, binderID, version)
	if err != nil {
		return lock.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return lock.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
		}
		return lock.Snapshot{}, storage.ErrNotFound
	}
	return scanSnapshotRow(rows)
}

func scanSnapshotRow(rows *sql.Rows) (lock.Snapshot, error) {
	var (
		record   lock.Snapshot
		lockedAt int64
		state    string
	)
	if err := rows.Scan(&record.BinderID, &record.Version, &record.ID, &lockedAt, &record.LockedBy, &state); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lock.Snapshot{}, storage.ErrNotFound
		}
		return lock.Snapshot{}, fmt.Errorf("scan snapshot row: %w", err)
	}
	record.LockedAt = fromMillis(lockedAt)
	var captured binder.Captured
	if err := json.Unmarshal([]byte(state), &captured); err != nil {
		return lock.Snapshot{}, fmt.Errorf("unmarshal snapshot state: %w", err)
	}
	record.State = captured
	return record, nil
}
