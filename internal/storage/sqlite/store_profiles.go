package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/showbinder/internal/binder/profile"
	"github.com/louisbranch/showbinder/internal/storage"
)

// PutProfile persists a profile record, replacing any existing row.
func (s *Store) PutProfile(ctx context.Context, record profile.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return profile.ErrEmptyID
	}

	state, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal profile state: %w", err)
	}
	isDefault := 0
	if record.IsDefault {
		isDefault = 1
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO profiles (id, name, is_default, state, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	is_default = excluded.is_default,
	state = excluded.state,
	updated_at = excluded.updated_at
`,
		record.ID,
		record.Name,
		isDefault,
		string(state),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

// GetProfile retrieves a profile by id.
func (s *Store) GetProfile(ctx context.Context, profileID string) (profile.Profile, error) {
	if err := ctx.Err(); err != nil {
		return profile.Profile{}, err
	}
	if s == nil || s.sqlDB == nil {
		return profile.Profile{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT state FROM profiles WHERE id = ?`, profileID)
	return scanProfileState(row)
}

// GetDefaultProfile retrieves the profile flagged as the platform default.
func (s *Store) GetDefaultProfile(ctx context.Context) (profile.Profile, error) {
	if err := ctx.Err(); err != nil {
		return profile.Profile{}, err
	}
	if s == nil || s.sqlDB == nil {
		return profile.Profile{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT state FROM profiles WHERE is_default = 1 LIMIT 1`)
	return scanProfileState(row)
}

// ListProfiles returns all profiles ordered by name.
func (s *Store) ListProfiles(ctx context.Context) ([]profile.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT state FROM profiles ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var records []profile.Profile
	for rows.Next() {
		var state string
		if err := rows.Scan(&state); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		var record profile.Profile
		if err := json.Unmarshal([]byte(state), &record); err != nil {
			return nil, fmt.Errorf("unmarshal profile state: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profile rows: %w", err)
	}
	return records, nil
}

// DeleteProfile removes a profile record.
func (s *Store) DeleteProfile(ctx context.Context, profileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, profileID)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete profile rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanProfileState(row *sql.Row) (profile.Profile, error) {
	var state string
	if err := row.Scan(&state); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return profile.Profile{}, storage.ErrNotFound
		}
		return profile.Profile{}, fmt.Errorf("scan profile state: %w", err)
	}
	var record profile.Profile
	if err := json.Unmarshal([]byte(state), &record); err != nil {
		return profile.Profile{}, fmt.Errorf("unmarshal profile state: %w", err)
	}
	return record, nil
}
