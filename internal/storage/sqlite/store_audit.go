package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/showbinder/internal/storage"
)

// PutAuditEntry appends one audit entry.
func (s *Store) PutAuditEntry(ctx context.Context, record storage.AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("audit entry id is required")
	}
	if strings.TrimSpace(record.Action) == "" {
		return fmt.Errorf("audit action is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO audit_entries (id, actor, action, target_type, target_id, summary, before_state, after_state, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		record.ID,
		record.Actor,
		record.Action,
		record.TargetType,
		record.TargetID,
		record.Summary,
		record.Before,
		record.After,
		toMillis(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put audit entry: %w", err)
	}
	return nil
}

// ListAuditEntries returns entries for a target newest first.
func (s *Store) ListAuditEntries(ctx context.Context, targetID string) ([]storage.AuditEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, actor, action, target_type, target_id, summary, before_state, after_state, created_at
FROM audit_entries
WHERE target_id = ?
ORDER BY created_at DESC, id DESC
`, targetID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var records []storage.AuditEntry
	for rows.Next() {
		var (
			record    storage.AuditEntry
			createdAt int64
		)
		if err := rows.Scan(&record.ID, &record.Actor, &record.Action, &record.TargetType, &record.TargetID, &record.Summary, &record.Before, &record.After, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		record.CreatedAt = fromMillis(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit rows: %w", err)
	}
	return records, nil
}
