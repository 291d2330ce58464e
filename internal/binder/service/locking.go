package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/showbinder/internal/audit"
	"github.com/louisbranch/showbinder/internal/binder"
	"github.com/louisbranch/showbinder/internal/binder/lock"
	"github.com/louisbranch/showbinder/internal/binder/readiness"
	apperrors "github.com/louisbranch/showbinder/internal/errors"
	"github.com/louisbranch/showbinder/internal/storage"
)

// LockOutcome is the result of a lock attempt. A refused lock is a normal
// outcome carrying the unmet conditions, not an error.
type LockOutcome struct {
	Allowed  bool          `json:"allowed"`
	Reasons  []string      `json:"reasons,omitempty"`
	Snapshot lock.Snapshot `json:"snapshot,omitempty"`
}

// Lock re-checks the lock gate and, when allowed, freezes the binder state
// into a new versioned snapshot.
func (s *Service) Lock(ctx context.Context, actor, binderID string) (LockOutcome, error) {
	record, err := s.store.GetBinder(ctx, binderID)
	if err != nil {
		return LockOutcome{}, err
	}

	in, err := s.readinessInput(ctx, record)
	if err != nil {
		return LockOutcome{}, err
	}
	gate := readiness.CanLock(in, s.lockPolicy)
	if !gate.Allowed {
		return LockOutcome{Allowed: false, Reasons: gate.Reasons}, nil
	}

	snapshot := lock.Apply(&record, actor, s.now)
	if err := s.store.AppendSnapshot(ctx, snapshot); err != nil {
		return LockOutcome{}, err
	}
	if err := s.store.PutBinder(ctx, record); err != nil {
		return LockOutcome{}, err
	}
	s.emit(ctx, storage.AuditEntry{
		Actor:      actor,
		Action:     "binder.lock",
		TargetType: audit.TargetBinder,
		TargetID:   record.ID,
		Summary:    fmt.Sprintf("locked binder at version %d", snapshot.Version),
		After:      snapshot.ID,
	})
	return LockOutcome{Allowed: true, Snapshot: snapshot}, nil
}

// Unlock flips the lock off with a mandatory reason. Version and snapshot
// history are preserved.
func (s *Service) Unlock(ctx context.Context, actor, binderID, reason string) (binder.Binder, error) {
	record, err := s.store.GetBinder(ctx, binderID)
	if err != nil {
		return binder.Binder{}, err
	}
	if err := lock.Release(&record, reason, s.now); err != nil {
		return binder.Binder{}, err
	}
	if err := s.store.PutBinder(ctx, record); err != nil {
		return binder.Binder{}, err
	}
	s.emit(ctx, storage.AuditEntry{
		Actor:      actor,
		Action:     "binder.unlock",
		TargetType: audit.TargetBinder,
		TargetID:   record.ID,
		Summary:    fmt.Sprintf("unlocked binder: %s", reason),
	})
	return record, nil
}

// SnapshotHistory returns a binder's lock snapshots, newest first.
func (s *Service) SnapshotHistory(ctx context.Context, binderID string) ([]lock.Snapshot, error) {
	return s.store.ListSnapshots(ctx, binderID)
}

// LiveVersion addresses the live binder state in diff requests.
const LiveVersion = 0

// DiffSnapshots compares two states of a binder across the tracked diff
// categories. Version 0 addresses the live state, any other version a
// snapshot from the lock history.
func (s *Service) DiffSnapshots(ctx context.Context, binderID string, beforeVersion, afterVersion int) ([]lock.Entry, error) {
	before, err := s.stateAtVersion(ctx, binderID, beforeVersion)
	if err != nil {
		return nil, err
	}
	after, err := s.stateAtVersion(ctx, binderID, afterVersion)
	if err != nil {
		return nil, err
	}
	return lock.Diff(before, after), nil
}

func (s *Service) stateAtVersion(ctx context.Context, binderID string, version int) (binder.Captured, error) {
	if version == LiveVersion {
		record, err := s.store.GetBinder(ctx, binderID)
		if err != nil {
			return binder.Captured{}, err
		}
		return record.Capture(), nil
	}
	snapshot, err := s.store.GetSnapshot(ctx, binderID, version)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return binder.Captured{}, apperrors.New(apperrors.CodeSnapshotVersionUnknown, "snapshot version unknown").
				WithMetadata(map[string]string{"version": fmt.Sprintf("%d", version)})
		}
		return binder.Captured{}, err
	}
	return snapshot.State, nil
}
