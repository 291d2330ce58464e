// Package lock freezes binder state into versioned immutable snapshots and
// diffs any two frozen states against each other or against the live binder.
package lock

import (
	"fmt"
	"time"

	"github.com/louisbranch/showbinder/internal/binder"
	apperrors "github.com/louisbranch/showbinder/internal/errors"
)

var (
	// ErrUnlockReasonRequired indicates an unlock attempt without a reason.
	ErrUnlockReasonRequired = apperrors.New(apperrors.CodeUnlockReasonRequired, "unlock reason is required")
	// ErrNotLocked indicates an unlock attempt on an unlocked binder.
	ErrNotLocked = apperrors.New(apperrors.CodeUnlockNotLocked, "binder is not locked")
)

// Snapshot is one immutable point-in-time capture of a binder, taken at the
// moment of a successful lock.
type Snapshot struct {
	ID       string          `json:"id"`
	BinderID string          `json:"binderId"`
	Version  int             `json:"version"`
	LockedAt time.Time       `json:"lockedAt"`
	LockedBy string          `json:"lockedBy,omitempty"`
	State    binder.Captured `json:"state"`
}

// Clone returns a deep copy of the snapshot. Stores retain and return
// clones so history stays immutable even when callers edit what they got.
func (s Snapshot) Clone() Snapshot {
	clone := s
	clone.State = s.State.Clone()
	return clone
}

// SnapshotID derives the stable snapshot identifier for a lock version.
func SnapshotID(version int) string {
	return fmt.Sprintf("v%d", version)
}

// Apply locks the binder and captures its state. It mutates the lock
// bookkeeping on b and returns the snapshot to retain. Callers are expected
// to gate this behind the readiness lock check.
func Apply(b *binder.Binder, lockedBy string, now func() time.Time) Snapshot {
	lockedAt := now().UTC()
	b.Lock.Locked = true
	b.Lock.LockedAt = lockedAt
	b.Lock.LockedBy = lockedBy
	b.Lock.Version++
	b.Lock.UnlockReason = ""
	b.UpdatedAt = lockedAt
	return Snapshot{
		ID:       SnapshotID(b.Lock.Version),
		BinderID: b.ID,
		Version:  b.Lock.Version,
		LockedAt: lockedAt,
		LockedBy: lockedBy,
		State:    b.Capture(),
	}
}

// Release unlocks the binder, recording the mandatory reason. Version and
// snapshot history are preserved.
func Release(b *binder.Binder, reason string, now func() time.Time) error {
	if reason == "" {
		return ErrUnlockReasonRequired
	}
	if !b.Lock.Locked {
		return ErrNotLocked
	}
	b.Lock.Locked = false
	b.Lock.UnlockReason = reason
	b.UpdatedAt = now().UTC()
	return nil
}
