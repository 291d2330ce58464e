// Package storage defines the persistence interfaces for binders, route
// profiles, overrides, lock snapshots, and the audit trail.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/showbinder/internal/binder"
	"github.com/louisbranch/showbinder/internal/binder/lock"
	"github.com/louisbranch/showbinder/internal/binder/override"
	"github.com/louisbranch/showbinder/internal/binder/profile"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// AuditEntry records one mutation against a binder or profile.
type AuditEntry struct {
	ID         string    `json:"id"`
	Actor      string    `json:"actor,omitempty"`
	Action     string    `json:"action"`
	TargetType string    `json:"targetType"`
	TargetID   string    `json:"targetId"`
	Summary    string    `json:"summary,omitempty"`
	Before     string    `json:"before,omitempty"`
	After      string    `json:"after,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BinderStore persists binder records. Updates to the nested configuration
// blob merge with the stored blob rather than replacing it wholesale.
type BinderStore interface {
	PutBinder(ctx context.Context, record binder.Binder) error
	GetBinder(ctx context.Context, binderID string) (binder.Binder, error)
	ListBinders(ctx context.Context) ([]binder.Binder, error)
	PatchBinder(ctx context.Context, binderID string, patch []byte) (binder.Binder, error)
	DeleteBinder(ctx context.Context, binderID string) error
}

// ProfileStore persists shared route profiles.
type ProfileStore interface {
	PutProfile(ctx context.Context, record profile.Profile) error
	GetProfile(ctx context.Context, profileID string) (profile.Profile, error)
	GetDefaultProfile(ctx context.Context) (profile.Profile, error)
	ListProfiles(ctx context.Context) ([]profile.Profile, error)
	DeleteProfile(ctx context.Context, profileID string) error
}

// OverrideStore persists sparse per-binder route overrides.
type OverrideStore interface {
	PutOverride(ctx context.Context, record override.RouteOverride) error
	ListOverrides(ctx context.Context, binderID string) ([]override.RouteOverride, error)
	DeleteOverride(ctx context.Context, binderID, routeID, field string) error
	DeleteOverrides(ctx context.Context, binderID string) error
}

// SnapshotStore retains immutable lock snapshots in reverse-chronological
// order. Snapshots are append-only and never mutated or deleted.
type SnapshotStore interface {
	AppendSnapshot(ctx context.Context, record lock.Snapshot) error
	ListSnapshots(ctx context.Context, binderID string) ([]lock.Snapshot, error)
	GetSnapshot(ctx context.Context, binderID string, version int) (lock.Snapshot, error)
}

// AuditStore persists the append-only audit trail.
type AuditStore interface {
	PutAuditEntry(ctx context.Context, record AuditEntry) error
	ListAuditEntries(ctx context.Context, targetID string) ([]AuditEntry, error)
}

// Store aggregates every persistence concern behind one value.
type Store interface {
	BinderStore
	ProfileStore
	OverrideStore
	SnapshotStore
	AuditStore
}
