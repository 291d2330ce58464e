// Package memory stores records in memory. It backs tests and single-process
// tooling; the sqlite package is the durable implementation.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/louisbranch/showbinder/internal/binder"
	"github.com/louisbranch/showbinder/internal/binder/lock"
	"github.com/louisbranch/showbinder/internal/binder/override"
	"github.com/louisbranch/showbinder/internal/binder/profile"
	"github.com/louisbranch/showbinder/internal/storage"
)

// Store is an in-memory storage.Store implementation.
type Store struct {
	mu        sync.Mutex
	binders   map[string]binder.Binder
	profiles  map[string]profile.Profile
	overrides map[string]override.RouteOverride
	snapshots map[string][]lock.Snapshot
	audit     []storage.AuditEntry
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		binders:   make(map[string]binder.Binder),
		profiles:  make(map[string]profile.Profile),
		overrides: make(map[string]override.RouteOverride),
		snapshots: make(map[string][]lock.Snapshot),
	}
}

func ctxErr(ctx context.Context) error {
	if ctx != nil {
		return ctx.Err()
	}
	return nil
}

// PutBinder persists a binder record.
func (s *Store) PutBinder(ctx context.Context, record binder.Binder) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	if record.ID == "" {
		return binder.ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.binders[record.ID] = record.Clone()
	return nil
}

// GetBinder retrieves a binder by id.
func (s *Store) GetBinder(ctx context.Context, binderID string) (binder.Binder, error) {
	if err := ctxErr(ctx); err != nil {
		return binder.Binder{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.binders[binderID]
	if !ok {
		return binder.Binder{}, storage.ErrNotFound
	}
	return record.Clone(), nil
}

// ListBinders returns all binders sorted by id.
func (s *Store) ListBinders(ctx context.Context) ([]binder.Binder, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]binder.Binder, 0, len(s.binders))
	for _, record := range s.binders {
		records = append(records, record.Clone())
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// PatchBinder merges a JSON patch into the stored binder blob.
func (s *Store) PatchBinder(ctx context.Context, binderID string, patch []byte) (binder.Binder, error) {
	if err := ctxErr(ctx); err != nil {
		return binder.Binder{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.binders[binderID]
	if !ok {
		return binder.Binder{}, storage.ErrNotFound
	}
	original, err := json.Marshal(record)
	if err != nil {
		return binder.Binder{}, fmt.Errorf("marshal binder: %w", err)
	}
	merged, err := storage.MergePatch(original, patch)
	if err != nil {
		return binder.Binder{}, err
	}
	var patched binder.Binder
	if err := json.Unmarshal(merged, &patched); err != nil {
		return binder.Binder{}, fmt.Errorf("unmarshal merged binder: %w", err)
	}
	patched.ID = binderID
	s.binders[binderID] = patched.Clone()
	return patched, nil
}

// DeleteBinder removes a binder record.
func (s *Store) DeleteBinder(ctx context.Context, binderID string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.binders[binderID]; !ok {
		return storage.ErrNotFound
	}
	delete(s.binders, binderID)
	return nil
}

// PutProfile persists a profile record.
func (s *Store) PutProfile(ctx context.Context, record profile.Profile) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	if record.ID == "" {
		return profile.ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[record.ID] = record.Clone()
	return nil
}

// GetProfile retrieves a profile by id.
func (s *Store) GetProfile(ctx context.Context, profileID string) (profile.Profile, error) {
	if err := ctxErr(ctx); err != nil {
		return profile.Profile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.profiles[profileID]
	if !ok {
		return profile.Profile{}, storage.ErrNotFound
	}
	return record.Clone(), nil
}

// GetDefaultProfile retrieves the profile flagged as the platform default.
func (s *Store) GetDefaultProfile(ctx context.Context) (profile.Profile, error) {
	if err := ctxErr(ctx); err != nil {
		return profile.Profile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.profiles {
		if record.IsDefault {
			return record.Clone(), nil
		}
	}
	return profile.Profile{}, storage.ErrNotFound
}

// ListProfiles returns all profiles sorted by name.
func (s *Store) ListProfiles(ctx context.Context) ([]profile.Profile, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]profile.Profile, 0, len(s.profiles))
	for _, record := range s.profiles {
		records = append(records, record.Clone())
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

// DeleteProfile removes a profile record.
func (s *Store) DeleteProfile(ctx context.Context, profileID string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profileID]; !ok {
		return storage.ErrNotFound
	}
	delete(s.profiles, profileID)
	return nil
}

// PutOverride persists an override keyed by (binder, route, field).
func (s *Store) PutOverride(ctx context.Context, record override.RouteOverride) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[record.Key()] = record
	return nil
}

// ListOverrides returns all overrides for a binder sorted by key.
func (s *Store) ListOverrides(ctx context.Context, binderID string) ([]override.RouteOverride, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []override.RouteOverride
	for _, record := range s.overrides {
		if record.BinderID == binderID {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Key() < records[j].Key() })
	return records, nil
}

// DeleteOverride removes one override. Missing overrides are not an error;
// discarding an override that was never recorded is a no-op.
func (s *Store) DeleteOverride(ctx context.Context, binderID, routeID, field string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, override.RouteOverride{BinderID: binderID, RouteID: routeID, Field: field}.Key())
	return nil
}

// DeleteOverrides removes every override for a binder.
func (s *Store) DeleteOverrides(ctx context.Context, binderID string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, record := range s.overrides {
		if record.BinderID == binderID {
			delete(s.overrides, key)
		}
	}
	return nil
}

// AppendSnapshot prepends a snapshot to the binder's history.
func (s *Store) AppendSnapshot(ctx context.Context, record lock.Snapshot) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[record.BinderID] = append([]lock.Snapshot{record.Clone()}, s.snapshots[record.BinderID]...)
	return nil
}

// ListSnapshots returns a binder's snapshots newest first.
func (s *Store) ListSnapshots(ctx context.Context, binderID string) ([]lock.Snapshot, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.snapshots[binderID]
	records := make([]lock.Snapshot, len(history))
	for i, record := range history {
		records[i] = record.Clone()
	}
	return records, nil
}

// GetSnapshot retrieves one snapshot by lock version.
func (s *Store) GetSnapshot(ctx context.Context, binderID string, version int) (lock.Snapshot, error) {
	if err := ctxErr(ctx); err != nil {
		return lock.Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.snapshots[binderID] {
		if record.Version == version {
			return record.Clone(), nil
		}
	}
	return lock.Snapshot{}, storage.ErrNotFound
}

// PutAuditEntry appends an audit entry.
func (s *Store) PutAuditEntry(ctx context.Context, record storage.AuditEntry) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, record)
	return nil
}

// ListAuditEntries returns entries for a target newest first.
func (s *Store) ListAuditEntries(ctx context.Context, targetID string) ([]storage.AuditEntry, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []storage.AuditEntry
	for i := len(s.audit) - 1; i >= 0; i-- {
		if s.audit[i].TargetID == targetID {
			records = append(records, s.audit[i])
		}
	}
	return records, nil
}
