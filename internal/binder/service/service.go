// Package service orchestrates binder operations over the storage layer:
// mode-aware resolution, field edits, readiness evaluation, lock snapshots,
// and profile administration. Every mutation emits exactly one audit entry.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/louisbranch/showbinder/internal/audit"
	"github.com/louisbranch/showbinder/internal/binder"
	"github.com/louisbranch/showbinder/internal/binder/override"
	"github.com/louisbranch/showbinder/internal/binder/profile"
	"github.com/louisbranch/showbinder/internal/binder/readiness"
	"github.com/louisbranch/showbinder/internal/binder/resolve"
	apperrors "github.com/louisbranch/showbinder/internal/errors"
	"github.com/louisbranch/showbinder/internal/platform/id"
	"github.com/louisbranch/showbinder/internal/storage"
)

// ErrNoDefaultProfile indicates no profile carries the platform default flag.
var ErrNoDefaultProfile = apperrors.New(apperrors.CodeProfileNoDefault, "no default route profile is configured")

// ErrProfileRequired indicates a mode that needs a profile reference.
var ErrProfileRequired = apperrors.New(apperrors.CodeModeProfileRequired, "route mode requires a profile reference")

// Service coordinates binder operations.
type Service struct {
	store       storage.Store
	audit       *audit.Emitter
	now         func() time.Time
	newID       func() (string, error)
	lockPolicy  readiness.LockPolicy
	graphPolicy readiness.GraphPolicy
}

// New creates a service over the given store. The audit emitter may be nil,
// in which case mutations are not recorded.
func New(store storage.Store, emitter *audit.Emitter) *Service {
	return &Service{
		store:       store,
		audit:       emitter,
		now:         time.Now,
		newID:       id.NewID,
		lockPolicy:  readiness.DefaultLockPolicy,
		graphPolicy: readiness.DefaultGraphPolicy,
	}
}

// CreateBinder creates a binder and records the creation.
func (s *Service) CreateBinder(ctx context.Context, actor string, input binder.CreateInput) (binder.Binder, error) {
	record, err := binder.Create(input, s.now, s.newID)
	if err != nil {
		return binder.Binder{}, err
	}
	if record.Mode == override.ModeUseProfile && record.ProfileID == "" {
		return binder.Binder{}, ErrProfileRequired
	}
	if record.ProfileID != "" {
		if _, err := s.store.GetProfile(ctx, record.ProfileID); err != nil {
			return binder.Binder{}, fmt.Errorf("load profile %s: %w", record.ProfileID, err)
		}
	}
	if err := s.store.PutBinder(ctx, record); err != nil {
		return binder.Binder{}, err
	}
	s.emit(ctx, storage.AuditEntry{
		Actor:      actor,
		Action:     "binder.create",
		TargetType: audit.TargetBinder,
		TargetID:   record.ID,
		Summary:    fmt.Sprintf("created binder %q in %s mode", record.Title, record.Mode),
	})
	return record, nil
}

// GetBinder retrieves a binder by id.
func (s *Service) GetBinder(ctx context.Context, binderID string) (binder.Binder, error) {
	return s.store.GetBinder(ctx, binderID)
}

// ListBinders returns all binders.
func (s *Service) ListBinders(ctx context.Context) ([]binder.Binder, error) {
	return s.store.ListBinders(ctx)
}

// Resolve produces the effective routing view for a binder according to its
// configured mode.
func (s *Service) Resolve(ctx context.Context, binderID string) (resolve.Resolution, error) {
	record, err := s.store.GetBinder(ctx, binderID)
	if err != nil {
		return resolve.Resolution{}, err
	}
	return s.resolveBinder(ctx, record)
}

func (s *Service) resolveBinder(ctx context.Context, record binder.Binder) (resolve.Resolution, error) {
	switch record.Mode {
	case override.ModeUseDefault:
		p, err := s.defaultProfile(ctx)
		if err != nil {
			return resolve.Resolution{}, err
		}
		return resolve.Resolution{
			Mode:      record.Mode,
			ProfileID: p.ID,
			ReadOnly:  true,
			Routes:    resolve.FromProfile(p.Routes),
		}, nil
	case override.ModeUseProfile:
		if record.ProfileID == "" {
			return resolve.Resolution{}, ErrProfileRequired
		}
		p, err := s.store.GetProfile(ctx, record.ProfileID)
		if err != nil {
			return resolve.Resolution{}, err
		}
		return resolve.Resolution{
			Mode:      record.Mode,
			ProfileID: p.ID,
			ReadOnly:  true,
			Routes:    resolve.FromProfile(p.Routes),
		}, nil
	case override.ModeForkProfile:
		p, err := s.forkBaseline(ctx, record)
		if err != nil {
			return resolve.Resolution{}, err
		}
		overrides, err := s.store.ListOverrides(ctx, record.ID)
		if err != nil {
			return resolve.Resolution{}, err
		}
		return resolve.Resolution{
			Mode:      record.Mode,
			ProfileID: p.ID,
			Routes:    resolve.Merge(p.Routes, overrides),
			Overrides: overrides,
		}, nil
	case override.ModeCustom:
		return resolve.Resolution{
			Mode:   record.Mode,
			Routes: resolve.FromOwned(record.Routes),
		}, nil
	default:
		return resolve.Resolution{}, override.ErrInvalidMode.WithMetadata(map[string]string{
			"mode": fmt.Sprintf("%d", int(record.Mode)),
		})
	}
}

// forkBaseline loads the profile a fork_profile binder layers overrides on:
// the named profile, or the platform default when none was chosen.
func (s *Service) forkBaseline(ctx context.Context, record binder.Binder) (profile.Profile, error) {
	if record.ProfileID != "" {
		return s.store.GetProfile(ctx, record.ProfileID)
	}
	return s.defaultProfile(ctx)
}

func (s *Service) defaultProfile(ctx context.Context) (profile.Profile, error) {
	p, err := s.store.GetDefaultProfile(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return profile.Profile{}, ErrNoDefaultProfile
		}
		return profile.Profile{}, err
	}
	return p, nil
}

// Readiness evaluates the binder's go/no-go report. Resolution failures from
// incomplete configuration degrade to an evaluation without route-graph
// checks; readiness reads must stay total.
func (s *Service) Readiness(ctx context.Context, binderID string) (readiness.Report, error) {
	record, err := s.store.GetBinder(ctx, binderID)
	if err != nil {
		return readiness.Report{}, err
	}
	in, err := s.readinessInput(ctx, record)
	if err != nil {
		return readiness.Report{}, err
	}
	return readiness.Evaluate(in), nil
}

func (s *Service) readinessInput(ctx context.Context, record binder.Binder) (readiness.Input, error) {
	resolution, err := s.resolveBinder(ctx, record)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeProfileNoDefault) ||
			apperrors.IsCode(err, apperrors.CodeModeProfileRequired) ||
			errors.Is(err, storage.ErrNotFound) {
			in := readiness.InputFromBinder(record, nil)
			in.GraphPolicy = s.graphPolicy
			return in, nil
		}
		return readiness.Input{}, err
	}
	in := readiness.InputFromBinder(record, resolution.ProfileRoutes())
	in.GraphPolicy = s.graphPolicy
	return in, nil
}

// AuditTrail returns the audit entries for a binder or profile, newest first.
func (s *Service) AuditTrail(ctx context.Context, targetID string) ([]storage.AuditEntry, error) {
	return s.store.ListAuditEntries(ctx, targetID)
}

func (s *Service) emit(ctx context.Context, entry storage.AuditEntry) {
	if err := s.audit.Emit(ctx, entry); err != nil {
		// Mutations must not fail because the trail is unavailable.
		log.Printf("audit emit action=%s target=%s: %v", entry.Action, entry.TargetID, err)
	}
}
