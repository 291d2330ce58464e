package service

import (
	"context"
	"fmt"

	"github.com/louisbranch/showbinder/internal/audit"
	"github.com/louisbranch/showbinder/internal/binder"
	"github.com/louisbranch/showbinder/internal/binder/override"
	"github.com/louisbranch/showbinder/internal/binder/profile"
	"github.com/louisbranch/showbinder/internal/binder/resolve"
	"github.com/louisbranch/showbinder/internal/binder/route"
	apperrors "github.com/louisbranch/showbinder/internal/errors"
	"github.com/louisbranch/showbinder/internal/storage"
)

// ErrScopeRequired indicates a fork_profile edit without an explicit scope.
var ErrScopeRequired = apperrors.New(apperrors.CodeEditScopeRequired, "edit scope is required in fork_profile mode")

// ErrDispositionRequired indicates a mode switch leaving recorded overrides
// behind without saying what to do with them.
var ErrDispositionRequired = apperrors.New(apperrors.CodeOverrideDispositionInvalid, "override disposition is required when leaving fork_profile")

// FieldEdit describes one route field edit.
type FieldEdit struct {
	Actor    string
	BinderID string
	RouteID  string
	Field    string
	Value    string

	// Scope is mandatory in fork_profile mode: the caller chooses between the
	// binder-only override and the shared profile write-through. It is ignored
	// in every other mode.
	Scope override.EditScope
}

// ApplyFieldEdit routes a field edit to the write path the binder's mode
// dictates and returns the refreshed resolution.
func (s *Service) ApplyFieldEdit(ctx context.Context, edit FieldEdit) (resolve.Resolution, error) {
	record, err := s.store.GetBinder(ctx, edit.BinderID)
	if err != nil {
		return resolve.Resolution{}, err
	}

	switch record.Mode {
	case override.ModeUseDefault:
		p, err := s.defaultProfile(ctx)
		if err != nil {
			return resolve.Resolution{}, err
		}
		if err := s.writeThroughProfile(ctx, p, edit); err != nil {
			return resolve.Resolution{}, err
		}
	case override.ModeUseProfile:
		if record.ProfileID == "" {
			return resolve.Resolution{}, ErrProfileRequired
		}
		p, err := s.store.GetProfile(ctx, record.ProfileID)
		if err != nil {
			return resolve.Resolution{}, err
		}
		if err := s.writeThroughProfile(ctx, p, edit); err != nil {
			return resolve.Resolution{}, err
		}
	case override.ModeForkProfile:
		if err := s.applyForkEdit(ctx, record, edit); err != nil {
			return resolve.Resolution{}, err
		}
	case override.ModeCustom:
		if err := s.applyOwnedEdit(ctx, record, edit); err != nil {
			return resolve.Resolution{}, err
		}
	default:
		return resolve.Resolution{}, override.ErrInvalidMode.WithMetadata(map[string]string{
			"mode": fmt.Sprintf("%d", int(record.Mode)),
		})
	}

	refreshed, err := s.store.GetBinder(ctx, edit.BinderID)
	if err != nil {
		return resolve.Resolution{}, err
	}
	return s.resolveBinder(ctx, refreshed)
}

// writeThroughProfile edits the shared profile's route. Every binder using
// the profile sees the new value.
func (s *Service) writeThroughProfile(ctx context.Context, p profile.Profile, edit FieldEdit) error {
	before, ok := p.RouteByID(edit.RouteID)
	if !ok {
		return apperrors.New(apperrors.CodeNotFound, "profile route not found").
			WithMetadata(map[string]string{"route_id": edit.RouteID})
	}
	oldValue, _ := before.Field(edit.Field)
	if err := p.SetRouteField(edit.RouteID, edit.Field, edit.Value, s.now); err != nil {
		return err
	}
	if err := s.store.PutProfile(ctx, p); err != nil {
		return err
	}
	s.emit(ctx, storage.AuditEntry{
		Actor:      edit.Actor,
		Action:     "profile.route_edit",
		TargetType: audit.TargetProfile,
		TargetID:   p.ID,
		Summary:    fmt.Sprintf("set %s on %s", edit.Field, before.DisplayName()),
		Before:     oldValue,
		After:      edit.Value,
	})
	return nil
}

// applyForkEdit branches on the caller's scope choice: binder-only override
// or shared profile write-through. The resolver never guesses.
func (s *Service) applyForkEdit(ctx context.Context, record binder.Binder, edit FieldEdit) error {
	switch edit.Scope {
	case override.ScopeBinder:
		resolution, err := s.resolveBinder(ctx, record)
		if err != nil {
			return err
		}
		var target *route.ProfileRoute
		for i := range resolution.Routes {
			if resolution.Routes[i].ID == edit.RouteID {
				target = &resolution.Routes[i].ProfileRoute
				break
			}
		}
		if target == nil {
			return apperrors.New(apperrors.CodeNotFound, "route not found in resolved view").
				WithMetadata(map[string]string{"route_id": edit.RouteID})
		}
		oldValue, _ := target.Field(edit.Field)
		routeName := target.DisplayName()
		// Validate the field name and value before recording anything.
		scratch := target.Clone()
		if err := scratch.SetField(edit.Field, edit.Value); err != nil {
			return err
		}
		if err := s.store.PutOverride(ctx, override.RouteOverride{
			BinderID:  record.ID,
			RouteID:   edit.RouteID,
			Field:     edit.Field,
			OldValue:  oldValue,
			NewValue:  edit.Value,
			UpdatedAt: s.now().UTC(),
		}); err != nil {
			return err
		}
		s.emit(ctx, storage.AuditEntry{
			Actor:      edit.Actor,
			Action:     "binder.override_set",
			TargetType: audit.TargetBinder,
			TargetID:   record.ID,
			Summary:    fmt.Sprintf("overrode %s on %s for this binder only", edit.Field, routeName),
			Before:     oldValue,
			After:      edit.Value,
		})
		return nil
	case override.ScopeProfile:
		p, err := s.forkBaseline(ctx, record)
		if err != nil {
			return err
		}
		if err := s.writeThroughProfile(ctx, p, edit); err != nil {
			return err
		}
		// A write-through supersedes any binder-only override for the field.
		return s.store.DeleteOverride(ctx, record.ID, edit.RouteID, edit.Field)
	case override.ScopeUnspecified:
		return ErrScopeRequired
	default:
		return apperrors.New(apperrors.CodeEditScopeInvalid, "edit scope is invalid")
	}
}

// applyOwnedEdit mutates a binder-owned route directly.
func (s *Service) applyOwnedEdit(ctx context.Context, record binder.Binder, edit FieldEdit) error {
	edited := false
	var oldValue, routeName string
	for i := range record.Routes {
		if record.Routes[i].ID != edit.RouteID {
			continue
		}
		oldValue, _ = record.Routes[i].Field(edit.Field)
		routeName = record.Routes[i].DisplayName()
		if err := record.Routes[i].SetField(edit.Field, edit.Value); err != nil {
			return err
		}
		edited = true
		break
	}
	if !edited {
		return apperrors.New(apperrors.CodeNotFound, "binder route not found").
			WithMetadata(map[string]string{"route_id": edit.RouteID})
	}
	record.UpdatedAt = s.now().UTC()
	if err := s.store.PutBinder(ctx, record); err != nil {
		return err
	}
	s.emit(ctx, storage.AuditEntry{
		Actor:      edit.Actor,
		Action:     "binder.route_edit",
		TargetType: audit.TargetBinder,
		TargetID:   record.ID,
		Summary:    fmt.Sprintf("set %s on %s", edit.Field, routeName),
		Before:     oldValue,
		After:      edit.Value,
	})
	return nil
}

// ModeChange describes a route mode switch.
type ModeChange struct {
	Actor     string
	BinderID  string
	Mode      override.Mode
	ProfileID string

	// Disposition says what happens to recorded overrides when leaving
	// fork_profile: keep them inert or discard them. Mandatory whenever
	// overrides exist and the new mode is not fork_profile.
	Disposition override.Disposition
}

// SetRouteMode switches a binder's route mode. Switching into custom
// materializes the current resolved view into binder-owned routes; switching
// away from fork_profile requires an explicit override disposition.
func (s *Service) SetRouteMode(ctx context.Context, change ModeChange) (binder.Binder, error) {
	if !change.Mode.Valid() {
		return binder.Binder{}, override.ErrInvalidMode.WithMetadata(map[string]string{
			"mode": fmt.Sprintf("%d", int(change.Mode)),
		})
	}
	record, err := s.store.GetBinder(ctx, change.BinderID)
	if err != nil {
		return binder.Binder{}, err
	}
	if change.Mode == override.ModeUseProfile && change.ProfileID == "" {
		return binder.Binder{}, ErrProfileRequired
	}
	if change.ProfileID != "" {
		if _, err := s.store.GetProfile(ctx, change.ProfileID); err != nil {
			return binder.Binder{}, fmt.Errorf("load profile %s: %w", change.ProfileID, err)
		}
	}

	previousMode := record.Mode

	leavingFork := previousMode == override.ModeForkProfile && change.Mode != override.ModeForkProfile
	if leavingFork {
		overrides, err := s.store.ListOverrides(ctx, record.ID)
		if err != nil {
			return binder.Binder{}, err
		}
		if len(overrides) > 0 {
			switch change.Disposition {
			case override.DiscardOverrides:
				if err := s.store.DeleteOverrides(ctx, record.ID); err != nil {
					return binder.Binder{}, err
				}
			case override.KeepOverrides:
				// Overrides stay recorded but inert; they reapply if the
				// binder returns to fork_profile.
			default:
				return binder.Binder{}, ErrDispositionRequired
			}
		}
	}

	if change.Mode == override.ModeCustom {
		// Materialize the current effective view so the binder owns its
		// routes from this point on.
		resolution, err := s.resolveBinder(ctx, record)
		if err != nil {
			return binder.Binder{}, err
		}
		record.Routes = resolution.ProfileRoutes()
	}

	record.Mode = change.Mode
	switch change.Mode {
	case override.ModeUseDefault, override.ModeCustom:
		record.ProfileID = ""
	default:
		if change.ProfileID != "" {
			record.ProfileID = change.ProfileID
		}
	}
	record.UpdatedAt = s.now().UTC()

	if err := s.store.PutBinder(ctx, record); err != nil {
		return binder.Binder{}, err
	}
	s.emit(ctx, storage.AuditEntry{
		Actor:      change.Actor,
		Action:     "binder.mode_change",
		TargetType: audit.TargetBinder,
		TargetID:   record.ID,
		Summary:    fmt.Sprintf("switched route mode from %s to %s", previousMode, change.Mode),
		Before:     previousMode.String(),
		After:      change.Mode.String(),
	})
	return record, nil
}
