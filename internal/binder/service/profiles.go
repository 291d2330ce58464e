package service

import (
	"context"
	"fmt"

	"github.com/louisbranch/showbinder/internal/audit"
	"github.com/louisbranch/showbinder/internal/binder/profile"
	"github.com/louisbranch/showbinder/internal/binder/route"
	"github.com/louisbranch/showbinder/internal/storage"
)

// CreateProfile creates a route profile. Flagging it as the default clears
// the flag from any profile that currently carries it.
func (s *Service) CreateProfile(ctx context.Context, actor string, input profile.CreateInput) (profile.Profile, error) {
	record, err := profile.Create(input, s.now, s.newID)
	if err != nil {
		return profile.Profile{}, err
	}
	if record.IsDefault {
		if err := s.clearDefaultProfile(ctx); err != nil {
			return profile.Profile{}, err
		}
	}
	if err := s.store.PutProfile(ctx, record); err != nil {
		return profile.Profile{}, err
	}
	s.emit(ctx, storage.AuditEntry{
		Actor:      actor,
		Action:     "profile.create",
		TargetType: audit.TargetProfile,
		TargetID:   record.ID,
		Summary:    fmt.Sprintf("created profile %q with %d routes", record.Name, len(record.Routes)),
	})
	return record, nil
}

// GetProfile retrieves a profile by id.
func (s *Service) GetProfile(ctx context.Context, profileID string) (profile.Profile, error) {
	return s.store.GetProfile(ctx, profileID)
}

// ListProfiles returns all profiles.
func (s *Service) ListProfiles(ctx context.Context) ([]profile.Profile, error) {
	return s.store.ListProfiles(ctx)
}

// SetDefaultProfile moves the platform default flag to the given profile.
func (s *Service) SetDefaultProfile(ctx context.Context, actor, profileID string) (profile.Profile, error) {
	record, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return profile.Profile{}, err
	}
	if err := s.clearDefaultProfile(ctx); err != nil {
		return profile.Profile{}, err
	}
	record.IsDefault = true
	record.UpdatedAt = s.now().UTC()
	if err := s.store.PutProfile(ctx, record); err != nil {
		return profile.Profile{}, err
	}
	s.emit(ctx, storage.AuditEntry{
		Actor:      actor,
		Action:     "profile.set_default",
		TargetType: audit.TargetProfile,
		TargetID:   record.ID,
		Summary:    fmt.Sprintf("made %q the platform default profile", record.Name),
	})
	return record, nil
}

func (s *Service) clearDefaultProfile(ctx context.Context) error {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return err
	}
	for _, existing := range profiles {
		if !existing.IsDefault {
			continue
		}
		existing.IsDefault = false
		existing.UpdatedAt = s.now().UTC()
		if err := s.store.PutProfile(ctx, existing); err != nil {
			return err
		}
	}
	return nil
}

// UpsertProfileRoute adds or replaces the chain for a signal on a profile.
func (s *Service) UpsertProfileRoute(ctx context.Context, actor, profileID string, incoming route.ProfileRoute) (profile.Profile, error) {
	record, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return profile.Profile{}, err
	}
	if incoming.ID == "" {
		generated, err := s.newID()
		if err != nil {
			return profile.Profile{}, fmt.Errorf("generate route id: %w", err)
		}
		incoming.ID = generated
	}
	if err := record.UpsertRoute(incoming, s.now); err != nil {
		return profile.Profile{}, err
	}
	if err := s.store.PutProfile(ctx, record); err != nil {
		return profile.Profile{}, err
	}
	s.emit(ctx, storage.AuditEntry{
		Actor:      actor,
		Action:     "profile.route_upsert",
		TargetType: audit.TargetProfile,
		TargetID:   record.ID,
		Summary:    fmt.Sprintf("upserted chain for ISO-%d on %q", incoming.Signal, record.Name),
	})
	return record, nil
}
