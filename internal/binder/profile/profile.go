// Package profile defines platform-level route profiles: shareable templates
// of routing chains referenced, never owned, by binders.
package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/showbinder/internal/binder/route"
	apperrors "github.com/louisbranch/showbinder/internal/errors"
)

var (
	// ErrEmptyName indicates a missing profile name.
	ErrEmptyName = apperrors.New(apperrors.CodeProfileNameEmpty, "profile name is required")
	// ErrEmptyID indicates a missing profile id.
	ErrEmptyID = apperrors.New(apperrors.CodeProfileEmptyID, "profile id is required")
	// ErrDuplicateSignal indicates two chains for the same signal number.
	ErrDuplicateSignal = apperrors.New(apperrors.CodeProfileDuplicateSignal, "profile already has a chain for this signal")
	// ErrInvalidSignal indicates a non-positive signal number.
	ErrInvalidSignal = apperrors.New(apperrors.CodeRouteInvalidSignal, "signal number must be positive")
)

// Profile is a platform-wide routing template. At most one profile carries
// the platform default flag.
type Profile struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	IsDefault bool                 `json:"isDefault,omitempty"`
	Routes    []route.ProfileRoute `json:"routes"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// CreateInput describes the input for creating a profile.
type CreateInput struct {
	Name      string
	IsDefault bool
	Routes    []route.ProfileRoute
}

// Create validates input and builds a new profile with generated identity.
func Create(input CreateInput, now func() time.Time, idGenerator func() (string, error)) (Profile, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Profile{}, ErrEmptyName
	}
	seen := make(map[int]struct{}, len(input.Routes))
	for _, r := range input.Routes {
		if r.Signal <= 0 {
			return Profile{}, ErrInvalidSignal.WithMetadata(map[string]string{"signal": fmt.Sprintf("%d", r.Signal)})
		}
		if _, dup := seen[r.Signal]; dup {
			return Profile{}, ErrDuplicateSignal.WithMetadata(map[string]string{"signal": fmt.Sprintf("%d", r.Signal)})
		}
		seen[r.Signal] = struct{}{}
	}

	id, err := idGenerator()
	if err != nil {
		return Profile{}, fmt.Errorf("generate profile id: %w", err)
	}
	routes := route.CloneRoutes(input.Routes)
	for i := range routes {
		if routes[i].ID == "" {
			routeID, err := idGenerator()
			if err != nil {
				return Profile{}, fmt.Errorf("generate route id: %w", err)
			}
			routes[i].ID = routeID
		}
	}
	route.SortBySignal(routes)

	createdAt := now().UTC()
	return Profile{
		ID:        id,
		Name:      name,
		IsDefault: input.IsDefault,
		Routes:    routes,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// RouteBySignal returns the chain for a signal number.
func (p Profile) RouteBySignal(signal int) (route.ProfileRoute, bool) {
	for _, r := range p.Routes {
		if r.Signal == signal {
			return r, true
		}
	}
	return route.ProfileRoute{}, false
}

// RouteByID returns the chain with the given route id.
func (p Profile) RouteByID(id string) (route.ProfileRoute, bool) {
	for _, r := range p.Routes {
		if r.ID == id {
			return r, true
		}
	}
	return route.ProfileRoute{}, false
}

// UpsertRoute adds or replaces the chain for the incoming route's signal
// number, preserving the exactly-one-chain-per-signal invariant.
func (p *Profile) UpsertRoute(incoming route.ProfileRoute, now func() time.Time) error {
	if incoming.Signal <= 0 {
		return ErrInvalidSignal.WithMetadata(map[string]string{"signal": fmt.Sprintf("%d", incoming.Signal)})
	}
	replaced := false
	for i, r := range p.Routes {
		if r.Signal != incoming.Signal {
			continue
		}
		if incoming.ID == "" {
			incoming.ID = r.ID
		}
		p.Routes[i] = incoming.Clone()
		replaced = true
		break
	}
	if !replaced {
		p.Routes = append(p.Routes, incoming.Clone())
		route.SortBySignal(p.Routes)
	}
	p.UpdatedAt = now().UTC()
	return nil
}

// SetRouteField writes one field of the chain with the given route id.
func (p *Profile) SetRouteField(routeID, field, value string, now func() time.Time) error {
	for i := range p.Routes {
		if p.Routes[i].ID != routeID {
			continue
		}
		if err := p.Routes[i].SetField(field, value); err != nil {
			return err
		}
		p.UpdatedAt = now().UTC()
		return nil
	}
	return apperrors.New(apperrors.CodeNotFound, "profile route not found").
		WithMetadata(map[string]string{"route_id": routeID})
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() Profile {
	clone := p
	clone.Routes = route.CloneRoutes(p.Routes)
	return clone
}
