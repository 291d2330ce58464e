// Package resolve produces the effective routing view for a binder from its
// configured mode: profile baseline plus binder-scoped overrides, or the
// binder's own routes. Resolution is pure; callers load the inputs.
package resolve

import (
	"sort"

	"github.com/louisbranch/showbinder/internal/binder/override"
	"github.com/louisbranch/showbinder/internal/binder/route"
)

// ResolvedRoute is the read model consumed by editors: a route merged with
// any applicable overrides plus the override bookkeeping.
type ResolvedRoute struct {
	route.ProfileRoute

	// IsOverridden is true iff at least one field of this route has a
	// recorded override in the current binder.
	IsOverridden bool `json:"isOverridden,omitempty"`
	// OverriddenFields lists the field names carrying overrides, sorted.
	OverriddenFields []string `json:"overriddenFields,omitempty"`
}

// Resolution is the effective routing view for one binder.
type Resolution struct {
	Mode      override.Mode            `json:"mode"`
	ProfileID string                   `json:"profileId,omitempty"`
	ReadOnly  bool                     `json:"readOnly,omitempty"`
	Routes    []ResolvedRoute          `json:"routes"`
	Overrides []override.RouteOverride `json:"overrides,omitempty"`
}

// ProfileRoutes strips the resolution back to plain routes, e.g. for
// readiness graph checks or for materializing a custom-mode copy.
func (r Resolution) ProfileRoutes() []route.ProfileRoute {
	routes := make([]route.ProfileRoute, len(r.Routes))
	for i, resolved := range r.Routes {
		routes[i] = resolved.ProfileRoute.Clone()
	}
	return routes
}

// FromProfile builds the resolved view of profile routes with no overrides
// applied, used by use_default and use_profile modes.
func FromProfile(routes []route.ProfileRoute) []ResolvedRoute {
	resolved := make([]ResolvedRoute, len(routes))
	for i, r := range routes {
		resolved[i] = ResolvedRoute{ProfileRoute: r.Clone()}
	}
	return resolved
}

// FromOwned builds the resolved view of binder-owned routes, used by custom
// mode. Routes are independently owned, so overrides never apply.
func FromOwned(routes []route.ProfileRoute) []ResolvedRoute {
	return FromProfile(routes)
}

// Merge layers binder-scoped overrides on top of profile routes field by
// field, producing the fork_profile view. The shared profile routes are
// cloned, never mutated. Overrides naming unknown routes or fields are
// ignored: resolution is total and stale bookkeeping must not block reads.
func Merge(baseRoutes []route.ProfileRoute, overrides []override.RouteOverride) []ResolvedRoute {
	byRoute := override.IndexByRoute(overrides)
	resolved := make([]ResolvedRoute, len(baseRoutes))
	for i, base := range baseRoutes {
		merged := ResolvedRoute{ProfileRoute: base.Clone()}
		for _, o := range byRoute[base.ID] {
			if err := merged.SetField(o.Field, o.NewValue); err != nil {
				continue
			}
			merged.IsOverridden = true
			merged.OverriddenFields = append(merged.OverriddenFields, o.Field)
		}
		sort.Strings(merged.OverriddenFields)
		resolved[i] = merged
	}
	return resolved
}
