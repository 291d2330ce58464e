// Package override defines the route configuration mode, the scope choices
// for field edits, and the sparse per-binder route overrides recorded in
// fork_profile mode.
package override

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/showbinder/internal/errors"
)

// Mode selects where a binder's routes come from and where edits land.
// It is a closed enumeration; every mutation dispatches on it exhaustively.
type Mode int

const (
	// ModeUnspecified is the zero value and is never valid for dispatch.
	ModeUnspecified Mode = iota
	// ModeUseDefault reads the platform default profile; routes are
	// read-only from the binder's perspective.
	ModeUseDefault
	// ModeUseProfile reads a named profile; edits write through to the
	// shared profile, never to the binder.
	ModeUseProfile
	// ModeForkProfile layers binder-scoped overrides on top of a profile
	// baseline, leaving the shared profile untouched.
	ModeForkProfile
	// ModeCustom gives the binder its own routes with no profile linkage.
	ModeCustom
)

var modeNames = map[Mode]string{
	ModeUseDefault:  "use_default",
	ModeUseProfile:  "use_profile",
	ModeForkProfile: "fork_profile",
	ModeCustom:      "custom",
}

// ErrInvalidMode indicates an unrecognized route mode.
var ErrInvalidMode = apperrors.New(apperrors.CodeModeInvalid, "route mode is invalid")

// String returns the wire name of the mode.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unspecified"
}

// Valid reports whether the mode is one of the four defined modes.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode parses a wire name into a Mode.
func ParseMode(value string) (Mode, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for mode, name := range modeNames {
		if name == normalized {
			return mode, true
		}
	}
	return ModeUnspecified, false
}

// MarshalText encodes the mode wire name for persisted records.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		if m == ModeUnspecified {
			return []byte(""), nil
		}
		return nil, ErrInvalidMode
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a persisted mode wire name.
func (m *Mode) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*m = ModeUnspecified
		return nil
	}
	mode, ok := ParseMode(string(text))
	if !ok {
		return ErrInvalidMode.WithMetadata(map[string]string{"mode": string(text)})
	}
	*m = mode
	return nil
}

// EditScope is the mandatory two-way choice for field edits in fork_profile
// mode: the caller decides, the resolver never guesses.
type EditScope int

const (
	// ScopeUnspecified means the caller did not choose; fork_profile edits
	// refuse it.
	ScopeUnspecified EditScope = iota
	// ScopeBinder applies the edit to this binder only, as an override.
	ScopeBinder
	// ScopeProfile writes the edit through to the shared profile.
	ScopeProfile
)

// String returns the wire name of the scope.
func (s EditScope) String() string {
	switch s {
	case ScopeBinder:
		return "binder"
	case ScopeProfile:
		return "profile"
	default:
		return "unspecified"
	}
}

// ParseEditScope parses a wire name into an EditScope.
func ParseEditScope(value string) (EditScope, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "binder":
		return ScopeBinder, true
	case "profile":
		return ScopeProfile, true
	default:
		return ScopeUnspecified, false
	}
}

// Disposition is the explicit choice of what happens to recorded overrides
// when a binder switches away from fork_profile mode.
type Disposition int

const (
	// DispositionUnspecified means the caller did not choose.
	DispositionUnspecified Disposition = iota
	// KeepOverrides preserves recorded overrides; they are inert outside
	// fork_profile and reapply if the binder returns to it.
	KeepOverrides
	// DiscardOverrides deletes recorded overrides.
	DiscardOverrides
)

// String returns the wire name of the disposition.
func (d Disposition) String() string {
	switch d {
	case KeepOverrides:
		return "keep"
	case DiscardOverrides:
		return "discard"
	default:
		return "unspecified"
	}
}

// ParseDisposition parses a wire name into a Disposition.
func ParseDisposition(value string) (Disposition, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "keep":
		return KeepOverrides, true
	case "discard":
		return DiscardOverrides, true
	default:
		return DispositionUnspecified, false
	}
}

// RouteOverride is a sparse patch keyed by (binder, route, field) with the
// before/after values recorded for audit. Overrides exist only while a binder
// is in fork_profile mode.
type RouteOverride struct {
	BinderID  string    `json:"binderId"`
	RouteID   string    `json:"routeId"`
	Field     string    `json:"field"`
	OldValue  string    `json:"oldValue,omitempty"`
	NewValue  string    `json:"newValue,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Key returns the unique (binder, route, field) key for the override.
func (o RouteOverride) Key() string {
	return o.BinderID + "/" + o.RouteID + "/" + o.Field
}

// IndexByRoute groups overrides by route id, preserving input order.
func IndexByRoute(overrides []RouteOverride) map[string][]RouteOverride {
	if len(overrides) == 0 {
		return nil
	}
	indexed := make(map[string][]RouteOverride)
	for _, o := range overrides {
		indexed[o.RouteID] = append(indexed[o.RouteID], o)
	}
	return indexed
}
