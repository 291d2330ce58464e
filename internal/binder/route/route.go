// Package route defines the canonical data shapes for signal routing chains:
// the flattened per-signal ProfileRoute used by profiles and resolution, and
// the hop-oriented CanonicalRoute used for detailed editing.
package route

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/louisbranch/showbinder/internal/errors"
)

// EndpointUnresolved is the sentinel value for a transport endpoint that has
// not been assigned yet.
const EndpointUnresolved = "TBD"

// AliasProduction names the production alias slot, the on-air name distinct
// from the engineering name.
const AliasProduction = "production"

// Health describes the operational health of a route or hop.
type Health string

const (
	HealthHealthy Health = "healthy"
	HealthWarn    Health = "warn"
	HealthDown    Health = "down"
	HealthUnknown Health = "unknown"
)

// healthRank orders health values from least to most severe.
var healthRank = map[Health]int{
	HealthHealthy: 0,
	HealthUnknown: 1,
	HealthWarn:    2,
	HealthDown:    3,
}

// NormalizeHealth parses a health string, reporting whether it is valid.
func NormalizeHealth(value string) (Health, bool) {
	h := Health(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := healthRank[h]; !ok {
		return HealthUnknown, false
	}
	return h, true
}

// WorstHealth returns the more severe of two health values.
func WorstHealth(a, b Health) Health {
	if healthRank[b] > healthRank[a] {
		return b
	}
	return a
}

// ProfileRoute is the flattened canonical chain for one physical signal:
// source identifiers, transmit leg, transport, receive-side assignment, and
// the downstream production-switcher mapping. All hop fields are optional
// except the signal number.
type ProfileRoute struct {
	ID           string            `json:"id"`
	Signal       int               `json:"signal"`
	TruckSDI     string            `json:"truckSdi,omitempty"`
	FlypackPatch string            `json:"flypackPatch,omitempty"`
	EncoderBrand string            `json:"encoderBrand,omitempty"`
	EncoderUnit  string            `json:"encoderUnit,omitempty"`
	EncoderInput string            `json:"encoderInput,omitempty"`
	TxLabel      string            `json:"txLabel,omitempty"`
	Protocol     string            `json:"protocol,omitempty"`
	Endpoint     string            `json:"endpoint,omitempty"`
	RxDevice     string            `json:"rxDevice,omitempty"`
	SwitcherIn   string            `json:"switcherIn,omitempty"`
	Health       Health            `json:"health,omitempty"`
	Aliases      map[string]string `json:"aliases,omitempty"`
}

// Editable field names for ProfileRoute, used by field edits and overrides.
const (
	FieldTruckSDI     = "truck_sdi"
	FieldFlypackPatch = "flypack_patch"
	FieldEncoderBrand = "encoder_brand"
	FieldEncoderUnit  = "encoder_unit"
	FieldEncoderInput = "encoder_input"
	FieldTxLabel      = "tx_label"
	FieldProtocol     = "protocol"
	FieldEndpoint     = "cloud_endpoint"
	FieldRxDevice     = "rx_device"
	FieldSwitcherIn   = "switcher_input"
	FieldHealth       = "health"

	// aliasFieldPrefix addresses a named alias, e.g. "alias.production".
	aliasFieldPrefix = "alias."
)

// ErrUnknownField indicates a field name outside the editable set.
var ErrUnknownField = apperrors.New(apperrors.CodeRouteFieldUnknown, "route field is unknown")

// ErrInvalidHealth indicates an unrecognized health value.
var ErrInvalidHealth = apperrors.New(apperrors.CodeRouteInvalidStatus, "route health value is invalid")

// Fields returns the fixed editable field names in canonical order. Alias
// fields are addressed separately as "alias.<name>".
func Fields() []string {
	return []string{
		FieldTruckSDI,
		FieldFlypackPatch,
		FieldEncoderBrand,
		FieldEncoderUnit,
		FieldEncoderInput,
		FieldTxLabel,
		FieldProtocol,
		FieldEndpoint,
		FieldRxDevice,
		FieldSwitcherIn,
		FieldHealth,
	}
}

// Field returns the current value of a named field and whether the name is
// recognized.
func (r ProfileRoute) Field(name string) (string, bool) {
	if alias, ok := strings.CutPrefix(name, aliasFieldPrefix); ok {
		return r.Aliases[alias], true
	}
	switch name {
	case FieldTruckSDI:
		return r.TruckSDI, true
	case FieldFlypackPatch:
		return r.FlypackPatch, true
	case FieldEncoderBrand:
		return r.EncoderBrand, true
	case FieldEncoderUnit:
		return r.EncoderUnit, true
	case FieldEncoderInput:
		return r.EncoderInput, true
	case FieldTxLabel:
		return r.TxLabel, true
	case FieldProtocol:
		return r.Protocol, true
	case FieldEndpoint:
		return r.Endpoint, true
	case FieldRxDevice:
		return r.RxDevice, true
	case FieldSwitcherIn:
		return r.SwitcherIn, true
	case FieldHealth:
		return string(r.Health), true
	default:
		return "", false
	}
}

// SetField writes a named field. Unknown names return ErrUnknownField and
// invalid health values return ErrInvalidHealth.
func (r *ProfileRoute) SetField(name, value string) error {
	if alias, ok := strings.CutPrefix(name, aliasFieldPrefix); ok {
		if strings.TrimSpace(alias) == "" {
			return ErrUnknownField.WithMetadata(map[string]string{"field": name})
		}
		if r.Aliases == nil {
			r.Aliases = make(map[string]string)
		}
		if value == "" {
			delete(r.Aliases, alias)
			return nil
		}
		r.Aliases[alias] = value
		return nil
	}
	switch name {
	case FieldTruckSDI:
		r.TruckSDI = value
	case FieldFlypackPatch:
		r.FlypackPatch = value
	case FieldEncoderBrand:
		r.EncoderBrand = value
	case FieldEncoderUnit:
		r.EncoderUnit = value
	case FieldEncoderInput:
		r.EncoderInput = value
	case FieldTxLabel:
		r.TxLabel = value
	case FieldProtocol:
		r.Protocol = value
	case FieldEndpoint:
		r.Endpoint = value
	case FieldRxDevice:
		r.RxDevice = value
	case FieldSwitcherIn:
		r.SwitcherIn = value
	case FieldHealth:
		health, ok := NormalizeHealth(value)
		if !ok {
			return ErrInvalidHealth.WithMetadata(map[string]string{"value": value})
		}
		r.Health = health
	default:
		return ErrUnknownField.WithMetadata(map[string]string{"field": name})
	}
	return nil
}

// ProductionAlias returns the production alias, or empty when unset.
func (r ProfileRoute) ProductionAlias() string {
	return r.Aliases[AliasProduction]
}

// HasEndpoint reports whether the transport endpoint is assigned to a real
// address, i.e. non-empty and not the unresolved sentinel.
func (r ProfileRoute) HasEndpoint() bool {
	return r.Endpoint != "" && !strings.EqualFold(r.Endpoint, EndpointUnresolved)
}

// Clone returns a deep copy of the route.
func (r ProfileRoute) Clone() ProfileRoute {
	clone := r
	if len(r.Aliases) > 0 {
		clone.Aliases = make(map[string]string, len(r.Aliases))
		for name, value := range r.Aliases {
			clone.Aliases[name] = value
		}
	} else {
		clone.Aliases = nil
	}
	return clone
}

// CloneRoutes deep-copies a route slice.
func CloneRoutes(routes []ProfileRoute) []ProfileRoute {
	if routes == nil {
		return nil
	}
	cloned := make([]ProfileRoute, len(routes))
	for i, r := range routes {
		cloned[i] = r.Clone()
	}
	return cloned
}

// SortBySignal orders routes by signal number in place.
func SortBySignal(routes []ProfileRoute) {
	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].Signal < routes[j].Signal
	})
}

// DisplayName returns the production alias when present, falling back to the
// engineering name derived from the signal number.
func (r ProfileRoute) DisplayName() string {
	if alias := r.ProductionAlias(); alias != "" {
		return alias
	}
	return fmt.Sprintf("ISO-%d", r.Signal)
}
