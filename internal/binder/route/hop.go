package route

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/showbinder/internal/errors"
)

// HopKind identifies one stage of a signal's path.
type HopKind string

const (
	HopTruckSDI       HopKind = "truck_sdi"
	HopFlypackPatch   HopKind = "flypack_patch"
	HopEncoder        HopKind = "encoder"
	HopCloudTransport HopKind = "cloud_transport"
	HopReceiver       HopKind = "receiver"
	HopCustom         HopKind = "custom"
)

// canonicalHopKinds lists the structural hop kinds in chain order. They are
// created together by NewChain and cannot be removed independently.
var canonicalHopKinds = []HopKind{
	HopTruckSDI,
	HopFlypackPatch,
	HopEncoder,
	HopCloudTransport,
	HopReceiver,
}

// NormalizeHopKind parses a hop kind string.
func NormalizeHopKind(value string) (HopKind, bool) {
	kind := HopKind(strings.ToLower(strings.TrimSpace(value)))
	switch kind {
	case HopTruckSDI, HopFlypackPatch, HopEncoder, HopCloudTransport, HopReceiver, HopCustom:
		return kind, true
	default:
		return "", false
	}
}

// HopMeta is the type-specific metadata carried by a hop. Each hop kind
// constrains its metadata to a known field set; unrecognized kinds fall back
// to free-text notes.
type HopMeta interface {
	hopMeta()
}

// EncoderMeta carries encoder hop fields.
type EncoderMeta struct {
	Brand  string `json:"brand,omitempty"`
	Unit   string `json:"unit,omitempty"`
	Slot   string `json:"slot,omitempty"`
	IPMode string `json:"ipMode,omitempty"`
}

// CloudTransportMeta carries cloud transport hop fields.
type CloudTransportMeta struct {
	Protocol string `json:"protocol,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
	TxLabel  string `json:"txLabel,omitempty"`
}

// ReceiverMeta carries receive-side hop fields.
type ReceiverMeta struct {
	Brand   string `json:"brand,omitempty"`
	Unit    string `json:"unit,omitempty"`
	RxLabel string `json:"rxLabel,omitempty"`
}

// NotesMeta is the fallback metadata for hop kinds without a dedicated shape.
type NotesMeta struct {
	Notes string `json:"notes,omitempty"`
}

func (EncoderMeta) hopMeta()        {}
func (CloudTransportMeta) hopMeta() {}
func (ReceiverMeta) hopMeta()       {}
func (NotesMeta) hopMeta()          {}

// RouteHop is one stage in a canonical route chain.
type RouteHop struct {
	Kind     HopKind
	Position int
	Label    string
	Status   Health
	Meta     HopMeta
}

type hopJSON struct {
	Kind     HopKind         `json:"kind"`
	Position int             `json:"position"`
	Label    string          `json:"label,omitempty"`
	Status   Health          `json:"status,omitempty"`
	Meta     json.RawMessage `json:"meta,omitempty"`
}

// MarshalJSON encodes the hop with its kind-specific metadata variant.
func (h RouteHop) MarshalJSON() ([]byte, error) {
	out := hopJSON{Kind: h.Kind, Position: h.Position, Label: h.Label, Status: h.Status}
	if h.Meta != nil {
		raw, err := json.Marshal(h.Meta)
		if err != nil {
			return nil, fmt.Errorf("marshal hop meta: %w", err)
		}
		out.Meta = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the metadata variant selected by the hop kind.
func (h *RouteHop) UnmarshalJSON(data []byte) error {
	var in hopJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	h.Kind = in.Kind
	h.Position = in.Position
	h.Label = in.Label
	h.Status = in.Status
	h.Meta = nil
	if len(in.Meta) == 0 {
		return nil
	}
	meta := emptyMetaFor(in.Kind)
	if err := json.Unmarshal(in.Meta, meta); err != nil {
		return fmt.Errorf("unmarshal %s hop meta: %w", in.Kind, err)
	}
	h.Meta = dereferenceMeta(meta)
	return nil
}

func emptyMetaFor(kind HopKind) HopMeta {
	switch kind {
	case HopEncoder:
		return &EncoderMeta{}
	case HopCloudTransport:
		return &CloudTransportMeta{}
	case HopReceiver:
		return &ReceiverMeta{}
	default:
		return &NotesMeta{}
	}
}

func dereferenceMeta(meta HopMeta) HopMeta {
	switch m := meta.(type) {
	case *EncoderMeta:
		return *m
	case *CloudTransportMeta:
		return *m
	case *ReceiverMeta:
		return *m
	case *NotesMeta:
		return *m
	default:
		return meta
	}
}

// MetaAllowed reports whether the metadata variant matches the hop kind.
func (h RouteHop) MetaAllowed() bool {
	if h.Meta == nil {
		return true
	}
	switch h.Meta.(type) {
	case EncoderMeta:
		return h.Kind == HopEncoder
	case CloudTransportMeta:
		return h.Kind == HopCloudTransport
	case ReceiverMeta:
		return h.Kind == HopReceiver
	case NotesMeta:
		return h.Kind != HopEncoder && h.Kind != HopCloudTransport && h.Kind != HopReceiver
	default:
		return false
	}
}

// Hop chain errors.
var (
	ErrHopInvalidPosition = apperrors.New(apperrors.CodeHopInvalidPosition, "hop position is out of range")
	ErrHopNotRemovable    = apperrors.New(apperrors.CodeHopNotRemovable, "only custom hops can be removed")
	ErrHopUnknownKind     = apperrors.New(apperrors.CodeHopUnknownKind, "hop kind is unknown")
	ErrHopMetaMismatch    = apperrors.New(apperrors.CodeHopMetaMismatch, "hop metadata does not match hop kind")
)

// CanonicalRoute is a named, ordered sequence of hops for one signal.
//
// StatusOverride is a manually settable operational flag: an operator can mark
// a route down even when every hop looks fine. The effective status is always
// derived, never stored.
type CanonicalRoute struct {
	ID             string     `json:"id"`
	Signal         int        `json:"signal"`
	Name           string     `json:"name,omitempty"`
	Hops           []RouteHop `json:"hops"`
	StatusOverride Health     `json:"statusOverride,omitempty"`
}

// NewChain builds the canonical chain for a signal with every structural hop
// present and unknown status.
func NewChain(id string, signal int, name string) CanonicalRoute {
	hops := make([]RouteHop, len(canonicalHopKinds))
	for i, kind := range canonicalHopKinds {
		hops[i] = RouteHop{Kind: kind, Position: i + 1, Status: HealthUnknown}
	}
	return CanonicalRoute{ID: id, Signal: signal, Name: name, Hops: hops}
}

// EffectiveStatus derives the chain health: the worst of every hop's status
// and the manual override, when one is set.
func (c CanonicalRoute) EffectiveStatus() Health {
	status := HealthHealthy
	if c.StatusOverride != "" {
		status = c.StatusOverride
	}
	for _, hop := range c.Hops {
		hopStatus := hop.Status
		if hopStatus == "" {
			hopStatus = HealthUnknown
		}
		status = WorstHealth(status, hopStatus)
	}
	return status
}

// InsertHopAfter inserts a hop after the given position and renumbers the
// remainder. Position 0 inserts at the head.
func (c *CanonicalRoute) InsertHopAfter(position int, hop RouteHop) error {
	if position < 0 || position > len(c.Hops) {
		return ErrHopInvalidPosition.WithMetadata(map[string]string{"position": fmt.Sprintf("%d", position)})
	}
	if _, ok := NormalizeHopKind(string(hop.Kind)); !ok {
		return ErrHopUnknownKind.WithMetadata(map[string]string{"kind": string(hop.Kind)})
	}
	if !hop.MetaAllowed() {
		return ErrHopMetaMismatch.WithMetadata(map[string]string{"kind": string(hop.Kind)})
	}
	if hop.Status == "" {
		hop.Status = HealthUnknown
	}
	hops := make([]RouteHop, 0, len(c.Hops)+1)
	hops = append(hops, c.Hops[:position]...)
	hops = append(hops, hop)
	hops = append(hops, c.Hops[position:]...)
	for i := range hops {
		hops[i].Position = i + 1
	}
	c.Hops = hops
	return nil
}

// RemoveHop removes the hop at the given position, preserving the relative
// order of the remainder. Only custom hops are removable; the canonical hop
// kinds are structural.
func (c *CanonicalRoute) RemoveHop(position int) error {
	idx := position - 1
	if idx < 0 || idx >= len(c.Hops) {
		return ErrHopInvalidPosition.WithMetadata(map[string]string{"position": fmt.Sprintf("%d", position)})
	}
	if c.Hops[idx].Kind != HopCustom {
		return ErrHopNotRemovable.WithMetadata(map[string]string{"kind": string(c.Hops[idx].Kind)})
	}
	c.Hops = append(c.Hops[:idx], c.Hops[idx+1:]...)
	for i := range c.Hops {
		c.Hops[i].Position = i + 1
	}
	return nil
}

// HopPatch describes an update to one hop. Nil fields are left unchanged.
type HopPatch struct {
	Label  *string
	Status *Health
	Meta   HopMeta
}

// PatchHop updates the label, status, or metadata of the hop at position.
func (c *CanonicalRoute) PatchHop(position int, patch HopPatch) error {
	idx := position - 1
	if idx < 0 || idx >= len(c.Hops) {
		return ErrHopInvalidPosition.WithMetadata(map[string]string{"position": fmt.Sprintf("%d", position)})
	}
	hop := &c.Hops[idx]
	if patch.Label != nil {
		hop.Label = *patch.Label
	}
	if patch.Status != nil {
		status, ok := NormalizeHealth(string(*patch.Status))
		if !ok {
			return ErrInvalidHealth.WithMetadata(map[string]string{"value": string(*patch.Status)})
		}
		hop.Status = status
	}
	if patch.Meta != nil {
		candidate := *hop
		candidate.Meta = patch.Meta
		if !candidate.MetaAllowed() {
			return ErrHopMetaMismatch.WithMetadata(map[string]string{"kind": string(hop.Kind)})
		}
		hop.Meta = patch.Meta
	}
	return nil
}

// Clone returns a deep copy of the chain. Metadata variants are value types,
// so copying the hop slice is sufficient.
func (c CanonicalRoute) Clone() CanonicalRoute {
	clone := c
	if c.Hops != nil {
		clone.Hops = make([]RouteHop, len(c.Hops))
		copy(clone.Hops, c.Hops)
	}
	return clone
}

// CloneChains deep-copies a chain slice.
func CloneChains(chains []CanonicalRoute) []CanonicalRoute {
	if chains == nil {
		return nil
	}
	cloned := make([]CanonicalRoute, len(chains))
	for i, chain := range chains {
		cloned[i] = chain.Clone()
	}
	return cloned
}
