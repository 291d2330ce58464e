// Package binder defines the live per-event production state: routing
// configuration, transport, staffing, checklists, and lock bookkeeping.
//
// A Binder is the unit everything in this module operates on. The Captured
// type is the immutable snapshot form of the same state, constructible only
// through Capture so a past snapshot can never alias live state.
package binder

import (
	"fmt"
	"time"

	"github.com/louisbranch/showbinder/internal/binder/override"
	"github.com/louisbranch/showbinder/internal/binder/route"
	apperrors "github.com/louisbranch/showbinder/internal/errors"
)

// ErrEmptyID indicates a missing binder id.
var ErrEmptyID = apperrors.New(apperrors.CodeBinderEmptyID, "binder id is required")

// Signal is one physical feed leaving the venue.
type Signal struct {
	Number          int    `json:"number"`
	Name            string `json:"name,omitempty"`
	ProductionAlias string `json:"productionAlias,omitempty"`
	Patch           string `json:"patch,omitempty"`
	TxLabel         string `json:"txLabel,omitempty"`
	RxLabel         string `json:"rxLabel,omitempty"`
	Destination     string `json:"destination,omitempty"`
}

// Transport is the event-level transport plan.
type Transport struct {
	PrimaryProtocol    string `json:"primaryProtocol,omitempty"`
	PrimaryDestination string `json:"primaryDestination,omitempty"`
	BackupProtocol     string `json:"backupProtocol,omitempty"`
	BackupDestination  string `json:"backupDestination,omitempty"`
	ReturnRequired     bool   `json:"returnRequired,omitempty"`
	ReturnProtocol     string `json:"returnProtocol,omitempty"`
	ReturnDestination  string `json:"returnDestination,omitempty"`
}

// PrimaryComplete reports whether the primary path has both protocol and
// destination.
func (t Transport) PrimaryComplete() bool {
	return t.PrimaryProtocol != "" && t.PrimaryDestination != ""
}

// BackupConfigured reports whether any backup path is set.
func (t Transport) BackupConfigured() bool {
	return t.BackupProtocol != "" || t.BackupDestination != ""
}

// ReturnConfigured reports whether the return feed has both protocol and
// destination.
func (t Transport) ReturnConfigured() bool {
	return t.ReturnProtocol != "" && t.ReturnDestination != ""
}

// Issue is an open operational concern tracked against the event.
type Issue struct {
	ID           string `json:"id"`
	Summary      string `json:"summary,omitempty"`
	HighPriority bool   `json:"highPriority,omitempty"`
	Resolved     bool   `json:"resolved,omitempty"`
}

// ChecklistItem is one pre-air checklist entry.
type ChecklistItem struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	Done  bool   `json:"done,omitempty"`
}

// CommsChannel is one intercom/PL assignment.
type CommsChannel struct {
	Channel    string `json:"channel"`
	Label      string `json:"label,omitempty"`
	Assignment string `json:"assignment,omitempty"`
}

// StaffAssignment is one crew position on the event.
type StaffAssignment struct {
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Asset is a document or file attached to the binder.
type Asset struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Kind string `json:"kind,omitempty"`
}

// AudioConfig is the event audio plan.
type AudioConfig struct {
	OutputMode string `json:"outputMode,omitempty"`
	Source     string `json:"source,omitempty"`
	Routing    string `json:"routing,omitempty"`
}

// Complete reports whether output mode, source, and routing are all set.
func (a AudioConfig) Complete() bool {
	return a.OutputMode != "" && a.Source != "" && a.Routing != ""
}

// LockState is the lock bookkeeping for a binder. Version starts at 0 and
// increments by exactly one on every successful lock; it never decrements,
// including across unlock/relock cycles.
type LockState struct {
	Locked       bool      `json:"locked"`
	LockedAt     time.Time `json:"lockedAt,omitempty"`
	LockedBy     string    `json:"lockedBy,omitempty"`
	Version      int       `json:"version"`
	UnlockReason string    `json:"unlockReason,omitempty"`
}

// Header is the event identity surfaced to readiness checks.
type Header struct {
	Title   string
	AirDate time.Time
	Venue   string
}

// Complete reports whether the header has both a title and a date.
func (h Header) Complete() bool {
	return h.Title != "" && !h.AirDate.IsZero()
}

// Binder is the live, mutable state of one production event.
type Binder struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title,omitempty"`
	AirDate         time.Time              `json:"airDate,omitempty"`
	Venue           string                 `json:"venue,omitempty"`
	Mode            override.Mode          `json:"mode,omitempty"`
	ProfileID       string                 `json:"profileId,omitempty"`
	EncoderCapacity int                    `json:"encoderCapacity,omitempty"`
	Routes          []route.ProfileRoute   `json:"routes,omitempty"`
	Chains          []route.CanonicalRoute `json:"chains,omitempty"`
	Signals         []Signal               `json:"signals,omitempty"`
	Transport       Transport              `json:"transport"`
	Issues          []Issue                `json:"issues,omitempty"`
	Checklist       []ChecklistItem        `json:"checklist,omitempty"`
	Comms           []CommsChannel         `json:"comms,omitempty"`
	Staff           []StaffAssignment      `json:"staff,omitempty"`
	Assets          []Asset                `json:"assets,omitempty"`
	Audio           AudioConfig            `json:"audio"`
	Lock            LockState              `json:"lock"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// CreateInput describes the input for creating a binder.
type CreateInput struct {
	Title           string
	AirDate         time.Time
	Venue           string
	Mode            override.Mode
	ProfileID       string
	EncoderCapacity int
}

// Create builds a new binder with generated identity. An unspecified mode
// defaults to use_default.
func Create(input CreateInput, now func() time.Time, idGenerator func() (string, error)) (Binder, error) {
	mode := input.Mode
	if mode == override.ModeUnspecified {
		mode = override.ModeUseDefault
	}
	if !mode.Valid() {
		return Binder{}, override.ErrInvalidMode.WithMetadata(map[string]string{"mode": fmt.Sprintf("%d", int(mode))})
	}
	id, err := idGenerator()
	if err != nil {
		return Binder{}, fmt.Errorf("generate binder id: %w", err)
	}
	createdAt := now().UTC()
	return Binder{
		ID:              id,
		Title:           input.Title,
		AirDate:         input.AirDate,
		Venue:           input.Venue,
		Mode:            mode,
		ProfileID:       input.ProfileID,
		EncoderCapacity: input.EncoderCapacity,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}, nil
}

// Header returns the event identity fields.
func (b Binder) Header() Header {
	return Header{Title: b.Title, AirDate: b.AirDate, Venue: b.Venue}
}

// ChecklistProgress returns completed and total checklist counts.
func (b Binder) ChecklistProgress() (done, total int) {
	for _, item := range b.Checklist {
		if item.Done {
			done++
		}
	}
	return done, len(b.Checklist)
}

// RouteByID returns the event-owned route with the given id.
func (b Binder) RouteByID(id string) (route.ProfileRoute, bool) {
	for _, r := range b.Routes {
		if r.ID == id {
			return r, true
		}
	}
	return route.ProfileRoute{}, false
}

// ChainBySignal returns the hop chain for a signal number.
func (b *Binder) ChainBySignal(signal int) (*route.CanonicalRoute, bool) {
	for i := range b.Chains {
		if b.Chains[i].Signal == signal {
			return &b.Chains[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the binder.
func (b Binder) Clone() Binder {
	clone := b
	clone.Routes = route.CloneRoutes(b.Routes)
	clone.Chains = route.CloneChains(b.Chains)
	clone.Signals = cloneSlice(b.Signals)
	clone.Issues = cloneSlice(b.Issues)
	clone.Checklist = cloneSlice(b.Checklist)
	clone.Comms = cloneSlice(b.Comms)
	clone.Staff = cloneSlice(b.Staff)
	clone.Assets = cloneSlice(b.Assets)
	return clone
}

func cloneSlice[T any](values []T) []T {
	if values == nil {
		return nil
	}
	cloned := make([]T, len(values))
	copy(cloned, values)
	return cloned
}

// Captured is the immutable snapshot form of a binder: the full event state
// excluding the lock bookkeeping fields, which would otherwise self-reference
// the snapshot history. Construct it only through Capture.
type Captured struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title,omitempty"`
	AirDate         time.Time              `json:"airDate,omitempty"`
	Venue           string                 `json:"venue,omitempty"`
	Mode            override.Mode          `json:"mode,omitempty"`
	ProfileID       string                 `json:"profileId,omitempty"`
	EncoderCapacity int                    `json:"encoderCapacity,omitempty"`
	Routes          []route.ProfileRoute   `json:"routes,omitempty"`
	Chains          []route.CanonicalRoute `json:"chains,omitempty"`
	Signals         []Signal               `json:"signals,omitempty"`
	Transport       Transport              `json:"transport"`
	Issues          []Issue                `json:"issues,omitempty"`
	Checklist       []ChecklistItem        `json:"checklist,omitempty"`
	Comms           []CommsChannel         `json:"comms,omitempty"`
	Staff           []StaffAssignment      `json:"staff,omitempty"`
	Assets          []Asset                `json:"assets,omitempty"`
	Audio           AudioConfig            `json:"audio"`
}

// Capture deep-copies the binder's state into its immutable snapshot form.
// Later edits to the binder never reach a captured value.
func (b Binder) Capture() Captured {
	clone := b.Clone()
	return Captured{
		ID:              clone.ID,
		Title:           clone.Title,
		AirDate:         clone.AirDate,
		Venue:           clone.Venue,
		Mode:            clone.Mode,
		ProfileID:       clone.ProfileID,
		EncoderCapacity: clone.EncoderCapacity,
		Routes:          clone.Routes,
		Chains:          clone.Chains,
		Signals:         clone.Signals,
		Transport:       clone.Transport,
		Issues:          clone.Issues,
		Checklist:       clone.Checklist,
		Comms:           clone.Comms,
		Staff:           clone.Staff,
		Assets:          clone.Assets,
		Audio:           clone.Audio,
	}
}

// Clone returns a deep copy of the captured state. Stores hand out clones
// so retained snapshot history can never be reached through a returned value.
func (c Captured) Clone() Captured {
	clone := c
	clone.Routes = route.CloneRoutes(c.Routes)
	clone.Chains = route.CloneChains(c.Chains)
	clone.Signals = cloneSlice(c.Signals)
	clone.Issues = cloneSlice(c.Issues)
	clone.Checklist = cloneSlice(c.Checklist)
	clone.Comms = cloneSlice(c.Comms)
	clone.Staff = cloneSlice(c.Staff)
	clone.Assets = cloneSlice(c.Assets)
	return clone
}

// ChecklistProgress returns completed and total checklist counts for a
// captured state.
func (c Captured) ChecklistProgress() (done, total int) {
	for _, item := range c.Checklist {
		if item.Done {
			done++
		}
	}
	return done, len(c.Checklist)
}
