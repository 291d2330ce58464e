// Package seed loads declarative route-profile catalogs from YAML and
// applies them through the binder service, for bootstrapping fresh
// environments with shared profiles and demo binders.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/showbinder/internal/binder"
	"github.com/louisbranch/showbinder/internal/binder/override"
	"github.com/louisbranch/showbinder/internal/binder/profile"
	"github.com/louisbranch/showbinder/internal/binder/route"
	"github.com/louisbranch/showbinder/internal/binder/service"
)

// airDateLayout is the calendar-date format accepted for binder air dates.
const airDateLayout = "2006-01-02"

// Catalog is a declarative set of route profiles and binders to create.
type Catalog struct {
	Profiles []ProfileEntry `yaml:"profiles"`
	Binders  []BinderEntry  `yaml:"binders"`
}

// ProfileEntry describes one route profile in a catalog file.
type ProfileEntry struct {
	Name    string       `yaml:"name"`
	Default bool         `yaml:"default"`
	Routes  []RouteEntry `yaml:"routes"`
}

// RouteEntry describes one signal chain within a profile. Field names match
// the editable route field names used by the rest of the system.
type RouteEntry struct {
	Signal       int               `yaml:"signal"`
	TruckSDI     string            `yaml:"truck_sdi"`
	FlypackPatch string            `yaml:"flypack_patch"`
	EncoderBrand string            `yaml:"encoder_brand"`
	EncoderUnit  string            `yaml:"encoder_unit"`
	EncoderInput string            `yaml:"encoder_input"`
	TxLabel      string            `yaml:"tx_label"`
	Protocol     string            `yaml:"protocol"`
	Endpoint     string            `yaml:"cloud_endpoint"`
	RxDevice     string            `yaml:"rx_device"`
	SwitcherIn   string            `yaml:"switcher_input"`
	Aliases      map[string]string `yaml:"aliases"`
}

// BinderEntry describes one binder to create. Profile references are by
// catalog profile name and are resolved after the profiles are created.
type BinderEntry struct {
	Title           string `yaml:"title"`
	AirDate         string `yaml:"air_date"`
	Venue           string `yaml:"venue"`
	Mode            string `yaml:"mode"`
	Profile         string `yaml:"profile"`
	EncoderCapacity int    `yaml:"encoder_capacity"`
}

// Parse decodes a catalog document. Unknown keys are rejected so typos in
// hand-edited files surface as errors instead of silently dropped fields.
func Parse(data []byte) (Catalog, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var catalog Catalog
	if err := decoder.Decode(&catalog); err != nil {
		if errors.Is(err, io.EOF) {
			return Catalog{}, errors.New("catalog document is empty")
		}
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return Catalog{}, err
	}
	return catalog, nil
}

// LoadFile reads and parses a catalog file from disk.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Validate checks catalog-level consistency: unique profile names, at most
// one default profile, resolvable binder references, and parseable modes
// and air dates. Per-route validation is left to profile creation.
func (c Catalog) Validate() error {
	if len(c.Profiles) == 0 {
		return errors.New("catalog has no profiles")
	}

	names := make(map[string]struct{}, len(c.Profiles))
	defaults := 0
	for i, entry := range c.Profiles {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return fmt.Errorf("profile %d: name is required", i+1)
		}
		if _, dup := names[name]; dup {
			return fmt.Errorf("profile %d: duplicate profile name %q", i+1, name)
		}
		names[name] = struct{}{}
		if entry.Default {
			defaults++
		}
		seen := make(map[int]struct{}, len(entry.Routes))
		for j, r := range entry.Routes {
			if r.Signal <= 0 {
				return fmt.Errorf("profile %q route %d: signal must be positive", name, j+1)
			}
			if _, dup := seen[r.Signal]; dup {
				return fmt.Errorf("profile %q route %d: duplicate signal %d", name, j+1, r.Signal)
			}
			seen[r.Signal] = struct{}{}
		}
	}
	if defaults > 1 {
		return fmt.Errorf("catalog marks %d profiles as default, want at most one", defaults)
	}

	for i, entry := range c.Binders {
		if strings.TrimSpace(entry.Title) == "" {
			return fmt.Errorf("binder %d: title is required", i+1)
		}
		mode, err := binderMode(entry.Mode)
		if err != nil {
			return fmt.Errorf("binder %q: %w", entry.Title, err)
		}
		if entry.Profile != "" {
			if _, ok := names[entry.Profile]; !ok {
				return fmt.Errorf("binder %q references unknown profile %q", entry.Title, entry.Profile)
			}
		}
		if mode == override.ModeUseProfile && entry.Profile == "" {
			return fmt.Errorf("binder %q: mode use_profile requires a profile reference", entry.Title)
		}
		if entry.AirDate != "" {
			if _, err := time.Parse(airDateLayout, entry.AirDate); err != nil {
				return fmt.Errorf("binder %q: air_date %q is not %s", entry.Title, entry.AirDate, airDateLayout)
			}
		}
	}
	return nil
}

// binderMode parses a catalog mode string, defaulting to use_default.
func binderMode(value string) (override.Mode, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return override.ModeUseDefault, nil
	}
	mode, ok := override.ParseMode(value)
	if !ok {
		return override.ModeUnspecified, fmt.Errorf("unknown mode %q", value)
	}
	return mode, nil
}

// profileRoute converts a catalog route entry to the domain shape.
func (r RouteEntry) profileRoute() route.ProfileRoute {
	var aliases map[string]string
	if len(r.Aliases) > 0 {
		aliases = make(map[string]string, len(r.Aliases))
		for k, v := range r.Aliases {
			aliases[k] = v
		}
	}
	return route.ProfileRoute{
		Signal:       r.Signal,
		TruckSDI:     r.TruckSDI,
		FlypackPatch: r.FlypackPatch,
		EncoderBrand: r.EncoderBrand,
		EncoderUnit:  r.EncoderUnit,
		EncoderInput: r.EncoderInput,
		TxLabel:      r.TxLabel,
		Protocol:     r.Protocol,
		Endpoint:     r.Endpoint,
		RxDevice:     r.RxDevice,
		SwitcherIn:   r.SwitcherIn,
		Aliases:      aliases,
	}
}

// Result summarizes what an applied catalog created.
type Result struct {
	Profiles int
	Binders  int
}

// Apply creates the catalog's profiles and binders through the service so
// every seeded record passes the same validation and audit path as an
// operator action.
func Apply(ctx context.Context, svc *service.Service, actor string, catalog Catalog) (Result, error) {
	if svc == nil {
		return Result{}, errors.New("service is required")
	}
	if err := catalog.Validate(); err != nil {
		return Result{}, err
	}

	var result Result
	profileIDs := make(map[string]string, len(catalog.Profiles))
	for _, entry := range catalog.Profiles {
		routes := make([]route.ProfileRoute, 0, len(entry.Routes))
		for _, r := range entry.Routes {
			routes = append(routes, r.profileRoute())
		}
		created, err := svc.CreateProfile(ctx, actor, profile.CreateInput{
			Name:      entry.Name,
			IsDefault: entry.Default,
			Routes:    routes,
		})
		if err != nil {
			return result, fmt.Errorf("create profile %q: %w", entry.Name, err)
		}
		profileIDs[entry.Name] = created.ID
		result.Profiles++
	}

	for _, entry := range catalog.Binders {
		mode, err := binderMode(entry.Mode)
		if err != nil {
			return result, fmt.Errorf("binder %q: %w", entry.Title, err)
		}
		var airDate time.Time
		if entry.AirDate != "" {
			airDate, err = time.Parse(airDateLayout, entry.AirDate)
			if err != nil {
				return result, fmt.Errorf("binder %q: parse air date: %w", entry.Title, err)
			}
		}
		_, err = svc.CreateBinder(ctx, actor, binder.CreateInput{
			Title:           entry.Title,
			AirDate:         airDate,
			Venue:           entry.Venue,
			Mode:            mode,
			ProfileID:       profileIDs[entry.Profile],
			EncoderCapacity: entry.EncoderCapacity,
		})
		if err != nil {
			return result, fmt.Errorf("create binder %q: %w", entry.Title, err)
		}
		result.Binders++
	}
	return result, nil
}
