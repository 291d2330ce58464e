package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/louisbranch/showbinder/internal/audit"
	"github.com/louisbranch/showbinder/internal/binder/override"
	"github.com/louisbranch/showbinder/internal/binder/service"
	"github.com/louisbranch/showbinder/internal/storage/memory"
)

const minimalCatalog = `
profiles:
  - name: Standard Truck
    default: true
    routes:
      - signal: 1
        truck_sdi: OUT 5
        protocol: SRT
        cloud_endpoint: TBD
        aliases:
          production: QB CAM
      - signal: 2
        protocol: SRT
        cloud_endpoint: 198.51.100.9:9002

binders:
  - title: Week 1 at Lambeau
    air_date: "2026-09-13"
    venue: Lambeau Field
    mode: fork_profile
    profile: Standard Truck
    encoder_capacity: 8
`

func TestParse(t *testing.T) {
	catalog, err := Parse([]byte(minimalCatalog))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(catalog.Profiles) != 1 {
		t.Fatalf("len(Profiles) = %d, want 1", len(catalog.Profiles))
	}
	p := catalog.Profiles[0]
	if !p.Default {
		t.Errorf("Default = false, want true")
	}
	if len(p.Routes) != 2 {
		t.Fatalf("len(Routes) = %d, want 2", len(p.Routes))
	}
	if got := p.Routes[0].Aliases["production"]; got != "QB CAM" {
		t.Errorf("production alias = %q, want %q", got, "QB CAM")
	}
	if len(catalog.Binders) != 1 {
		t.Fatalf("len(Binders) = %d, want 1", len(catalog.Binders))
	}
	mode, err := binderMode(catalog.Binders[0].Mode)
	if err != nil {
		t.Fatalf("binderMode() error = %v", err)
	}
	if mode != override.ModeForkProfile {
		t.Errorf("mode = %v, want %v", mode, override.ModeForkProfile)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	doc := `
profiles:
  - name: Standard Truck
    defaul: true
`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("Parse() error = nil, want unknown field error")
	}
}

func TestParseRejectsEmptyDocument(t *testing.T) {
	if _, err := Parse([]byte("")); err == nil {
		t.Fatal("Parse() error = nil, want error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Catalog)
		wantErr string
	}{
		{
			name:    "duplicate profile name",
			mutate:  func(c *Catalog) { c.Profiles = append(c.Profiles, ProfileEntry{Name: "Standard Truck"}) },
			wantErr: "duplicate profile name",
		},
		{
			name: "duplicate signal",
			mutate: func(c *Catalog) {
				c.Profiles[0].Routes = append(c.Profiles[0].Routes, RouteEntry{Signal: 1})
			},
			wantErr: "duplicate signal",
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Catalog) { c.Binders[0].Mode = "freeform" },
			wantErr: "unknown mode",
		},
		{
			name:    "unknown profile reference",
			mutate:  func(c *Catalog) { c.Binders[0].Profile = "Missing" },
			wantErr: "unknown profile",
		},
		{
			name: "use_profile without reference",
			mutate: func(c *Catalog) {
				c.Binders[0].Mode = "use_profile"
				c.Binders[0].Profile = ""
			},
			wantErr: "requires a profile reference",
		},
		{
			name:    "bad air date",
			mutate:  func(c *Catalog) { c.Binders[0].AirDate = "Sep 13" },
			wantErr: "air_date",
		},
		{
			name: "two defaults",
			mutate: func(c *Catalog) {
				c.Profiles = append(c.Profiles, ProfileEntry{Name: "Other", Default: true})
			},
			wantErr: "at most one",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, err := Parse([]byte(minimalCatalog))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			tt.mutate(&catalog)
			err = catalog.Validate()
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestApply(t *testing.T) {
	store := memory.New()
	svc := service.New(store, audit.NewEmitter(store))

	catalog, err := Parse([]byte(minimalCatalog))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	result, err := Apply(context.Background(), svc, "seed", catalog)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if result.Profiles != 1 || result.Binders != 1 {
		t.Fatalf("Result = %+v, want 1 profile and 1 binder", result)
	}

	profiles, err := svc.ListProfiles(context.Background())
	if err != nil {
		t.Fatalf("ListProfiles() error = %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("len(profiles) = %d, want 1", len(profiles))
	}
	if !profiles[0].IsDefault {
		t.Errorf("IsDefault = false, want true")
	}

	binders, err := svc.ListBinders(context.Background())
	if err != nil {
		t.Fatalf("ListBinders() error = %v", err)
	}
	if len(binders) != 1 {
		t.Fatalf("len(binders) = %d, want 1", len(binders))
	}
	b := binders[0]
	if b.Mode != override.ModeForkProfile {
		t.Errorf("Mode = %v, want %v", b.Mode, override.ModeForkProfile)
	}
	if b.ProfileID != profiles[0].ID {
		t.Errorf("ProfileID = %q, want %q", b.ProfileID, profiles[0].ID)
	}

	resolution, err := svc.Resolve(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(resolution.Routes) != 2 {
		t.Fatalf("len(resolution.Routes) = %d, want 2", len(resolution.Routes))
	}
}

func TestDefaultCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}
	if len(catalog.Profiles) < 2 {
		t.Fatalf("len(Profiles) = %d, want at least 2", len(catalog.Profiles))
	}

	store := memory.New()
	svc := service.New(store, audit.NewEmitter(store))
	result, err := Apply(context.Background(), svc, "seed", catalog)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if result.Profiles != len(catalog.Profiles) {
		t.Errorf("Result.Profiles = %d, want %d", result.Profiles, len(catalog.Profiles))
	}
	if result.Binders != len(catalog.Binders) {
		t.Errorf("Result.Binders = %d, want %d", result.Binders, len(catalog.Binders))
	}
}
