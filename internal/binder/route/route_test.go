package route

import (
	"errors"
	"testing"
)

func TestWorstHealthOrdering(t *testing.T) {
	tests := []struct {
		a, b, want Health
	}{
		{HealthHealthy, HealthHealthy, HealthHealthy},
		{HealthHealthy, HealthUnknown, HealthUnknown},
		{HealthUnknown, HealthWarn, HealthWarn},
		{HealthWarn, HealthDown, HealthDown},
		{HealthDown, HealthHealthy, HealthDown},
	}
	for _, tt := range tests {
		if got := WorstHealth(tt.a, tt.b); got != tt.want {
			t.Fatalf("WorstHealth(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNormalizeHealth(t *testing.T) {
	if h, ok := NormalizeHealth(" Down "); !ok || h != HealthDown {
		t.Fatalf("normalize = %v %v, want down true", h, ok)
	}
	if _, ok := NormalizeHealth("on-fire"); ok {
		t.Fatal("expected invalid health to be rejected")
	}
}

func TestFieldRoundTrip(t *testing.T) {
	r := ProfileRoute{Signal: 3}
	for _, field := range Fields() {
		value := "x"
		if field == FieldHealth {
			value = "warn"
		}
		if err := r.SetField(field, value); err != nil {
			t.Fatalf("set %s: %v", field, err)
		}
		got, ok := r.Field(field)
		if !ok {
			t.Fatalf("field %s not recognized", field)
		}
		if got != value {
			t.Fatalf("field %s = %q, want %q", field, got, value)
		}
	}
}

func TestSetFieldRejectsUnknownName(t *testing.T) {
	r := ProfileRoute{Signal: 1}
	err := r.SetField("frequency", "12GHz")
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("error = %v, want %v", err, ErrUnknownField)
	}
}

func TestSetFieldRejectsInvalidHealth(t *testing.T) {
	r := ProfileRoute{Signal: 1}
	if err := r.SetField(FieldHealth, "fine"); !errors.Is(err, ErrInvalidHealth) {
		t.Fatalf("error = %v, want %v", err, ErrInvalidHealth)
	}
}

func TestAliasFieldEdit(t *testing.T) {
	r := ProfileRoute{Signal: 4}
	if err := r.SetField("alias.production", "CAM 4 TIGHT"); err != nil {
		t.Fatalf("set alias: %v", err)
	}
	if got := r.ProductionAlias(); got != "CAM 4 TIGHT" {
		t.Fatalf("production alias = %q", got)
	}
	if err := r.SetField("alias.production", ""); err != nil {
		t.Fatalf("clear alias: %v", err)
	}
	if _, ok := r.Aliases[AliasProduction]; ok {
		t.Fatal("expected cleared alias to be removed")
	}
}

func TestHasEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		want     bool
	}{
		{"", false},
		{"TBD", false},
		{"tbd", false},
		{"203.0.113.4:9001", true},
	}
	for _, tt := range tests {
		r := ProfileRoute{Endpoint: tt.endpoint}
		if got := r.HasEndpoint(); got != tt.want {
			t.Fatalf("HasEndpoint(%q) = %v, want %v", tt.endpoint, got, tt.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := ProfileRoute{
		Signal:  1,
		Aliases: map[string]string{AliasProduction: "GAME"},
	}
	clone := original.Clone()
	clone.Aliases[AliasProduction] = "ISO"
	if original.Aliases[AliasProduction] != "GAME" {
		t.Fatal("clone mutation leaked into original aliases")
	}
}

func TestDisplayName(t *testing.T) {
	r := ProfileRoute{Signal: 7}
	if got := r.DisplayName(); got != "ISO-7" {
		t.Fatalf("display name = %q, want ISO-7", got)
	}
	r.Aliases = map[string]string{AliasProduction: "HIGH HOME"}
	if got := r.DisplayName(); got != "HIGH HOME" {
		t.Fatalf("display name = %q, want HIGH HOME", got)
	}
}

func TestSortBySignal(t *testing.T) {
	routes := []ProfileRoute{{Signal: 9}, {Signal: 2}, {Signal: 5}}
	SortBySignal(routes)
	for i, want := range []int{2, 5, 9} {
		if routes[i].Signal != want {
			t.Fatalf("routes[%d].Signal = %d, want %d", i, routes[i].Signal, want)
		}
	}
}
