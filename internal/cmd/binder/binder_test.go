package binder

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/showbinder/internal/audit"
	binderdomain "github.com/louisbranch/showbinder/internal/binder"
	"github.com/louisbranch/showbinder/internal/binder/override"
	"github.com/louisbranch/showbinder/internal/binder/service"
	"github.com/louisbranch/showbinder/internal/storage/memory"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("binder", flag.ContinueOnError)
	cfg, args, err := ParseConfig(fs, []string{"binders"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "showbinder.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Actor != "cli" {
		t.Fatalf("expected default actor cli, got %q", cfg.Actor)
	}
	if len(args) != 1 || args[0] != "binders" {
		t.Fatalf("expected [binders] remainder, got %v", args)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("SHOWBINDER_DB_PATH", "/tmp/env.db")

	fs := flag.NewFlagSet("binder", flag.ContinueOnError)
	cfg, args, err := ParseConfig(fs, []string{"-db", "/tmp/flag.db", "-actor", "td-1", "resolve", "b1"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "/tmp/flag.db" {
		t.Fatalf("expected flag to win over env, got %q", cfg.DBPath)
	}
	if cfg.Actor != "td-1" {
		t.Fatalf("expected actor td-1, got %q", cfg.Actor)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 remaining args, got %v", args)
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{arg: "live", want: service.LiveVersion},
		{arg: "3", want: 3},
		{arg: "v2", want: 2},
		{arg: "0", wantErr: true},
		{arg: "-1", wantErr: true},
		{arg: "latest", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseVersion(tt.arg)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseVersion(%q) error = nil, want error", tt.arg)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseVersion(%q) error = %v", tt.arg, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseVersion(%q) = %d, want %d", tt.arg, got, tt.want)
		}
	}
}

func newDispatchService(t *testing.T) (*service.Service, binderdomain.Binder) {
	t.Helper()
	store := memory.New()
	svc := service.New(store, audit.NewEmitter(store))

	record, err := svc.CreateBinder(context.Background(), "test", binderdomain.CreateInput{
		Title:           "Week 1 at Lambeau",
		AirDate:         time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC),
		Venue:           "Lambeau Field",
		Mode:            override.ModeCustom,
		EncoderCapacity: 4,
	})
	if err != nil {
		t.Fatalf("CreateBinder() error = %v", err)
	}
	return svc, record
}

func TestDispatchBinders(t *testing.T) {
	svc, record := newDispatchService(t)

	var out bytes.Buffer
	if err := dispatch(context.Background(), svc, "test", []string{"binders"}, &out); err != nil {
		t.Fatalf("dispatch() error = %v", err)
	}
	listing := out.String()
	if !strings.Contains(listing, record.ID) {
		t.Errorf("listing missing binder id %q:\n%s", record.ID, listing)
	}
	if !strings.Contains(listing, "Week 1 at Lambeau") {
		t.Errorf("listing missing title:\n%s", listing)
	}
	if !strings.Contains(listing, "2026-09-13") {
		t.Errorf("listing missing air date:\n%s", listing)
	}
}

func TestDispatchReadiness(t *testing.T) {
	svc, record := newDispatchService(t)

	var out bytes.Buffer
	if err := dispatch(context.Background(), svc, "test", []string{"readiness", record.ID}, &out); err != nil {
		t.Fatalf("dispatch() error = %v", err)
	}
	if !strings.Contains(out.String(), "level:") {
		t.Errorf("readiness output missing level:\n%s", out.String())
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	svc, _ := newDispatchService(t)

	var out bytes.Buffer
	err := dispatch(context.Background(), svc, "test", []string{"explode"}, &out)
	if err == nil {
		t.Fatal("dispatch() error = nil, want unknown command error")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("error = %v, want unknown command", err)
	}
}

func TestDispatchUnlockRequiresReason(t *testing.T) {
	svc, record := newDispatchService(t)

	var out bytes.Buffer
	err := dispatch(context.Background(), svc, "test", []string{"unlock", record.ID}, &out)
	if err == nil {
		t.Fatal("dispatch() error = nil, want missing reason error")
	}
	if !strings.Contains(err.Error(), "reason") {
		t.Errorf("error = %v, want it to mention the reason", err)
	}
}
