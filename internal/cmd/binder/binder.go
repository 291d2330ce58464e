// Package binder parses binder CLI flags and runs inspection and lock
// operations against a local database.
package binder

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/louisbranch/showbinder/internal/audit"
	"github.com/louisbranch/showbinder/internal/binder/service"
	"github.com/louisbranch/showbinder/internal/platform/cmd"
	"github.com/louisbranch/showbinder/internal/storage/sqlite"
)

// liveVersion addresses the current mutable state in diff arguments.
const liveVersion = "live"

// Config holds binder command configuration.
type Config struct {
	DBPath string `env:"SHOWBINDER_DB_PATH" envDefault:"showbinder.db"`
	Actor  string `env:"SHOWBINDER_ACTOR" envDefault:"cli"`
}

// ParseConfig parses environment and flags into a Config. Flags win over
// env values. Remaining positional arguments select the subcommand.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, []string, error) {
	var cfg Config
	fs.StringVar(&cfg.DBPath, "db", "showbinder.db", "Path to the binder database file")
	fs.StringVar(&cfg.Actor, "actor", "cli", "Actor name recorded on mutations")
	if err := cmd.ParseConfigFromArgs(&cfg, fs, args); err != nil {
		return Config{}, nil, err
	}
	return cfg, fs.Args(), nil
}

// Usage describes the available subcommands.
func Usage(out io.Writer) {
	fmt.Fprintln(out, "Usage: binder [flags] <command> [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  binders                      list binders")
	fmt.Fprintln(out, "  profiles                     list route profiles")
	fmt.Fprintln(out, "  resolve <binder-id>          show the effective routing view")
	fmt.Fprintln(out, "  readiness <binder-id>        evaluate go/no-go readiness")
	fmt.Fprintln(out, "  lock <binder-id>             lock the binder into a new snapshot")
	fmt.Fprintln(out, "  unlock <binder-id> <reason>  unlock with a required reason")
	fmt.Fprintln(out, "  history <binder-id>          list lock snapshots")
	fmt.Fprintln(out, "  diff <binder-id> <a> <b>     diff two versions (number or \"live\")")
	fmt.Fprintln(out, "  audit <target-id>            show the audit trail for a record")
}

// Run opens the store and dispatches the subcommand.
func Run(ctx context.Context, cfg Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		Usage(out)
		return fmt.Errorf("command is required")
	}

	return cmd.RunWithTelemetry(ctx, cmd.ServiceBinder, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		svc := service.New(store, audit.NewEmitter(store))
		return dispatch(ctx, svc, cfg.Actor, args, out)
	})
}

func dispatch(ctx context.Context, svc *service.Service, actor string, args []string, out io.Writer) error {
	command, rest := args[0], args[1:]
	switch command {
	case "binders":
		return runBinders(ctx, svc, out)
	case "profiles":
		return runProfiles(ctx, svc, out)
	case "resolve":
		return withBinderID(rest, func(id string) error { return runResolve(ctx, svc, id, out) })
	case "readiness":
		return withBinderID(rest, func(id string) error { return runReadiness(ctx, svc, id, out) })
	case "lock":
		return withBinderID(rest, func(id string) error { return runLock(ctx, svc, actor, id, out) })
	case "unlock":
		if len(rest) < 2 {
			return fmt.Errorf("unlock requires a binder id and a reason")
		}
		return runUnlock(ctx, svc, actor, rest[0], strings.Join(rest[1:], " "), out)
	case "history":
		return withBinderID(rest, func(id string) error { return runHistory(ctx, svc, id, out) })
	case "diff":
		if len(rest) != 3 {
			return fmt.Errorf("diff requires a binder id and two versions")
		}
		return runDiff(ctx, svc, rest[0], rest[1], rest[2], out)
	case "audit":
		return withBinderID(rest, func(id string) error { return runAudit(ctx, svc, id, out) })
	default:
		Usage(out)
		return fmt.Errorf("unknown command %q", command)
	}
}

func withBinderID(args []string, run func(string) error) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one id argument")
	}
	return run(args[0])
}

func runBinders(ctx context.Context, svc *service.Service, out io.Writer) error {
	binders, err := svc.ListBinders(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAIR DATE\tVENUE\tMODE\tLOCK")
	for _, b := range binders {
		lockLabel := "unlocked"
		if b.Lock.Locked {
			lockLabel = fmt.Sprintf("locked v%d", b.Lock.Version)
		} else if b.Lock.Version > 0 {
			lockLabel = fmt.Sprintf("unlocked (was v%d)", b.Lock.Version)
		}
		airDate := ""
		if !b.AirDate.IsZero() {
			airDate = b.AirDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", b.ID, b.Title, airDate, b.Venue, b.Mode, lockLabel)
	}
	return w.Flush()
}

func runProfiles(ctx context.Context, svc *service.Service, out io.Writer) error {
	profiles, err := svc.ListProfiles(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROUTES\tDEFAULT")
	for _, p := range profiles {
		defaultLabel := ""
		if p.IsDefault {
			defaultLabel = "default"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.ID, p.Name, len(p.Routes), defaultLabel)
	}
	return w.Flush()
}

func runResolve(ctx context.Context, svc *service.Service, binderID string, out io.Writer) error {
	resolution, err := svc.Resolve(ctx, binderID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "mode: %s", resolution.Mode)
	if resolution.ProfileID != "" {
		fmt.Fprintf(out, "  profile: %s", resolution.ProfileID)
	}
	if resolution.ReadOnly {
		fmt.Fprint(out, "  (read-only)")
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SIGNAL\tTRUCK SDI\tENCODER\tPROTOCOL\tENDPOINT\tRX\tSWITCHER\tOVERRIDES")
	for _, r := range resolution.Routes {
		encoder := strings.TrimSpace(r.EncoderBrand + " " + r.EncoderUnit)
		overridden := ""
		if r.IsOverridden {
			overridden = strings.Join(r.OverriddenFields, ",")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Signal, r.TruckSDI, encoder, r.Protocol, r.Endpoint, r.RxDevice, r.SwitcherIn, overridden)
	}
	return w.Flush()
}

func runReadiness(ctx context.Context, svc *service.Service, binderID string, out io.Writer) error {
	report, err := svc.Readiness(ctx, binderID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "level: %s\n", report.Level)
	for _, reason := range report.Reasons {
		fmt.Fprintf(out, "  - %s\n", reason)
	}
	m := report.Metrics
	fmt.Fprintf(out, "signals: %d  encoders: %d/%d  decoders: %d (%.0f%%)\n",
		m.SignalCount, m.EncodersRequired, m.EncoderCapacity, m.DecodersAssigned, m.DecoderRatio*100)
	if report.Graph != nil && len(report.Graph.Concerns) > 0 {
		fmt.Fprintln(out, "graph concerns:")
		for _, concern := range report.Graph.Concerns {
			fmt.Fprintf(out, "  [%s] signal %d: %s\n", concern.Severity, concern.Signal, strings.Join(concern.Codes, ", "))
		}
	}
	return nil
}

func runLock(ctx context.Context, svc *service.Service, actor, binderID string, out io.Writer) error {
	outcome, err := svc.Lock(ctx, actor, binderID)
	if err != nil {
		return err
	}
	if !outcome.Allowed {
		fmt.Fprintln(out, "lock refused:")
		for _, reason := range outcome.Reasons {
			fmt.Fprintf(out, "  - %s\n", reason)
		}
		return nil
	}
	fmt.Fprintf(out, "locked as %s at %s by %s\n",
		outcome.Snapshot.ID, outcome.Snapshot.LockedAt.Format("2006-01-02 15:04:05 MST"), outcome.Snapshot.LockedBy)
	return nil
}

func runUnlock(ctx context.Context, svc *service.Service, actor, binderID, reason string, out io.Writer) error {
	record, err := svc.Unlock(ctx, actor, binderID, reason)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "unlocked (history kept through v%d): %s\n", record.Lock.Version, reason)
	return nil
}

func runHistory(ctx context.Context, svc *service.Service, binderID string, out io.Writer) error {
	snapshots, err := svc.SnapshotHistory(ctx, binderID)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Fprintln(out, "no snapshots")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tLOCKED AT\tLOCKED BY\tSIGNALS")
	for _, snap := range snapshots {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			snap.ID, snap.LockedAt.Format("2006-01-02 15:04:05 MST"), snap.LockedBy, len(snap.State.Signals))
	}
	return w.Flush()
}

func runDiff(ctx context.Context, svc *service.Service, binderID, beforeArg, afterArg string, out io.Writer) error {
	before, err := parseVersion(beforeArg)
	if err != nil {
		return err
	}
	after, err := parseVersion(afterArg)
	if err != nil {
		return err
	}
	entries, err := svc.DiffSnapshots(ctx, binderID, before, after)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "no differences")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tFIELD\tCHANGE\tBEFORE\tAFTER")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			entry.Section, entry.Field, entry.Change, entry.Before, entry.After)
	}
	return w.Flush()
}

// parseVersion parses a diff version argument: a snapshot number, a "vN"
// snapshot id, or "live" for the current state.
func parseVersion(arg string) (int, error) {
	arg = strings.TrimSpace(strings.ToLower(arg))
	if arg == liveVersion {
		return service.LiveVersion, nil
	}
	arg = strings.TrimPrefix(arg, "v")
	version, err := strconv.Atoi(arg)
	if err != nil || version <= 0 {
		return 0, fmt.Errorf("version must be a positive number or %q, got %q", liveVersion, arg)
	}
	return version, nil
}

func runAudit(ctx context.Context, svc *service.Service, targetID string, out io.Writer) error {
	entries, err := svc.AuditTrail(ctx, targetID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "no audit entries")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tACTOR\tACTION\tSUMMARY")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			entry.CreatedAt.Format("2006-01-02 15:04:05 MST"), entry.Actor, entry.Action, entry.Summary)
	}
	return w.Flush()
}
