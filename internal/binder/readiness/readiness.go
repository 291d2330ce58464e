// Package readiness evaluates the go/no-go rules over a binder's resolved
// state: encoder capacity, transport completeness, open issues, checklist
// progress, and route-graph validity.
//
// Evaluation is a pure function over already-loaded state so it can run on
// every read. The level only escalates within one evaluation, from ready
// through risk to blocked, and never relaxes.
package readiness

import (
	"fmt"

	"github.com/louisbranch/showbinder/internal/binder"
	"github.com/louisbranch/showbinder/internal/binder/route"
)

// Level is the three-valued readiness classification surfaced to operators.
type Level int

const (
	LevelReady Level = iota
	LevelRisk
	LevelBlocked
)

// String returns the wire name of the level.
func (l Level) String() string {
	switch l {
	case LevelRisk:
		return "risk"
	case LevelBlocked:
		return "blocked"
	default:
		return "ready"
	}
}

// escalate moves the level upward only.
func escalate(current, next Level) Level {
	if next > current {
		return next
	}
	return current
}

// AllClearReason is the synthetic reason emitted when no rule fires.
const AllClearReason = "all checks passed"

// Input is the full state consumed by one evaluation. Routes is optional:
// route-graph validation runs only when a resolved route list is supplied.
type Input struct {
	Signals         []binder.Signal
	EncoderCapacity int
	Transport       binder.Transport
	Issues          []binder.Issue
	Checklist       []binder.ChecklistItem
	Comms           []binder.CommsChannel
	Header          binder.Header
	Audio           binder.AudioConfig
	Routes          []route.ProfileRoute

	// GraphPolicy overrides the route-validation severity constants when
	// non-zero.
	GraphPolicy GraphPolicy
}

// Metrics is the fixed set of named sub-metrics computed per evaluation.
type Metrics struct {
	SignalCount         int     `json:"signalCount"`
	EncoderCapacity     int     `json:"encoderCapacity"`
	EncodersRequired    int     `json:"encodersRequired"`
	EncoderShortfall    int     `json:"encoderShortfall"`
	DecodersAssigned    int     `json:"decodersAssigned"`
	DecoderRatio        float64 `json:"decoderRatio"`
	PrimaryComplete     bool    `json:"primaryComplete"`
	BackupConfigured    bool    `json:"backupConfigured"`
	ReturnRequired      bool    `json:"returnRequired"`
	ReturnConfigured    bool    `json:"returnConfigured"`
	BlockingIssues      int     `json:"blockingIssues"`
	ChecklistDone       int     `json:"checklistDone"`
	ChecklistTotal      int     `json:"checklistTotal"`
	MissingDestinations int     `json:"missingDestinations"`
	MissingLabels       int     `json:"missingLabels"`
	OrphanDecoders      int     `json:"orphanDecoders"`
	DuplicateSrtPorts   int     `json:"duplicateSrtPorts"`
	UnmappedRoutes      int     `json:"unmappedRoutes"`
}

// Report is the result of one readiness evaluation.
type Report struct {
	Level   Level        `json:"level"`
	Reasons []string     `json:"reasons"`
	Metrics Metrics      `json:"metrics"`
	Graph   *GraphReport `json:"graph,omitempty"`
}

// encodersRequired is the number of encoder inputs needed for a signal
// count, two signals per encoder input pair.
func encodersRequired(signalCount int) int {
	return (signalCount + 1) / 2
}

// Evaluate runs the ordered readiness rules over the input. It is pure and
// total: every incomplete field becomes a reason, never an error.
func Evaluate(in Input) Report {
	level := LevelReady
	var reasons []string
	add := func(next Level, format string, args ...any) {
		reasons = append(reasons, fmt.Sprintf(format, args...))
		level = escalate(level, next)
	}

	metrics := Metrics{
		SignalCount:      len(in.Signals),
		EncoderCapacity:  in.EncoderCapacity,
		EncodersRequired: encodersRequired(len(in.Signals)),
		PrimaryComplete:  in.Transport.PrimaryComplete(),
		BackupConfigured: in.Transport.BackupConfigured(),
		ReturnRequired:   in.Transport.ReturnRequired,
		ReturnConfigured: in.Transport.ReturnConfigured(),
	}

	// 1. Encoder capacity.
	if shortfall := metrics.EncodersRequired - in.EncoderCapacity; shortfall > 0 {
		metrics.EncoderShortfall = shortfall
		add(LevelBlocked, "encoder capacity short by %d input(s)", shortfall)
	}

	// 2. Primary transport.
	if !metrics.PrimaryComplete {
		add(LevelBlocked, "primary transport is missing protocol or destination")
	}

	// 3. Return feed.
	if in.Transport.ReturnRequired && !metrics.ReturnConfigured {
		add(LevelBlocked, "return feed required but not configured")
	}

	// 4. Blocking issues.
	for _, issue := range in.Issues {
		if issue.HighPriority && !issue.Resolved {
			metrics.BlockingIssues++
		}
	}
	if metrics.BlockingIssues > 0 {
		add(LevelBlocked, "%d high-priority issue(s) unresolved", metrics.BlockingIssues)
	}

	for _, signal := range in.Signals {
		if signal.RxLabel != "" {
			metrics.DecodersAssigned++
		}
		if signal.Destination == "" {
			metrics.MissingDestinations++
		}
		if signal.TxLabel == "" || signal.RxLabel == "" {
			metrics.MissingLabels++
		}
	}
	if metrics.SignalCount > 0 {
		metrics.DecoderRatio = float64(metrics.DecodersAssigned) / float64(metrics.SignalCount)
	}
	metrics.ChecklistDone, metrics.ChecklistTotal = checklistProgress(in.Checklist)

	// 5. Risk-level completeness, skipped once blocked.
	if level != LevelBlocked {
		if !metrics.BackupConfigured {
			add(LevelRisk, "no backup transport configured")
		}
		if metrics.MissingDestinations > 0 {
			add(LevelRisk, "%d signal(s) missing a destination", metrics.MissingDestinations)
		}
		if remaining := metrics.ChecklistTotal - metrics.ChecklistDone; remaining > 0 {
			add(LevelRisk, "%d checklist item(s) incomplete", remaining)
		}
	}

	// 6. Label completeness, skipped once blocked.
	if level != LevelBlocked && metrics.MissingLabels > 0 {
		add(LevelRisk, "%d signal(s) missing transmit or receive labels", metrics.MissingLabels)
	}

	// 7. Event header.
	if !in.Header.Complete() {
		add(LevelRisk, "event title or date is missing")
	}

	// 8. Audio configuration.
	if !in.Audio.Complete() {
		add(LevelRisk, "audio configuration incomplete")
	}

	// 9. Route-graph validation.
	var graph *GraphReport
	if in.Routes != nil {
		report := ValidateGraph(in.Routes, in.GraphPolicy)
		graph = &report
		metrics.OrphanDecoders = report.OrphanDecoders
		metrics.DuplicateSrtPorts = report.DuplicateSrtPorts
		metrics.UnmappedRoutes = report.UnmappedRoutes
		if report.OrphanDecoders > 0 {
			add(LevelBlocked, "%d orphan decoder(s): receive device without a switcher mapping", report.OrphanDecoders)
		}
		if report.DuplicateSrtPorts > 0 {
			add(LevelBlocked, "%d duplicate transport port(s) across routes", report.DuplicateSrtPorts)
		}
		if report.UnmappedRoutes > 0 {
			add(LevelRisk, "%d route(s) with incomplete chains", report.UnmappedRoutes)
		}
	}

	// 10. All clear.
	if len(reasons) == 0 {
		reasons = []string{AllClearReason}
	}

	return Report{Level: level, Reasons: reasons, Metrics: metrics, Graph: graph}
}

func checklistProgress(items []binder.ChecklistItem) (done, total int) {
	for _, item := range items {
		if item.Done {
			done++
		}
	}
	return done, len(items)
}

// InputFromBinder assembles an evaluation input from a binder and its
// resolved routes. Pass nil routes to skip route-graph validation.
func InputFromBinder(b binder.Binder, routes []route.ProfileRoute) Input {
	return Input{
		Signals:         b.Signals,
		EncoderCapacity: b.EncoderCapacity,
		Transport:       b.Transport,
		Issues:          b.Issues,
		Checklist:       b.Checklist,
		Comms:           b.Comms,
		Header:          b.Header(),
		Audio:           b.Audio,
		Routes:          routes,
	}
}
