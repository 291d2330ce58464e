package readiness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/louisbranch/showbinder/internal/binder/route"
)

// Graph concern codes surfaced in route validation.
const (
	ConcernOrphanDecoder    = "ORPHAN_DECODER"
	ConcernDuplicatePort    = "DUPLICATE_PORT"
	ConcernMissingSource    = "MISSING_SOURCE"
	ConcernMissingEncoder   = "MISSING_ENCODER"
	ConcernMissingTransport = "MISSING_TRANSPORT"
	ConcernMissingDecoder   = "MISSING_DECODER"
	ConcernMissingSwitcher  = "MISSING_SWITCHER"
	ConcernMissingAlias     = "MISSING_ALIAS"
)

// ConcernSeverity classifies a per-route concern list.
type ConcernSeverity string

const (
	SeverityWarning ConcernSeverity = "warning"
	SeverityError   ConcernSeverity = "error"
)

// GraphPolicy holds the route-validation severity constants.
type GraphPolicy struct {
	// ErrorConcernThreshold is the number of unresolved concerns on a
	// single route at which its severity escalates to error.
	ErrorConcernThreshold int
}

// DefaultGraphPolicy preserves the observed severity behavior.
var DefaultGraphPolicy = GraphPolicy{ErrorConcernThreshold: 2}

// RouteConcern collects the validation findings for one route.
type RouteConcern struct {
	RouteID  string
	Signal   int
	Name     string
	Codes    []string
	Severity ConcernSeverity
}

// GraphReport summarizes route-graph validation across a resolved route list.
type GraphReport struct {
	OrphanDecoders    int
	DuplicateSrtPorts int
	UnmappedRoutes    int
	Concerns          []RouteConcern
}

// ValidateGraph checks the resolved route list as a graph: orphan decoders
// (a receive device with no downstream switcher mapping), duplicate transport
// ports (two routes sharing one address+port), and unmapped routes (missing
// any required leg of their own chain).
func ValidateGraph(routes []route.ProfileRoute, policy GraphPolicy) GraphReport {
	if policy.ErrorConcernThreshold <= 0 {
		policy = DefaultGraphPolicy
	}

	endpointCount := make(map[string]int, len(routes))
	for _, r := range routes {
		if r.HasEndpoint() {
			endpointCount[normalizeEndpoint(r.Endpoint)]++
		}
	}

	report := GraphReport{}
	duplicateEndpoints := make(map[string]struct{})
	for _, r := range routes {
		var codes []string

		if r.RxDevice != "" && r.SwitcherIn == "" {
			codes = append(codes, ConcernOrphanDecoder)
			report.OrphanDecoders++
		}
		if r.HasEndpoint() {
			key := normalizeEndpoint(r.Endpoint)
			if endpointCount[key] > 1 {
				codes = append(codes, ConcernDuplicatePort)
				duplicateEndpoints[key] = struct{}{}
			}
		}

		missing := missingLegs(r)
		if len(missing) > 0 {
			codes = append(codes, missing...)
			report.UnmappedRoutes++
		}

		if len(codes) == 0 {
			continue
		}
		severity := SeverityWarning
		if len(codes) >= policy.ErrorConcernThreshold {
			severity = SeverityError
		}
		report.Concerns = append(report.Concerns, RouteConcern{
			RouteID:  r.ID,
			Signal:   r.Signal,
			Name:     r.DisplayName(),
			Codes:    codes,
			Severity: severity,
		})
	}
	report.DuplicateSrtPorts = len(duplicateEndpoints)

	sort.SliceStable(report.Concerns, func(i, j int) bool {
		return report.Concerns[i].Signal < report.Concerns[j].Signal
	})
	return report
}

// missingLegs returns the concern codes for required chain legs the route
// lacks: source, encoder, transport, decoder, switcher mapping, and alias.
func missingLegs(r route.ProfileRoute) []string {
	var codes []string
	if r.TruckSDI == "" {
		codes = append(codes, ConcernMissingSource)
	}
	if r.EncoderBrand == "" && r.EncoderUnit == "" {
		codes = append(codes, ConcernMissingEncoder)
	}
	if r.Protocol == "" || !r.HasEndpoint() {
		codes = append(codes, ConcernMissingTransport)
	}
	if r.RxDevice == "" {
		codes = append(codes, ConcernMissingDecoder)
	}
	if r.SwitcherIn == "" {
		codes = append(codes, ConcernMissingSwitcher)
	}
	if r.ProductionAlias() == "" {
		codes = append(codes, ConcernMissingAlias)
	}
	return codes
}

func normalizeEndpoint(endpoint string) string {
	return strings.ToLower(strings.TrimSpace(endpoint))
}

// Summary renders a one-line description of a concern for operator output.
func (c RouteConcern) Summary() string {
	return fmt.Sprintf("%s (signal %d): %s", c.Name, c.Signal, strings.Join(c.Codes, ", "))
}
