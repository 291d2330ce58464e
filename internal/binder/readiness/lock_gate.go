package readiness

import "fmt"

// LockPolicy holds the lock-gate thresholds. The gate is deliberately
// stricter than the display-level readiness evaluation: locking freezes the
// binder for distribution, so it re-checks the hard failures and adds a
// checklist floor.
type LockPolicy struct {
	// MinChecklistRatio is the minimum completed fraction of the
	// checklist required before a lock is allowed.
	MinChecklistRatio float64
}

// DefaultLockPolicy preserves the observed 50% checklist threshold.
var DefaultLockPolicy = LockPolicy{MinChecklistRatio: 0.5}

// Gate is a lock-gate decision: allowed, or refused with the specific unmet
// conditions. A refusal is a normal result, not an error.
type Gate struct {
	Allowed bool     `json:"allowed"`
	Reasons []string `json:"reasons,omitempty"`
}

// CanLock evaluates the lock gate over the input: the hard blocked
// conditions (encoder shortfall, primary transport, return feed, blocking
// issues) plus the checklist completion floor. An empty checklist passes the
// floor vacuously.
func CanLock(in Input, policy LockPolicy) Gate {
	if policy.MinChecklistRatio <= 0 {
		policy = DefaultLockPolicy
	}

	var reasons []string

	if shortfall := encodersRequired(len(in.Signals)) - in.EncoderCapacity; shortfall > 0 {
		reasons = append(reasons, fmt.Sprintf("encoder capacity short by %d input(s)", shortfall))
	}
	if !in.Transport.PrimaryComplete() {
		reasons = append(reasons, "primary transport is missing protocol or destination")
	}
	if in.Transport.ReturnRequired && !in.Transport.ReturnConfigured() {
		reasons = append(reasons, "return feed required but not configured")
	}
	blocking := 0
	for _, issue := range in.Issues {
		if issue.HighPriority && !issue.Resolved {
			blocking++
		}
	}
	if blocking > 0 {
		reasons = append(reasons, fmt.Sprintf("%d high-priority issue(s) unresolved", blocking))
	}

	if done, total := checklistProgress(in.Checklist); total > 0 {
		ratio := float64(done) / float64(total)
		if ratio < policy.MinChecklistRatio {
			reasons = append(reasons, fmt.Sprintf(
				"checklist %d%% complete, below the %d%% lock threshold",
				int(ratio*100), int(policy.MinChecklistRatio*100),
			))
		}
	}

	return Gate{Allowed: len(reasons) == 0, Reasons: reasons}
}
