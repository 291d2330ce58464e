package readiness

import (
	"strings"
	"testing"

	"github.com/louisbranch/showbinder/internal/binder"
)

func TestCanLockAllowsCompleteBinder(t *testing.T) {
	gate := CanLock(completeInput(4), DefaultLockPolicy)
	if !gate.Allowed {
		t.Fatalf("gate refused: %v", gate.Reasons)
	}
	if len(gate.Reasons) != 0 {
		t.Fatalf("reasons = %v, want none", gate.Reasons)
	}
}

func TestCanLockEnforcesChecklistThreshold(t *testing.T) {
	// 1 of 4 complete is 25%, below the 50% threshold, even though every
	// other condition is satisfied.
	in := completeInput(4)
	in.Checklist = []binder.ChecklistItem{
		{ID: "a", Done: true},
		{ID: "b"},
		{ID: "c"},
		{ID: "d"},
	}
	gate := CanLock(in, DefaultLockPolicy)
	if gate.Allowed {
		t.Fatal("gate allowed below checklist threshold")
	}
	if len(gate.Reasons) != 1 {
		t.Fatalf("reasons = %v, want exactly the checklist refusal", gate.Reasons)
	}
	if !strings.Contains(gate.Reasons[0], "50%") {
		t.Fatalf("reason = %q, want mention of 50%% threshold", gate.Reasons[0])
	}
}

func TestCanLockCollectsHardFailures(t *testing.T) {
	in := completeInput(12)
	in.EncoderCapacity = 5
	in.Transport.PrimaryProtocol = ""
	in.Transport.ReturnRequired = true
	in.Issues = []binder.Issue{{ID: "i1", HighPriority: true}}
	gate := CanLock(in, DefaultLockPolicy)
	if gate.Allowed {
		t.Fatal("gate allowed with hard failures present")
	}
	if len(gate.Reasons) != 4 {
		t.Fatalf("reasons = %v, want all four hard failures", gate.Reasons)
	}
}

func TestCanLockEmptyChecklistPassesFloor(t *testing.T) {
	in := completeInput(2)
	in.Checklist = nil
	if gate := CanLock(in, DefaultLockPolicy); !gate.Allowed {
		t.Fatalf("gate refused with empty checklist: %v", gate.Reasons)
	}
}

func TestCanLockCustomPolicy(t *testing.T) {
	in := completeInput(2)
	in.Checklist = []binder.ChecklistItem{
		{ID: "a", Done: true},
		{ID: "b"},
	}
	if gate := CanLock(in, LockPolicy{MinChecklistRatio: 0.75}); gate.Allowed {
		t.Fatal("gate allowed below custom threshold")
	}
	if gate := CanLock(in, LockPolicy{MinChecklistRatio: 0.5}); !gate.Allowed {
		t.Fatalf("gate refused at exactly the threshold: %v", gate.Reasons)
	}
}

func TestCanLockIgnoresRiskConditions(t *testing.T) {
	// Risk-level gaps (backup transport, labels, audio) do not gate the
	// lock; only the hard failures and the checklist floor do.
	in := completeInput(2)
	in.Transport.BackupProtocol = ""
	in.Transport.BackupDestination = ""
	in.Audio = binder.AudioConfig{}
	if gate := CanLock(in, DefaultLockPolicy); !gate.Allowed {
		t.Fatalf("gate refused on risk-only conditions: %v", gate.Reasons)
	}
}
