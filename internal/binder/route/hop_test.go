package route

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewChainHasCanonicalHops(t *testing.T) {
	chain := NewChain("chain-1", 3, "ISO-3")
	if len(chain.Hops) != 5 {
		t.Fatalf("hop count = %d, want 5", len(chain.Hops))
	}
	wantKinds := []HopKind{HopTruckSDI, HopFlypackPatch, HopEncoder, HopCloudTransport, HopReceiver}
	for i, hop := range chain.Hops {
		if hop.Kind != wantKinds[i] {
			t.Fatalf("hop[%d].Kind = %s, want %s", i, hop.Kind, wantKinds[i])
		}
		if hop.Position != i+1 {
			t.Fatalf("hop[%d].Position = %d, want %d", i, hop.Position, i+1)
		}
		if hop.Status != HealthUnknown {
			t.Fatalf("hop[%d].Status = %s, want unknown", i, hop.Status)
		}
	}
}

func TestInsertHopAfterRenumbers(t *testing.T) {
	chain := NewChain("chain-1", 1, "ISO-1")
	hop := RouteHop{Kind: HopCustom, Label: "fiber converter", Meta: NotesMeta{Notes: "ST fiber pair 3"}}
	if err := chain.InsertHopAfter(2, hop); err != nil {
		t.Fatalf("insert hop: %v", err)
	}
	if len(chain.Hops) != 6 {
		t.Fatalf("hop count = %d, want 6", len(chain.Hops))
	}
	if chain.Hops[2].Kind != HopCustom {
		t.Fatalf("hops[2].Kind = %s, want custom", chain.Hops[2].Kind)
	}
	for i, hop := range chain.Hops {
		if hop.Position != i+1 {
			t.Fatalf("hops[%d].Position = %d, want %d", i, hop.Position, i+1)
		}
	}
}

func TestInsertHopRejectsBadPositionAndKind(t *testing.T) {
	chain := NewChain("chain-1", 1, "ISO-1")
	if err := chain.InsertHopAfter(99, RouteHop{Kind: HopCustom}); !errors.Is(err, ErrHopInvalidPosition) {
		t.Fatalf("error = %v, want %v", err, ErrHopInvalidPosition)
	}
	if err := chain.InsertHopAfter(0, RouteHop{Kind: "teleport"}); !errors.Is(err, ErrHopUnknownKind) {
		t.Fatalf("error = %v, want %v", err, ErrHopUnknownKind)
	}
}

func TestInsertHopRejectsMetaMismatch(t *testing.T) {
	chain := NewChain("chain-1", 1, "ISO-1")
	hop := RouteHop{Kind: HopCustom, Meta: EncoderMeta{Brand: "Haivision"}}
	if err := chain.InsertHopAfter(0, hop); !errors.Is(err, ErrHopMetaMismatch) {
		t.Fatalf("error = %v, want %v", err, ErrHopMetaMismatch)
	}
}

func TestRemoveHopOnlyCustom(t *testing.T) {
	chain := NewChain("chain-1", 1, "ISO-1")
	if err := chain.RemoveHop(1); !errors.Is(err, ErrHopNotRemovable) {
		t.Fatalf("error = %v, want %v", err, ErrHopNotRemovable)
	}

	if err := chain.InsertHopAfter(1, RouteHop{Kind: HopCustom, Label: "patch bay"}); err != nil {
		t.Fatalf("insert hop: %v", err)
	}
	if err := chain.RemoveHop(2); err != nil {
		t.Fatalf("remove hop: %v", err)
	}
	if len(chain.Hops) != 5 {
		t.Fatalf("hop count = %d, want 5", len(chain.Hops))
	}
	for i, hop := range chain.Hops {
		if hop.Position != i+1 {
			t.Fatalf("hops[%d].Position = %d, want %d", i, hop.Position, i+1)
		}
		if hop.Kind == HopCustom {
			t.Fatal("custom hop still present after removal")
		}
	}
}

func TestPatchHop(t *testing.T) {
	chain := NewChain("chain-1", 1, "ISO-1")
	label := "ENC-2 slot B"
	status := HealthWarn
	err := chain.PatchHop(3, HopPatch{
		Label:  &label,
		Status: &status,
		Meta:   EncoderMeta{Brand: "Haivision", Unit: "ENC-2", Slot: "B", IPMode: "static"},
	})
	if err != nil {
		t.Fatalf("patch hop: %v", err)
	}
	hop := chain.Hops[2]
	if hop.Label != label || hop.Status != HealthWarn {
		t.Fatalf("hop = %+v", hop)
	}
	meta, ok := hop.Meta.(EncoderMeta)
	if !ok {
		t.Fatalf("meta type = %T, want EncoderMeta", hop.Meta)
	}
	if meta.Unit != "ENC-2" {
		t.Fatalf("meta.Unit = %q", meta.Unit)
	}
}

func TestPatchHopRejectsWrongMetaVariant(t *testing.T) {
	chain := NewChain("chain-1", 1, "ISO-1")
	err := chain.PatchHop(1, HopPatch{Meta: ReceiverMeta{Brand: "Makito"}})
	if !errors.Is(err, ErrHopMetaMismatch) {
		t.Fatalf("error = %v, want %v", err, ErrHopMetaMismatch)
	}
	// A mismatch is a different refusal than an unrecognized kind.
	if errors.Is(err, ErrHopUnknownKind) {
		t.Fatalf("error = %v, must not match %v", err, ErrHopUnknownKind)
	}
}

func TestEffectiveStatusWorstOfHopsAndOverride(t *testing.T) {
	chain := NewChain("chain-1", 1, "ISO-1")
	for i := range chain.Hops {
		chain.Hops[i].Status = HealthHealthy
	}
	if got := chain.EffectiveStatus(); got != HealthHealthy {
		t.Fatalf("status = %s, want healthy", got)
	}

	chain.Hops[3].Status = HealthWarn
	if got := chain.EffectiveStatus(); got != HealthWarn {
		t.Fatalf("status = %s, want warn", got)
	}

	// A manual override can degrade a chain whose hops all look fine.
	chain.Hops[3].Status = HealthHealthy
	chain.StatusOverride = HealthDown
	if got := chain.EffectiveStatus(); got != HealthDown {
		t.Fatalf("status = %s, want down", got)
	}
}

func TestHopJSONRoundTripKeepsMetaVariant(t *testing.T) {
	chain := NewChain("chain-1", 2, "ISO-2")
	if err := chain.PatchHop(4, HopPatch{Meta: CloudTransportMeta{Protocol: "SRT", Mode: "caller", Endpoint: "203.0.113.4:9001", TxLabel: "TX-2"}}); err != nil {
		t.Fatalf("patch hop: %v", err)
	}
	if err := chain.InsertHopAfter(5, RouteHop{Kind: HopCustom, Label: "notes", Meta: NotesMeta{Notes: "temporary path"}}); err != nil {
		t.Fatalf("insert hop: %v", err)
	}

	data, err := json.Marshal(chain)
	if err != nil {
		t.Fatalf("marshal chain: %v", err)
	}
	var decoded CanonicalRoute
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal chain: %v", err)
	}

	transport, ok := decoded.Hops[3].Meta.(CloudTransportMeta)
	if !ok {
		t.Fatalf("hops[3].Meta type = %T, want CloudTransportMeta", decoded.Hops[3].Meta)
	}
	if transport.Endpoint != "203.0.113.4:9001" {
		t.Fatalf("endpoint = %q", transport.Endpoint)
	}
	notes, ok := decoded.Hops[5].Meta.(NotesMeta)
	if !ok {
		t.Fatalf("hops[5].Meta type = %T, want NotesMeta", decoded.Hops[5].Meta)
	}
	if notes.Notes != "temporary path" {
		t.Fatalf("notes = %q", notes.Notes)
	}
}

func TestCloneChainsIsDeep(t *testing.T) {
	chains := []CanonicalRoute{NewChain("chain-1", 1, "ISO-1")}
	cloned := CloneChains(chains)
	cloned[0].Hops[0].Status = HealthDown
	if chains[0].Hops[0].Status != HealthUnknown {
		t.Fatal("clone mutation leaked into original hops")
	}
}
