package storage

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestMergePatch_MergesNestedObjects(t *testing.T) {
	original := []byte(`{"title":"Week 9","transport":{"primaryProtocol":"SRT","primaryDestination":"198.51.100.9:9000"}}`)
	patch := []byte(`{"transport":{"backupProtocol":"RTMP"}}`)

	merged, err := MergePatch(original, patch)
	if err != nil {
		t.Fatalf("merge patch: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(merged, &got); err != nil {
		t.Fatalf("unmarshal merged: %v", err)
	}
	want := map[string]any{
		"title": "Week 9",
		"transport": map[string]any{
			"primaryProtocol":    "SRT",
			"primaryDestination": "198.51.100.9:9000",
			"backupProtocol":     "RTMP",
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merged = %v, want %v", got, want)
	}
}

func TestMergePatch_NullDeletesKey(t *testing.T) {
	original := []byte(`{"title":"Week 9","venue":"Arena North"}`)
	patch := []byte(`{"venue":null}`)

	merged, err := MergePatch(original, patch)
	if err != nil {
		t.Fatalf("merge patch: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(merged, &got); err != nil {
		t.Fatalf("unmarshal merged: %v", err)
	}
	if _, ok := got["venue"]; ok {
		t.Fatalf("venue should be deleted, got %v", got)
	}
	if got["title"] != "Week 9" {
		t.Fatalf("title = %v, want %q", got["title"], "Week 9")
	}
}

func TestMergePatch_ArraysReplaceWholesale(t *testing.T) {
	original := []byte(`{"signals":[{"number":1},{"number":2}]}`)
	patch := []byte(`{"signals":[{"number":3}]}`)

	merged, err := MergePatch(original, patch)
	if err != nil {
		t.Fatalf("merge patch: %v", err)
	}

	var got struct {
		Signals []map[string]any `json:"signals"`
	}
	if err := json.Unmarshal(merged, &got); err != nil {
		t.Fatalf("unmarshal merged: %v", err)
	}
	if len(got.Signals) != 1 {
		t.Fatalf("signals = %v, want single replaced element", got.Signals)
	}
}

func TestMergePatch_EmptyOriginal(t *testing.T) {
	merged, err := MergePatch(nil, []byte(`{"title":"Week 9"}`))
	if err != nil {
		t.Fatalf("merge patch: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(merged, &got); err != nil {
		t.Fatalf("unmarshal merged: %v", err)
	}
	if got["title"] != "Week 9" {
		t.Fatalf("title = %v, want %q", got["title"], "Week 9")
	}
}

func TestMergePatch_InvalidPatch(t *testing.T) {
	if _, err := MergePatch([]byte(`{}`), []byte(`{`)); err == nil {
		t.Fatal("expected error for malformed patch")
	}
}
