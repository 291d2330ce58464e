package storage

import (
	"encoding/json"
	"fmt"
)

// MergePatch applies a JSON merge patch to an original JSON document. Nested
// objects merge key by key, null patch values delete keys, and any other
// patch value replaces the original. Arrays replace wholesale; partial list
// edits are expressed by patching the full list.
func MergePatch(original, patch []byte) ([]byte, error) {
	var patchValue any
	if err := json.Unmarshal(patch, &patchValue); err != nil {
		return nil, fmt.Errorf("unmarshal patch: %w", err)
	}
	patchObject, ok := patchValue.(map[string]any)
	if !ok {
		return patch, nil
	}

	var originalValue any
	if len(original) > 0 {
		if err := json.Unmarshal(original, &originalValue); err != nil {
			return nil, fmt.Errorf("unmarshal original: %w", err)
		}
	}
	originalObject, ok := originalValue.(map[string]any)
	if !ok {
		originalObject = map[string]any{}
	}

	merged, err := json.Marshal(mergeObjects(originalObject, patchObject))
	if err != nil {
		return nil, fmt.Errorf("marshal merged document: %w", err)
	}
	return merged, nil
}

func mergeObjects(original, patch map[string]any) map[string]any {
	merged := make(map[string]any, len(original)+len(patch))
	for key, value := range original {
		merged[key] = value
	}
	for key, value := range patch {
		if value == nil {
			delete(merged, key)
			continue
		}
		patchChild, patchIsObject := value.(map[string]any)
		originalChild, originalIsObject := merged[key].(map[string]any)
		if patchIsObject && originalIsObject {
			merged[key] = mergeObjects(originalChild, patchChild)
			continue
		}
		merged[key] = value
	}
	return merged
}
