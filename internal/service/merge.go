package service

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/MohdFaizan63/Resume-Builder/internal/resume"
)

// applyPatch merges a JSON patch onto c. Objects merge key by key, anything else
// (arrays, scalars, null) replaces the stored value. Keys that are not part of the
// editable content are ignored.
func applyPatch(c resume.Content, patch []byte) (resume.Content, error) {
	var changes map[string]json.RawMessage
	if err := json.Unmarshal(patch, &changes); err != nil {
		return resume.Content{}, resume.NewValidationError("body", "request body must be a JSON object")
	}

	stored, err := json.Marshal(c)
	if err != nil {
		return resume.Content{}, fmt.Errorf("marshal stored content: %w", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(stored, &doc); err != nil {
		return resume.Content{}, fmt.Errorf("unmarshal stored content: %w", err)
	}

	for key, value := range changes {
		current, editable := doc[key]
		if !editable {
			continue
		}
		merged, err := mergeJSON(current, value)
		if err != nil {
			return resume.Content{}, resume.NewValidationError(key, "malformed value")
		}
		doc[key] = merged
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return resume.Content{}, fmt.Errorf("marshal merged content: %w", err)
	}

	var out resume.Content
	if err := json.Unmarshal(merged, &out); err != nil {
		if verr, ok := resume.DecodeError(err); ok {
			return resume.Content{}, verr
		}
		return resume.Content{}, resume.NewValidationError("body", err.Error())
	}
	return out, nil
}

func mergeJSON(dst, src json.RawMessage) (json.RawMessage, error) {
	if !isObject(dst) || !isObject(src) {
		return src, nil
	}

	var target, changes map[string]json.RawMessage
	if err := json.Unmarshal(dst, &target); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(src, &changes); err != nil {
		return nil, err
	}
	for key, value := range changes {
		merged, err := mergeJSON(target[key], value)
		if err != nil {
			return nil, err
		}
		target[key] = merged
	}
	return json.Marshal(target)
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
