package domain

import (
	"reflect"
	"time"
)

// DocumentVersion is an immutable numbered snapshot of a document's extracted
// content. Numbers are contiguous per document, starting at 1.
type DocumentVersion struct {
	ID            string         `json:"id"`
	DocumentID    string         `json:"document_id"`
	VersionNumber int            `json:"version_number"`
	Content       map[string]any `json:"content"`
	Analysis      map[string]any `json:"analysis,omitempty"`
	StoragePath   string         `json:"storage_path"`
	ChangeNote    map[string]any `json:"change_note,omitempty"`
	CreatedBy     string         `json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
}

type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

type VersionDiff struct {
	Version1     int                    `json:"version1"`
	Version2     int                    `json:"version2"`
	FieldChanges map[string]FieldChange `json:"field_changes"`
}

// CompareVersions computes a field-level diff over the structured content of
// two versions. Keys present on either side are considered; a key appears in
// the result only when the values differ. Comparing a version to itself
// yields an empty change set.
func CompareVersions(v1, v2 *DocumentVersion) VersionDiff {
	changes := make(map[string]FieldChange)
	for key := range mergedKeys(v1.Content, v2.Content) {
		oldVal, newVal := v1.Content[key], v2.Content[key]
		if !reflect.DeepEqual(oldVal, newVal) {
			changes[key] = FieldChange{Old: oldVal, New: newVal}
		}
	}
	return VersionDiff{
		Version1:     v1.VersionNumber,
		Version2:     v2.VersionNumber,
		FieldChanges: changes,
	}
}

func mergedKeys(a, b map[string]any) map[string]struct{} {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return keys
}
