package models

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/meur/guideforge/internal/doc"
)

// ToValue converts a typed model value into its document form through its
// JSON encoding.
func ToValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %T: %w", v, err)
	}
	return doc.Normalize(out), nil
}

// ToDoc converts a guide into a document tree.
func ToDoc(g Guide) (doc.Map, error) {
	v, err := ToValue(g)
	if err != nil {
		return nil, err
	}
	return v.(doc.Map), nil
}

// FromDoc decodes a document tree into a typed guide. Unknown keys are ignored.
func FromDoc(d doc.Map) (*Guide, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var g Guide
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode guide: %w", err)
	}
	return &g, nil
}
