package models

import "fmt"

// ReferenceKind names one of the game-data catalogs used by the pickers.
type ReferenceKind string

const (
	KindCharacter ReferenceKind = "characters"
	KindWeapon    ReferenceKind = "weapons"
	KindEquipment ReferenceKind = "equipment"
)

// ReferenceKinds returns every catalog kind.
func ReferenceKinds() []ReferenceKind {
	return []ReferenceKind{KindCharacter, KindWeapon, KindEquipment}
}

// ParseReferenceKind validates a catalog kind.
func ParseReferenceKind(s string) (ReferenceKind, error) {
	for _, k := range ReferenceKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown reference kind %q", s)
}

// ReferenceEntry is a selectable character, W-Engine or disc set
type ReferenceEntry struct {
	ID      string        `json:"id"`
	Kind    ReferenceKind `json:"kind"`
	Name    string        `json:"name"`
	Rank    int           `json:"rank"`
	Icon    string        `json:"icon"`
	IconURL string        `json:"icon_url"`
}

// ReferenceList is a page of picker results
type ReferenceList struct {
	Items      []ReferenceEntry `json:"items"`
	TotalCount int              `json:"total_count"`
	Degraded   bool             `json:"degraded"`
}
