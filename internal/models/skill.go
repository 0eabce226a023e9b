package models

import (
	"fmt"
	"strings"
)

// SkillType is a skill tag used in skill priorities and rich-text descriptions.
type SkillType string

const (
	SkillCore    SkillType = "core"
	SkillBasic   SkillType = "basic"
	SkillDodge   SkillType = "dodge"
	SkillSpecial SkillType = "special"
	SkillChain   SkillType = "chain"
	SkillAssist  SkillType = "assist"
)

// SetSeparator joins alternative names in a single field ("Anby / Billy").
const SetSeparator = " / "

// SkillTypes returns every skill tag in display order.
func SkillTypes() []SkillType {
	return []SkillType{SkillCore, SkillBasic, SkillDodge, SkillSpecial, SkillChain, SkillAssist}
}

// ParseSkillType validates a skill tag.
func ParseSkillType(s string) (SkillType, error) {
	for _, t := range SkillTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown skill type %q", s)
}

// SplitNames splits a field holding alternatives joined by SetSeparator.
func SplitNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, strings.TrimSpace(SetSeparator)) {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// JoinNames is the inverse of SplitNames.
func JoinNames(names ...string) string {
	return strings.Join(names, SetSeparator)
}
