// Package markup implements the formatting toolbar of the guide's rich-text
// fields: markdown wrappers and inline skill tags. Offsets count runes.
package markup

import (
	"errors"
	"fmt"

	"github.com/meur/guideforge/internal/models"
	"github.com/meur/guideforge/internal/refdata"
)

var ErrRange = errors.New("selection out of range")

// Format is a markdown wrapper applied around a selection.
type Format struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
}

var formats = []Format{
	{Key: "bold", Name: "Bold", Prefix: "**", Suffix: "**"},
	{Key: "italic", Name: "Italic", Prefix: "*", Suffix: "*"},
	{Key: "underline", Name: "Underline", Prefix: "__", Suffix: "__"},
	{Key: "strikethrough", Name: "Strikethrough", Prefix: "~~", Suffix: "~~"},
}

func Formats() []Format {
	return append([]Format(nil), formats...)
}

// SkillTag is an inline button icon such as <core>.
type SkillTag struct {
	Skill models.SkillType `json:"skill"`
	Name  string           `json:"name"`
	Tag   string           `json:"tag"`
	Icon  string           `json:"icon"`
}

var skillIcons = []struct {
	skill models.SkillType
	name  string
	icon  string
}{
	{models.SkillBasic, "Basic Attack", "Icon_Normal"},
	{models.SkillDodge, "Dodge", "Icon_Evade"},
	{models.SkillChain, "Chain", "Icon_UltimateReady"},
	{models.SkillSpecial, "Special", "Icon_SpecialReady"},
	{models.SkillAssist, "Assist", "Icon_Switch"},
	{models.SkillCore, "Core Skill", "Icon_CoreSkill"},
}

// SkillTags lists the inline tags with icons resolved against iconTemplate.
func SkillTags(iconTemplate string) []SkillTag {
	out := make([]SkillTag, 0, len(skillIcons))
	for _, s := range skillIcons {
		out = append(out, SkillTag{
			Skill: s.skill,
			Name:  s.name,
			Tag:   Tag(s.skill),
			Icon:  refdata.IconURL(iconTemplate, s.icon),
		})
	}
	return out
}

// Tag returns the inline markup for a skill, e.g. "<chain>".
func Tag(s models.SkillType) string {
	return "<" + string(s) + ">"
}

// Edit is the result of a toolbar action: the new text and where the
// cursor goes.
type Edit struct {
	Text   string `json:"text"`
	Cursor int    `json:"cursor"`
}

// Wrap surrounds text[start:end] with prefix and suffix. With an empty
// selection both are inserted and the cursor lands between them; otherwise
// it lands after the suffix.
func Wrap(text string, start, end int, prefix, suffix string) (Edit, error) {
	rs := []rune(text)
	if err := checkRange(len(rs), start, end); err != nil {
		return Edit{}, err
	}
	p, s := []rune(prefix), []rune(suffix)
	out := make([]rune, 0, len(rs)+len(p)+len(s))
	out = append(out, rs[:start]...)
	out = append(out, p...)
	out = append(out, rs[start:end]...)
	out = append(out, s...)
	out = append(out, rs[end:]...)

	cursor := start + len(p)
	if end > start {
		cursor = end + len(p) + len(s)
	}
	return Edit{Text: string(out), Cursor: cursor}, nil
}

// Insert replaces text[start:end] with tag and puts the cursor after it.
func Insert(text string, start, end int, tag string) (Edit, error) {
	rs := []rune(text)
	if err := checkRange(len(rs), start, end); err != nil {
		return Edit{}, err
	}
	t := []rune(tag)
	out := make([]rune, 0, len(rs)+len(t))
	out = append(out, rs[:start]...)
	out = append(out, t...)
	out = append(out, rs[end:]...)
	return Edit{Text: string(out), Cursor: start + len(t)}, nil
}

// Apply runs the toolbar action named key: a format key ("bold") or a
// skill type ("core").
func Apply(text string, start, end int, key string) (Edit, error) {
	for _, f := range formats {
		if f.Key == key {
			return Wrap(text, start, end, f.Prefix, f.Suffix)
		}
	}
	if s, err := models.ParseSkillType(key); err == nil {
		return Insert(text, start, end, Tag(s))
	}
	return Edit{}, fmt.Errorf("unknown markup action %q", key)
}

func checkRange(n, start, end int) error {
	if start < 0 || end < start || end > n {
		return fmt.Errorf("%w: [%d, %d) of %d", ErrRange, start, end, n)
	}
	return nil
}
