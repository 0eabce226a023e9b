package models

import (
	"github.com/meur/guideforge/internal/doc"
)

// Collection describes an ordered list of records in the document.
type Collection struct {
	Path     doc.Path // may contain "*" segments
	Template func() any
}

// Section describes an optional sub-document that is enabled and disabled as
// a whole.
type Section struct {
	Key         string
	Path        doc.Path
	Skeleton    func() any
	Collections []doc.Path
}

var sections = []Section{
	{
		Key:         "discs",
		Path:        PathDiscs,
		Skeleton:    func() any { return NewDiscs() },
		Collections: []doc.Path{PathDiscsFourPieces, PathDiscsTwoPieces, PathDiscsExtraSections},
	},
	{
		Key:         "stat",
		Path:        PathStat,
		Skeleton:    func() any { return NewStat() },
		Collections: []doc.Path{PathStatMainStats, PathStatExtraSections},
	},
	{
		Key:         "skill_priority",
		Path:        PathSkillPriority,
		Skeleton:    func() any { return NewSkillPriority() },
		Collections: []doc.Path{PathSkillPriorities},
	},
	{
		Key:         "team",
		Path:        PathTeam,
		Skeleton:    func() any { return NewTeam() },
		Collections: []doc.Path{PathTeamTeams, PathTeamCharacters, PathTeamExtraSections},
	},
	{
		Key:      "rotation",
		Path:     PathRotation,
		Skeleton: func() any { return NewRotation() },
	},
}

var collections = []Collection{
	{Path: PathWeapons, Template: func() any { return NewWeapon() }},
	{Path: PathSkills, Template: func() any { return NewSkill() }},
	{Path: PathMindscapes, Template: func() any { return NewMindscape() }},
	{Path: PathDiscsFourPieces, Template: func() any { return NewDiscSet() }},
	{Path: PathDiscsTwoPieces, Template: func() any { return NewDiscSet() }},
	{Path: PathDiscsExtraSections, Template: func() any { return NewExtraSection() }},
	{Path: PathStatMainStats, Template: func() any { return NewMainStat() }},
	{Path: PathStatExtraSections, Template: func() any { return NewExtraSection() }},
	{Path: PathSkillPriorities, Template: func() any { return NewPriorityLevel() }},
	{Path: PathTeamTeams, Template: func() any { return NewTeamComp() }},
	{Path: PathTeamCharacters, Template: func() any { return NewTeamMember() }},
	{Path: PathTeamExtraSections, Template: func() any { return NewExtraSection() }},
}

// Sections returns the optional sections in document order.
func Sections() []Section {
	return append([]Section(nil), sections...)
}

// LookupSection finds a section by key ("discs", "team", ...).
func LookupSection(key string) (Section, bool) {
	for _, s := range sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

// Collections returns every known collection.
func Collections() []Collection {
	return append([]Collection(nil), collections...)
}

// TemplateFor returns the empty item appended to the collection at p, as a
// document value. p may be concrete ("team.teams.0.characters").
func TemplateFor(p doc.Path) (any, bool) {
	pattern := p.Pattern()
	for _, c := range collections {
		if c.Path == pattern {
			v, err := ToValue(c.Template())
			if err != nil {
				return nil, false
			}
			return v, true
		}
	}
	return nil, false
}
