package models

import "github.com/meur/guideforge/internal/doc"

// Document paths. Collection paths below a list use "*" for the element
// index; resolve them with doc.Path.Pattern or Element.
const (
	PathAuthor          doc.Path = "author"
	PathLastUpdated     doc.Path = "last_updated"
	PathDescription     doc.Path = "description"
	PathCharacter       doc.Path = "character"
	PathCharacterName   doc.Path = "character.name"
	PathCharacterRarity doc.Path = "character.rarity"
	PathCharacterBanner doc.Path = "character.banner"

	PathWeapons    doc.Path = "weapons"
	PathSkills     doc.Path = "skills"
	PathMindscapes doc.Path = "mindscapes"

	PathDiscs              doc.Path = "discs"
	PathDiscsFourPieces    doc.Path = "discs.four_pieces"
	PathDiscsTwoPieces     doc.Path = "discs.two_pieces"
	PathDiscsExtraSections doc.Path = "discs.extra_sections"

	PathStat              doc.Path = "stat"
	PathStatMainStats     doc.Path = "stat.main_stats"
	PathStatSubStats      doc.Path = "stat.sub_stats"
	PathStatBaselineStats doc.Path = "stat.baseline_stats"
	PathStatExtraSections doc.Path = "stat.extra_sections"

	PathSkillPriority            doc.Path = "skill_priority"
	PathSkillPriorityDescription doc.Path = "skill_priority.description"
	PathSkillPriorities          doc.Path = "skill_priority.priorities"

	PathTeam              doc.Path = "team"
	PathTeamTeams         doc.Path = "team.teams"
	PathTeamCharacters    doc.Path = "team.teams.*.characters"
	PathTeamExtraSections doc.Path = "team.extra_sections"

	PathRotation            doc.Path = "rotation"
	PathRotationTitle       doc.Path = "rotation.title"
	PathRotationDescription doc.Path = "rotation.description"
)

// Element substitutes indices for the "*" segments of a pattern, in order.
// Element(PathTeamCharacters, 2) is "team.teams.2.characters".
func Element(pattern doc.Path, indices ...int) doc.Path {
	var out doc.Path
	for _, seg := range pattern.Segments() {
		if seg == "*" && len(indices) > 0 {
			out = out.Index(indices[0])
			indices = indices[1:]
			continue
		}
		out = out.Child(seg)
	}
	return out
}
