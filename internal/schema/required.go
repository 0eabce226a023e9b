package schema

import (
	"github.com/meur/guideforge/internal/doc"
	"github.com/meur/guideforge/internal/models"
)

var requiredFields = []struct {
	path doc.Path
	msg  string
}{
	{models.PathAuthor, "Author is required"},
	{models.PathLastUpdated, "Last updated date is required"},
	{models.PathDescription, "Description is required"},
	{models.PathCharacterName, "Character name is required"},
	{models.PathCharacterRarity, "Character rarity is required"},
}

// RequiredChecks reports the required fields d lacks, in a fixed order. A
// field is missing when absent, null, "", 0 or false.
func RequiredChecks(d doc.Map) []string {
	var msgs []string
	for _, f := range requiredFields {
		v, err := doc.Get(d, f.path)
		if err != nil || blank(v) {
			msgs = append(msgs, f.msg)
		}
	}
	return msgs
}

func blank(v any) bool {
	switch t := doc.Normalize(v).(type) {
	case nil:
		return true
	case string:
		return t == ""
	case int:
		return t == 0
	case float64:
		return t == 0
	case bool:
		return !t
	}
	return false
}
