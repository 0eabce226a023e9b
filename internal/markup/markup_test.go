package markup

import (
	"testing"

	"github.com/meur/guideforge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		start, end int
		want       Edit
	}{
		{"selection", "use dodge now", 4, 9, Edit{Text: "use **dodge** now", Cursor: 13}},
		{"cursor only", "ab", 1, 1, Edit{Text: "a****b", Cursor: 3}},
		{"empty text", "", 0, 0, Edit{Text: "****", Cursor: 2}},
		{"multibyte", "★★★ rank", 0, 3, Edit{Text: "**★★★** rank", Cursor: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Wrap(tt.text, tt.start, tt.end, "**", "**")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInsert(t *testing.T) {
	got, err := Insert("press  then", 6, 6, "<chain>")
	require.NoError(t, err)
	assert.Equal(t, Edit{Text: "press <chain> then", Cursor: 13}, got)

	got, err = Insert("press X", 6, 7, "<core>")
	require.NoError(t, err)
	assert.Equal(t, Edit{Text: "press <core>", Cursor: 12}, got)
}

func TestRangeErrors(t *testing.T) {
	for _, r := range [][2]int{{-1, 0}, {2, 1}, {0, 4}} {
		_, err := Wrap("abc", r[0], r[1], "*", "*")
		assert.ErrorIs(t, err, ErrRange, "range %v", r)
		_, err = Insert("abc", r[0], r[1], "<core>")
		assert.ErrorIs(t, err, ErrRange, "range %v", r)
	}
}

func TestApply(t *testing.T) {
	got, err := Apply("hit", 0, 3, "strikethrough")
	require.NoError(t, err)
	assert.Equal(t, "~~hit~~", got.Text)

	got, err = Apply("hit", 0, 3, "italic")
	require.NoError(t, err)
	assert.Equal(t, "*hit*", got.Text)

	got, err = Apply("then ", 5, 5, "assist")
	require.NoError(t, err)
	assert.Equal(t, "then <assist>", got.Text)

	_, err = Apply("x", 0, 0, "blink")
	assert.Error(t, err)
}

func TestSkillTags(t *testing.T) {
	tags := SkillTags("https://api.hakush.in/zzz/UI/{icon}.webp")
	require.Len(t, tags, len(models.SkillTypes()))
	assert.Equal(t, SkillTag{
		Skill: models.SkillBasic,
		Name:  "Basic Attack",
		Tag:   "<basic>",
		Icon:  "https://api.hakush.in/zzz/UI/Icon_Normal.webp",
	}, tags[0])

	seen := map[models.SkillType]bool{}
	for _, tag := range tags {
		seen[tag.Skill] = true
	}
	for _, s := range models.SkillTypes() {
		assert.True(t, seen[s], "missing tag for %s", s)
	}

	assert.Len(t, Formats(), 4)
}
