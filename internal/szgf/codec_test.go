package szgf

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/meur/guideforge/internal/doc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nicole() doc.Map {
	return doc.Map{
		"author":         "A",
		"last_updated":   "2024-01-01",
		"description":    "d",
		"character":      doc.Map{"name": "Nicole", "rarity": 5, "banner": nil},
		"weapons":        doc.List{},
		"discs":          nil,
		"stat":           nil,
		"skill_priority": nil,
		"skills":         doc.List{},
		"mindscapes":     doc.List{},
		"team":           nil,
		"rotation":       nil,
	}
}

func fullGuide() doc.Map {
	return doc.Map{
		"author":       "seria",
		"last_updated": "2025-03-14",
		"character":    doc.Map{"name": "Zhu Yuan", "rarity": 5, "banner": "https://example.com/banner.webp"},
		"description":  "Line one.\nLine two with **bold** and <core>.\n",
		"weapons": doc.List{
			doc.Map{"name": "Riot Suppressor Mark VI", "description": "Signature.", "title": "Best in slot"},
			doc.Map{"name": "Starlight Engine Replica", "description": "key: value # not a comment"},
		},
		"discs": doc.Map{
			"four_pieces":    doc.List{doc.Map{"name": "Chaotic Metal", "description": "Ether DMG."}},
			"two_pieces":     doc.List{doc.Map{"name": "Woodpecker Electro / Puffer Electro", "description": "CRIT."}},
			"extra_sections": doc.List{doc.Map{"title": "Notes", "description": "yes"}},
		},
		"stat": doc.Map{
			"main_stats":     doc.List{doc.Map{"pos": 4, "stat_priority": "CRIT Rate / CRIT DMG"}, doc.Map{"pos": 6, "stat_priority": "ATK%"}},
			"sub_stats":      "CRIT > ATK% > PEN",
			"baseline_stats": "60% CRIT Rate",
		},
		"skill_priority": doc.Map{
			"description": "Core first.",
			"priorities":  doc.List{doc.List{"core"}, doc.List{"basic", "special"}, doc.List{"chain"}},
		},
		"skills": doc.List{
			doc.Map{"title": "Basic Attack", "description": "  leading spaces", "explanation": "tab\there", "demo": "https://example.com/a.gif"},
			doc.Map{"title": "123", "description": "true", "explanation": "null"},
			doc.Map{"title": "-dash", "description": "@at", "explanation": "it's \"quoted\""},
			doc.Map{"title": "★ S-Rank", "description": "#hash", "explanation": "ends with colon:"},
		},
		"mindscapes": doc.List{doc.Map{"num": 1, "description": "Big."}, doc.Map{"num": 6, "description": "Bigger."}},
		"team": doc.Map{
			"teams": doc.List{
				doc.Map{"name": "Stun", "description": "Standard.", "characters": doc.List{doc.Map{"name": "Qingyi"}, doc.Map{"name": "Nicole / Seth"}}},
				doc.Map{"name": "F2P", "characters": doc.List{doc.Map{"name": "Anby"}}},
			},
			"extra_sections": doc.List{doc.Map{"title": "Why", "description": "Because."}},
		},
		"rotation": doc.Map{"title": "Loop", "description": "1. Basic\n2. Special"},
		"ratio":    0.75,
		"draft":    false,
		"meta":     doc.Map{},
	}
}

func TestSerialize_Nicole(t *testing.T) {
	out, err := Serialize(nicole())
	require.NoError(t, err)

	want := Directive + "\n\n" +
		"author: A\n" +
		"last_updated: \"2024-01-01\"\n" +
		"character:\n" +
		"  name: Nicole\n" +
		"  rarity: 5\n" +
		"description: d\n"
	assert.Equal(t, want, string(out))
	assert.NotContains(t, string(out), "banner:")
	assert.NotContains(t, string(out), "weapons:")
}

func TestSerialize_RoundTrip(t *testing.T) {
	for name, d := range map[string]doc.Map{"nicole": doc.Clean(nicole()), "full": fullGuide()} {
		t.Run(name, func(t *testing.T) {
			text, err := Serialize(d)
			require.NoError(t, err)

			back, err := Deserialize(text)
			require.NoError(t, err)

			if diff := cmp.Diff(doc.Normalize(d), doc.Normalize(back)); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s\n%s", diff, text)
			}
		})
	}
}

func TestSerialize_Layout(t *testing.T) {
	out, err := Serialize(fullGuide())
	require.NoError(t, err)
	text := string(out)

	assert.True(t, strings.HasPrefix(text, Directive+"\n\n"))

	// model order, unknown keys last and sorted
	order := []string{"author:", "last_updated:", "character:", "description:", "weapons:", "discs:", "stat:",
		"skill_priority:", "skills:", "mindscapes:", "team:", "rotation:", "draft:", "meta:", "ratio:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(text, "\n"+key)
		require.Greater(t, idx, last, "key %s out of order", key)
		last = idx
	}
	weapon := text[strings.Index(text, "Riot Suppressor"):]
	assert.Less(t, strings.Index(weapon, "description:"), strings.Index(weapon, "title:"))

	assert.Contains(t, text, "title: \"123\"")
	assert.Contains(t, text, "description: \"true\"")
	assert.Contains(t, text, "description: \"key: value # not a comment\"")
	assert.Contains(t, text, "name: Zhu Yuan")
	assert.Contains(t, text, "description: |")
	assert.Contains(t, text, "description: \"@at\"")
	assert.Contains(t, text, "explanation: \"ends with colon:\"")
}

func TestEncode_NoWrapNoAnchors(t *testing.T) {
	long := strings.Repeat("word ", 80) + "end"
	shared := doc.Map{"title": "Shared", "description": "Same map twice"}
	d := doc.Map{
		"description": long,
		"discs":       doc.Map{"extra_sections": doc.List{shared}},
		"stat":        doc.Map{"extra_sections": doc.List{shared}},
	}

	out, err := Encode(d)
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "description: "+long+"\n")
	assert.NotContains(t, text, "&")
	assert.Equal(t, 2, strings.Count(text, "title: Shared"))
}

func TestDeserialize(t *testing.T) {
	text := Directive + `

author: A
last_updated: 2024-01-01
character:
  name: Nicole
  rarity: 5
base: &base
  title: T
  description: D
rotation:
  <<: *base
  title: Own
`
	d, err := Deserialize([]byte(text))
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", d["last_updated"])
	assert.Equal(t, doc.Map{"name": "Nicole", "rarity": 5}, d["character"])
	assert.Equal(t, doc.Map{"title": "Own", "description": "D"}, d["rotation"])
}

func TestDeserialize_Errors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantLine bool
	}{
		{"empty", "", false},
		{"unclosed flow", "author: [unclosed\n", false},
		{"bad indentation", "author: a\n  description: b\n", true},
		{"top level list", "- a\n- b\n", true},
		{"top level scalar", "just text\n", true},
		{"multiple documents", "author: a\n---\nauthor: b\n", true},
		{"duplicate key", "author: a\nauthor: b\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Deserialize([]byte(tt.text))
			require.Error(t, err)
			assert.Nil(t, d)

			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %T: %v", err, err)
			if tt.wantLine {
				assert.Greater(t, pe.Line, 0, pe.Error())
			}
		})
	}
}

func TestDeserialize_Aliases(t *testing.T) {
	t.Run("nested expansion", func(t *testing.T) {
		d, err := Deserialize([]byte("author: A\nx: &a [p, q]\ny: &b [*a, *a]\nz: [*b, *b]\n"))
		require.NoError(t, err)
		pq := doc.List{"p", "q"}
		assert.Equal(t, doc.List{doc.List{pq, pq}, doc.List{pq, pq}}, d["z"])
	})

	// laughs builds levels of anchors that each repeat the previous one ten times.
	laughs := func(levels int) string {
		var b strings.Builder
		b.WriteString("a0: &a0 [lol]\n")
		for i := 1; i <= levels; i++ {
			fmt.Fprintf(&b, "a%d: &a%d [", i, i)
			for j := 0; j < 10; j++ {
				if j > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "*a%d", i-1)
			}
			b.WriteString("]\n")
		}
		return b.String()
	}

	tests := []struct {
		name string
		text string
		msg  string
	}{
		{"self-referencing list", "author: A\nweapons: &x\n  - *x\n", "contains itself"},
		{"self-referencing mapping", "author: A\nrotation: &r\n  title: T\n  description: *r\n", "contains itself"},
		{"self-referencing merge", "author: A\nrotation: &r\n  <<: *r\n", "contains itself"},
		{"indirect cycle", "author: A\na: &a\n  b: &b\n    - *a\n", "contains itself"},
		{"exponential expansion", laughs(8), "expands to more than"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Deserialize([]byte(tt.text))
			require.Error(t, err)
			assert.Nil(t, d)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %T: %v", err, err)
			assert.Contains(t, pe.Msg, tt.msg)
			assert.Greater(t, pe.Line, 0)
		})
	}
}

func TestSerialize_WhitespaceStrings(t *testing.T) {
	fixed := []string{"\n", "\n\n", "\na", "a\n", "a\n\n", " \na", "a \nb", "\ta\n", "a\n\tb", "  a\n  b\n"}

	// every string of up to three parts over newline, space, tab and a letter
	parts := []string{"\n", " ", "\t", "a"}
	generated := []string{""}
	var all []string
	for n := 0; n < 3; n++ {
		var next []string
		for _, prefix := range generated {
			for _, p := range parts {
				next = append(next, prefix+p)
			}
		}
		all = append(all, next...)
		generated = next
	}

	for _, s := range append(fixed, all...) {
		d := doc.Map{
			"author":      "A",
			"description": s,
			"weapons":     doc.List{doc.Map{"name": "W", "description": s}},
			"team": doc.Map{"teams": doc.List{
				doc.Map{"name": "T", "characters": doc.List{doc.Map{"name": s}}},
			}},
		}
		text, err := Serialize(d)
		require.NoError(t, err, "%q", s)
		back, err := Deserialize(text)
		require.NoError(t, err, "%q:\n%s", s, text)
		if diff := cmp.Diff(doc.Clean(d), back); diff != "" {
			t.Errorf("round trip of %q mismatch (-want +got):\n%s\n%s", s, diff, text)
		}
	}
}

func TestSerialize_LeadingNewlineIsQuoted(t *testing.T) {
	out, err := Encode(doc.Map{"description": "\nafter blank"})
	require.NoError(t, err)
	assert.Equal(t, "description: \"\\nafter blank\"\n", string(out))

	out, err = Encode(doc.Map{"description": "one\ntwo\n"})
	require.NoError(t, err)
	assert.Equal(t, "description: |\n  one\n  two\n", string(out))
}

func TestFilename(t *testing.T) {
	tests := map[string]string{
		"Nicole":            "nicole.yml",
		"Zhu Yuan":          "zhu-yuan.yml",
		"  Ellen   Joe ":    "ellen-joe.yml",
		`Anby's "Best"`:     "anbys-best.yml",
		"":                  "guide.yml",
		"Soldier 11":        "soldier-11.yml",
		"Ärger":             "ärger.yml",
		"Miyabi / Yanagi":   "miyabi-yanagi.yml",
		"Hoshimi Miyabi\t2": "hoshimi-miyabi-2.yml",
	}
	for in, want := range tests {
		assert.Equal(t, want, Filename(in), "Filename(%q)", in)
	}
}
