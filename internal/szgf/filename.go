package szgf

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Ext is the extension of exported guide files.
const Ext = ".yml"

var (
	quoteRegex     = regexp.MustCompile(`['"]`)
	separatorRegex = regexp.MustCompile(`[\s/\\]+`)
)

// Slug turns a character name into a file-name stem: lower-cased, quotes
// dropped, whitespace runs replaced by "-". Empty names give "guide".
func Slug(name string) string {
	s := norm.NFC.String(strings.TrimSpace(name))
	s = cases.Lower(language.Und).String(s)
	s = quoteRegex.ReplaceAllString(s, "")
	s = separatorRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "guide"
	}
	return s
}

// Filename returns the export file name for a guide about characterName.
func Filename(characterName string) string {
	return Slug(characterName) + Ext
}
