package szgf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParseError reports guide text that could not be read. Line and Column are
// 1-based and zero when unknown.
type ParseError struct {
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse guide: line %d: %s", e.Line, e.Msg)
	}
	return "parse guide: " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

var yamlLineRe = regexp.MustCompile(`^line (\d+):(?: column (\d+):)? `)

// newParseError turns a yaml.v3 error ("yaml: line 3: did not find expected
// key") into a ParseError.
func newParseError(err error) *ParseError {
	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	pe := &ParseError{Msg: msg, Err: err}
	if m := yamlLineRe.FindStringSubmatch(msg); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			pe.Column, _ = strconv.Atoi(m[2])
		}
		pe.Msg = msg[len(m[0]):]
	}
	return pe
}
