package doc

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a value in a document with dot-separated segments, e.g.
// "stat.main_stats" or "team.teams.0.characters". Segments that address a
// List element are decimal indices. The empty path is the root.
type Path string

// Segments splits the path. The root path has no segments.
func (p Path) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), ".")
}

// Validate rejects paths with empty segments.
func (p Path) Validate() error {
	for _, seg := range p.Segments() {
		if seg == "" {
			return fmt.Errorf("%w: %q", ErrInvalidPath, string(p))
		}
	}
	return nil
}

// Child appends a field segment.
func (p Path) Child(name string) Path {
	if p == "" {
		return Path(name)
	}
	return Path(string(p) + "." + name)
}

// Index appends a list index segment.
func (p Path) Index(i int) Path {
	return p.Child(strconv.Itoa(i))
}

// Pattern replaces index segments with "*", so that every element of a
// collection maps to the same pattern ("team.teams.*.characters").
func (p Path) Pattern() Path {
	segs := p.Segments()
	for i, seg := range segs {
		if isIndex(seg) {
			segs[i] = "*"
		}
	}
	return Path(strings.Join(segs, "."))
}

func (p Path) prefix(n int) Path {
	segs := p.Segments()
	if n > len(segs) {
		n = len(segs)
	}
	return Path(strings.Join(segs[:n], "."))
}

func (p Path) String() string {
	if p == "" {
		return "root"
	}
	return string(p)
}

func isIndex(seg string) bool {
	if seg == "" {
		return false
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
