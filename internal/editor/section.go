package editor

import (
	"fmt"
	"slices"

	"github.com/meur/guideforge/internal/doc"
	"github.com/meur/guideforge/internal/models"
)

// Section edits one optional part of the guide (discs, stat, ...).
type Section struct {
	s   *Session
	def models.Section
}

// Section returns the editor for the section named key.
func (s *Session) Section(key string) (*Section, error) {
	def, ok := models.LookupSection(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, key)
	}
	return &Section{s: s, def: def}, nil
}

// Key is the section name, as used in the API.
func (sec *Section) Key() string { return sec.def.Key }

// Enable installs the empty skeleton. An enabled section is left as is.
func (sec *Section) Enable() error {
	return sec.s.apply(func(d doc.Map) (doc.Map, error) {
		if enabled(d, sec.def.Path) {
			return d, nil
		}
		v, err := models.ToValue(sec.def.Skeleton())
		if err != nil {
			return nil, err
		}
		return doc.Set(d, sec.def.Path, v)
	})
}

// Disable sets the section to null, dropping its content.
func (sec *Section) Disable() error {
	return sec.s.Set(sec.def.Path, nil)
}

// Enabled reports whether the section holds content.
func (sec *Section) Enabled() bool {
	return enabled(sec.s.Document(), sec.def.Path)
}

func enabled(d doc.Map, p doc.Path) bool {
	v, err := doc.Get(d, p)
	return err == nil && v != nil
}

// Collection returns a list inside the section. name is relative to the
// section ("four_pieces", "teams.1.characters").
func (sec *Section) Collection(name string) (*Collection, error) {
	p := sec.def.Path.Child(name)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !slices.Contains(sec.def.Collections, p.Pattern()) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, p)
	}
	return sec.s.Collection(p), nil
}

// Collection edits the list of records at a path.
type Collection struct {
	s    *Session
	path doc.Path
}

// Collection returns the editor for the list at p. Any list path works;
// only registered collections can Add without an item.
func (s *Session) Collection(p doc.Path) *Collection {
	return &Collection{s: s, path: p}
}

// Path is the concrete path of the list.
func (c *Collection) Path() doc.Path { return c.path }

// Add appends item, or the collection's template when item is nil.
func (c *Collection) Add(item any) error { return c.s.AppendItem(c.path, item) }

// Remove deletes element index.
func (c *Collection) Remove(index int) error { return c.s.RemoveItem(c.path, index) }

// Update sets one field of element index.
func (c *Collection) Update(index int, field string, value any) error {
	return c.s.UpdateItemField(c.path, index, field, value)
}

// Replace swaps element index for value.
func (c *Collection) Replace(index int, value any) error {
	return c.s.ReplaceItem(c.path, index, value)
}

// Len returns the number of elements.
func (c *Collection) Len() (int, error) { return doc.Len(c.s.Document(), c.path) }
