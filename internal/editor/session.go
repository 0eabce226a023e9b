// Package editor holds the server-side state of guide editing sessions. A
// Session owns one document and replaces it wholesale on every edit.
package editor

import (
	"slices"
	"sync"
	"time"

	"github.com/meur/guideforge/internal/doc"
	"github.com/meur/guideforge/internal/models"
	"github.com/meur/guideforge/internal/schema"
	"github.com/meur/guideforge/internal/szgf"
)

// Validator checks documents. *schema.Validator implements it.
type Validator interface {
	Validate(d doc.Map) []string
	State() schema.State
}

// requiredOnly validates without a schema.
type requiredOnly struct{}

func (requiredOnly) Validate(d doc.Map) []string { return schema.RequiredChecks(d) }
func (requiredOnly) State() schema.State         { return schema.Unloaded }

// Snapshot is a consistent view of a session.
type Snapshot struct {
	ID       string   `json:"id"`
	Revision int      `json:"revision"`
	Document doc.Map  `json:"document"`
	Errors   []string `json:"errors"`
}

// Export is a validated guide file ready to be saved or copied.
type Export struct {
	Filename string
	Content  []byte
}

// Session is one guide being edited. All methods are safe for concurrent use;
// every successful edit bumps the revision.
type Session struct {
	id        string
	validator Validator
	clock     func() time.Time

	mu       sync.Mutex
	doc      doc.Map
	revision int
	active   time.Time

	// errs was computed for errsRev while the validator was in errsState.
	errs      []string
	errsRev   int
	errsState schema.State
}

// NewSession starts a session on the default guide. A nil validator only
// runs the required-field checks.
func NewSession(id string, v Validator) (*Session, error) {
	return newSession(id, v, time.Now)
}

func newSession(id string, v Validator, clock func() time.Time) (*Session, error) {
	if v == nil {
		v = requiredOnly{}
	}
	s := &Session{id: id, validator: v, clock: clock, errsRev: -1}
	d, err := models.ToDoc(models.NewGuide(clock()))
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.commit(d)
	s.mu.Unlock()
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Document returns the current document. Callers must not modify it.
func (s *Session) Document() doc.Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Revision counts the edits applied since the session started.
func (s *Session) Revision() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// LastActive is the time of the latest edit or lookup.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Session) touch() {
	s.mu.Lock()
	s.active = s.clock()
	s.mu.Unlock()
}

// Snapshot returns the id, revision, document and validation messages as of
// one instant.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{ID: s.id, Revision: s.revision, Document: s.doc, Errors: slices.Clone(s.validate())}
}

// apply runs one edit. The document is left as it was when fn fails.
func (s *Session) apply(fn func(doc.Map) (doc.Map, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.doc)
	if err != nil {
		return err
	}
	s.commit(next)
	return nil
}

// commit installs d as the new revision. Must hold s.mu.
func (s *Session) commit(d doc.Map) {
	s.doc = d
	s.revision++
	s.active = s.clock()
	if s.validator.State() == schema.Loaded {
		s.validate()
	}
}

// validate returns the messages for the current revision, recomputing them
// when the document or the validator state changed. Must hold s.mu.
func (s *Session) validate() []string {
	state := s.validator.State()
	if s.errsRev != s.revision || s.errsState != state {
		s.errs = s.validator.Validate(s.doc)
		s.errsRev = s.revision
		s.errsState = state
	}
	return s.errs
}

// Set stores value at p. Empty strings in nullable fields are stored as null.
func (s *Session) Set(p doc.Path, value any) error {
	value = stored(p, value)
	return s.apply(func(d doc.Map) (doc.Map, error) { return doc.Set(d, p, value) })
}

// stored brings an incoming value for p into document form.
func stored(p doc.Path, v any) any {
	return models.NullifyOptional(p, doc.Normalize(v))
}

// AppendItem appends item to the collection at p. A nil item appends the
// collection's empty template.
func (s *Session) AppendItem(p doc.Path, item any) error {
	if item == nil {
		tmpl, ok := models.TemplateFor(p)
		if !ok {
			return &doc.PathError{Path: p, Err: ErrNoTemplate}
		}
		item = tmpl
	}
	item = stored(p.Child("*"), item)
	return s.apply(func(d doc.Map) (doc.Map, error) { return doc.AppendItem(d, p, item) })
}

// RemoveItem deletes element index of the collection at p.
func (s *Session) RemoveItem(p doc.Path, index int) error {
	return s.apply(func(d doc.Map) (doc.Map, error) { return doc.RemoveItem(d, p, index) })
}

// UpdateItemField sets one field of element index of the collection at p.
func (s *Session) UpdateItemField(p doc.Path, index int, field string, value any) error {
	value = stored(p.Index(index).Child(field), value)
	return s.apply(func(d doc.Map) (doc.Map, error) { return doc.UpdateItemField(d, p, index, field, value) })
}

// ReplaceItem swaps element index of the collection at p for value.
func (s *Session) ReplaceItem(p doc.Path, index int, value any) error {
	value = stored(p.Index(index), value)
	return s.apply(func(d doc.Map) (doc.Map, error) { return doc.ReplaceItem(d, p, index, value) })
}

// Errors returns the validation messages for the current document.
func (s *Session) Errors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.validate())
}

// Preview renders the current document without validating it.
func (s *Session) Preview() ([]byte, error) {
	return szgf.Serialize(s.Document())
}

// Export validates the document and renders it. Any message makes it a
// *ValidationError.
func (s *Session) Export() (Export, error) {
	s.mu.Lock()
	d := s.doc
	msgs := slices.Clone(s.validate())
	s.mu.Unlock()
	if len(msgs) > 0 {
		return Export{}, &ValidationError{Messages: msgs}
	}
	content, err := szgf.Serialize(d)
	if err != nil {
		return Export{}, err
	}
	name, _ := doc.Get(d, models.PathCharacterName)
	str, _ := name.(string)
	return Export{Filename: szgf.Filename(str), Content: content}, nil
}

// Import replaces the document with the parsed text. On a *szgf.ParseError
// the document is unchanged.
func (s *Session) Import(text []byte) error {
	parsed, err := szgf.Deserialize(text)
	if err != nil {
		return err
	}
	d := stored("", parsed).(doc.Map)
	return s.apply(func(doc.Map) (doc.Map, error) { return d, nil })
}

// Reset restores the default guide dated today.
func (s *Session) Reset(today time.Time) error {
	d, err := models.ToDoc(models.NewGuide(today))
	if err != nil {
		return err
	}
	return s.apply(func(doc.Map) (doc.Map, error) { return d, nil })
}
