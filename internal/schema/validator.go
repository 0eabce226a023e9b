// Package schema checks guide documents against the published SZGF JSON
// schema and the editor's own required-field rules.
package schema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/goccy/go-json"
	"github.com/meur/guideforge/internal/doc"
	"github.com/meur/guideforge/internal/logger"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/singleflight"
)

// maxSchemaSize bounds the schema download.
const maxSchemaSize = 4 << 20

// State is the lifecycle of the remote schema.
type State int

const (
	Unloaded State = iota
	Loading
	Loaded
	LoadFailed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case LoadFailed:
		return "load_failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FetchError reports a schema download that failed. Status is zero when no
// response arrived.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch schema %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch schema %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Status is a snapshot of the validator for API clients.
type Status struct {
	State State  `json:"state"`
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// Validator holds at most one compiled schema and is safe for concurrent
// use. The zero value is not usable; call New.
type Validator struct {
	url    string
	client *http.Client
	log    *logger.Logger
	group  singleflight.Group

	mu      sync.RWMutex
	state   State
	schema  *jsonschema.Schema
	lastErr error
}

// New returns an Unloaded validator for the schema at url. A nil client
// means http.DefaultClient.
func New(url string, client *http.Client, log *logger.Logger) *Validator {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Validator{url: url, client: client, log: log}
}

func (v *Validator) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

func (v *Validator) Status() Status {
	v.mu.RLock()
	defer v.mu.RUnlock()
	st := Status{State: v.state, URL: v.url}
	if v.lastErr != nil {
		st.Error = v.lastErr.Error()
	}
	return st
}

// Load fetches and compiles the schema unless it is already loaded.
// Concurrent callers share one download. After a failure the next call
// tries again.
func (v *Validator) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.state == Loaded {
		v.mu.Unlock()
		return nil
	}
	v.state = Loading
	v.mu.Unlock()
	return v.load(ctx)
}

// Reload fetches the schema again. A loaded schema stays in use if the new
// download fails.
func (v *Validator) Reload(ctx context.Context) error {
	v.mu.Lock()
	if v.state != Loaded {
		v.state = Loading
	}
	v.mu.Unlock()
	return v.load(ctx)
}

func (v *Validator) load(ctx context.Context) error {
	_, err, _ := v.group.Do(v.url, func() (any, error) {
		raw, err := v.fetch(ctx)
		if err == nil {
			err = v.LoadBytes(raw)
		}
		if err != nil {
			v.fail(err)
			return nil, err
		}
		v.log.Info("schema loaded", "url", v.url, "bytes", len(raw))
		return nil, nil
	})
	return err
}

func (v *Validator) fail(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastErr = err
	if v.schema == nil {
		v.state = LoadFailed
	} else {
		v.state = Loaded
	}
	v.log.Warn("schema load failed", "url", v.url, "err", err)
}

func (v *Validator) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url, nil)
	if err != nil {
		return nil, &FetchError{URL: v.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: v.url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: v.url, Status: resp.StatusCode}
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSchemaSize))
	if err != nil {
		return nil, &FetchError{URL: v.url, Err: err}
	}
	return raw, nil
}

// LoadBytes compiles raw as the schema and marks the validator Loaded.
func (v *Validator) LoadBytes(raw []byte) error {
	s, err := Compile(raw)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.schema = s
	v.state = Loaded
	v.lastErr = nil
	return nil
}

// Compile compiles a JSON schema document held in memory.
func Compile(raw []byte) (*jsonschema.Schema, error) {
	const resource = "mem://schema.json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(resource, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	s, err := c.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return s, nil
}

// Validate returns every problem with d: required-field messages first,
// then schema violations when a schema is loaded. An empty result means d
// may be exported.
func (v *Validator) Validate(d doc.Map) []string {
	msgs := RequiredChecks(d)

	v.mu.RLock()
	s, state := v.schema, v.state
	v.mu.RUnlock()
	if state != Loaded || s == nil {
		return msgs
	}
	return append(msgs, Check(s, d)...)
}

// Check validates the cleaned form of d against s and flattens the result
// into "<instance pointer>: <message>" lines, "root" standing for the
// document itself.
func Check(s *jsonschema.Schema, d doc.Map) []string {
	inst, err := instance(doc.Clean(d))
	if err != nil {
		return []string{"root: " + err.Error()}
	}
	err = s.Validate(inst)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{"root: " + err.Error()}
	}
	return leaves(ve, nil)
}

// instance gives the validator plain JSON values.
func instance(d doc.Map) (any, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

func leaves(ve *jsonschema.ValidationError, out []string) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "root"
		}
		msg := ve.Message
		if msg == "" {
			msg = "validation error"
		}
		return append(out, loc+": "+msg)
	}
	for _, c := range ve.Causes {
		out = leaves(c, out)
	}
	return out
}
