// Package refdata fetches the game's characters, W-Engines and drive disc
// sets from the hakush.in data API for the editor's pickers.
package refdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/meur/guideforge/internal/logger"
	"github.com/meur/guideforge/internal/models"
	"golang.org/x/sync/errgroup"
)

// maxBodySize bounds a single catalog download.
const maxBodySize = 32 << 20

var endpoints = map[models.ReferenceKind]string{
	models.KindCharacter: "character.json",
	models.KindWeapon:    "weapon.json",
	models.KindEquipment: "equipment.json",
}

// FetchError reports a catalog that could not be downloaded or decoded.
type FetchError struct {
	Kind   models.ReferenceKind
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s from %s: unexpected status %d", e.Kind, e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s from %s: %v", e.Kind, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IconURL fills the {icon} placeholder of template. An empty icon gives "".
func IconURL(template, icon string) string {
	if icon == "" {
		return ""
	}
	return strings.ReplaceAll(template, "{icon}", icon)
}

// Client talks to the data API.
type Client struct {
	baseURL      string
	iconTemplate string
	http         *http.Client
	log          *logger.Logger
}

// NewClient returns a client for the API rooted at baseURL. A nil hc means
// http.DefaultClient.
func NewClient(baseURL, iconTemplate string, hc *http.Client, log *logger.Logger) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		iconTemplate: iconTemplate,
		http:         hc,
		log:          log,
	}
}

// record is one entry of a catalog file.
type record struct {
	Icon string      `json:"icon"`
	Rank int         `json:"rank"`
	EN   displayName `json:"EN"`
}

// displayName is either a bare string or an object with a name field.
type displayName string

func (n *displayName) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*n = displayName(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("display name: %w", err)
	}
	*n = displayName(obj.Name)
	return nil
}

// Fetch downloads the catalog of kind. See Parse.
func (c *Client) Fetch(ctx context.Context, kind models.ReferenceKind) ([]models.ReferenceEntry, error) {
	file, ok := endpoints[kind]
	if !ok {
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}
	url := c.baseURL + "/" + file

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Kind: kind, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: kind, URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Kind: kind, URL: url, Status: resp.StatusCode}
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FetchError{Kind: kind, URL: url, Err: err}
	}

	entries, err := Parse(kind, raw, c.iconTemplate)
	if err != nil {
		return nil, &FetchError{Kind: kind, URL: url, Err: err}
	}
	c.log.Debug("reference catalog fetched", "kind", kind, "entries", len(entries))
	return entries, nil
}

// Parse decodes a catalog file of kind into entries sorted by name. Records
// without a display name are skipped.
func Parse(kind models.ReferenceKind, raw []byte, iconTemplate string) ([]models.ReferenceEntry, error) {
	var records map[string]record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}

	entries := make([]models.ReferenceEntry, 0, len(records))
	for id, r := range records {
		name := strings.TrimSpace(string(r.EN))
		if name == "" {
			continue
		}
		entries = append(entries, models.ReferenceEntry{
			ID:      id,
			Kind:    kind,
			Name:    name,
			Rank:    r.Rank,
			Icon:    r.Icon,
			IconURL: IconURL(iconTemplate, r.Icon),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

// Endpoint returns the file name of the catalog of kind.
func Endpoint(kind models.ReferenceKind) (string, bool) {
	file, ok := endpoints[kind]
	return file, ok
}

// FetchAll downloads every catalog concurrently. The first failure cancels
// the rest.
func (c *Client) FetchAll(ctx context.Context) (map[models.ReferenceKind][]models.ReferenceEntry, error) {
	var mu sync.Mutex
	out := make(map[models.ReferenceKind][]models.ReferenceEntry, len(endpoints))

	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range models.ReferenceKinds() {
		kind := kind
		g.Go(func() error {
			entries, err := c.Fetch(gctx, kind)
			if err != nil {
				return err
			}
			mu.Lock()
			out[kind] = entries
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
