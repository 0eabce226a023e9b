package refdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meur/guideforge/internal/logger"
	"github.com/meur/guideforge/internal/models"
	"github.com/meur/guideforge/internal/storage"
	"golang.org/x/sync/singleflight"
)

// DefaultLimit caps a picker page when the caller gives no limit.
const DefaultLimit = 50

// Fetcher downloads one catalog. *Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, kind models.ReferenceKind) ([]models.ReferenceEntry, error)
}

// Catalog serves picker searches from a local cache, downloading each kind
// on first use.
type Catalog struct {
	fetcher Fetcher
	store   *storage.Store
	log     *logger.Logger
	clock   func() time.Time
	group   singleflight.Group
}

func NewCatalog(f Fetcher, store *storage.Store, log *logger.Logger) *Catalog {
	if log == nil {
		log = logger.Nop()
	}
	return &Catalog{fetcher: f, store: store, log: log, clock: time.Now}
}

// Search returns entries of kind whose name contains query. When the
// catalog cannot be downloaded the list is empty, marked Degraded, and the
// *FetchError is returned alongside it.
func (c *Catalog) Search(ctx context.Context, kind models.ReferenceKind, query string, limit int) (models.ReferenceList, error) {
	degraded := models.ReferenceList{Items: []models.ReferenceEntry{}, Degraded: true}
	if err := c.ensure(ctx, kind); err != nil {
		return degraded, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	items, total, err := c.store.SearchEntries(kind, query, limit)
	if err != nil {
		return degraded, fmt.Errorf("search %s: %w", kind, err)
	}
	return models.ReferenceList{Items: items, TotalCount: total}, nil
}

// Lookup returns one cached entry, or nil when kind has no such id.
func (c *Catalog) Lookup(ctx context.Context, kind models.ReferenceKind, id string) (*models.ReferenceEntry, error) {
	if err := c.ensure(ctx, kind); err != nil {
		return nil, err
	}
	return c.store.GetEntry(kind, id)
}

// Refresh downloads kind again and replaces the cache. Concurrent refreshes
// of one kind share a download.
func (c *Catalog) Refresh(ctx context.Context, kind models.ReferenceKind) (int, error) {
	v, err, _ := c.group.Do(string(kind), func() (any, error) {
		entries, err := c.fetcher.Fetch(ctx, kind)
		if err != nil {
			c.log.Warn("reference catalog unavailable", "kind", kind, "err", err)
			return 0, err
		}
		if err := c.store.ReplaceEntries(kind, entries, c.clock()); err != nil {
			return 0, fmt.Errorf("store %s: %w", kind, err)
		}
		c.log.Info("reference catalog refreshed", "kind", kind, "entries", len(entries))
		return len(entries), nil
	})
	return v.(int), err
}

func (c *Catalog) ensure(ctx context.Context, kind models.ReferenceKind) error {
	_, ok, err := c.store.FetchedAt(kind)
	if err != nil {
		return fmt.Errorf("load %s: %w", kind, err)
	}
	if ok {
		return nil
	}
	_, err = c.Refresh(ctx, kind)
	return err
}

// IsFetchError reports whether err came from the remote API.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
