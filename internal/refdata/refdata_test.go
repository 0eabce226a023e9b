package refdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/meur/guideforge/internal/logger"
	"github.com/meur/guideforge/internal/models"
	"github.com/meur/guideforge/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const iconTemplate = "https://cdn.example/UI/{icon}.webp"

var fixtures = map[string]string{
	"/data/character.json": `{
		"1191": {"icon": "IconRole11", "rank": 4, "EN": "Ellen"},
		"1021": {"icon": "IconRole01", "rank": 3, "EN": "Nicole"},
		"9999": {"icon": "", "rank": 4, "EN": ""}
	}`,
	"/data/weapon.json": `{
		"14102": {"icon": "Weapon_S_0002", "rank": 4, "EN": "Steel Cushion"}
	}`,
	"/data/equipment.json": `{
		"31000": {"icon": "Suit_Woodpecker", "EN": {"name": "Woodpecker Electro", "desc2": "CRIT Rate +8%"}},
		"31100": {"icon": "Suit_Puffer", "EN": {"name": "Puffer Electro"}}
	}`,
}

type fixtureServer struct {
	*httptest.Server
	hits   atomic.Int32
	broken atomic.Bool
}

func newFixtureServer(t *testing.T) *fixtureServer {
	t.Helper()
	fs := &fixtureServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		if fs.broken.Load() {
			http.Error(w, "maintenance", http.StatusBadGateway)
			return
		}
		body, ok := fixtures[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fixtureServer) client() *Client {
	return NewClient(fs.URL+"/data/", iconTemplate, fs.Client(), logger.Nop())
}

func TestIconURL(t *testing.T) {
	assert.Equal(t, "https://api.hakush.in/zzz/UI/IconRole01.webp", IconURL("https://api.hakush.in/zzz/UI/{icon}.webp", "IconRole01"))
	assert.Equal(t, "", IconURL(iconTemplate, ""))
}

func TestClient_Fetch(t *testing.T) {
	fs := newFixtureServer(t)
	c := fs.client()

	chars, err := c.Fetch(context.Background(), models.KindCharacter)
	require.NoError(t, err)
	want := []models.ReferenceEntry{
		{ID: "1191", Kind: models.KindCharacter, Name: "Ellen", Rank: 4, Icon: "IconRole11", IconURL: "https://cdn.example/UI/IconRole11.webp"},
		{ID: "1021", Kind: models.KindCharacter, Name: "Nicole", Rank: 3, Icon: "IconRole01", IconURL: "https://cdn.example/UI/IconRole01.webp"},
	}
	if diff := cmp.Diff(want, chars); diff != "" {
		t.Errorf("characters mismatch (-want +got):\n%s", diff)
	}

	discs, err := c.Fetch(context.Background(), models.KindEquipment)
	require.NoError(t, err)
	require.Len(t, discs, 2)
	assert.Equal(t, "Puffer Electro", discs[0].Name)
	assert.Equal(t, "Woodpecker Electro", discs[1].Name)
	assert.Zero(t, discs[1].Rank)

	_, err = c.Fetch(context.Background(), models.ReferenceKind("bangboo"))
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	entries, err := Parse(models.KindWeapon, []byte(fixtures["/data/weapon.json"]), "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Steel Cushion", entries[0].Name)
	assert.Empty(t, entries[0].IconURL)

	_, err = Parse(models.KindWeapon, []byte("[]"), iconTemplate)
	assert.Error(t, err)

	file, ok := Endpoint(models.KindEquipment)
	assert.True(t, ok)
	assert.Equal(t, "equipment.json", file)
}

func TestClient_FetchErrors(t *testing.T) {
	fs := newFixtureServer(t)
	fs.broken.Store(true)

	_, err := fs.client().Fetch(context.Background(), models.KindWeapon)
	var fe *FetchError
	require.True(t, errors.As(err, &fe), "got %v", err)
	assert.Equal(t, http.StatusBadGateway, fe.Status)
	assert.Equal(t, models.KindWeapon, fe.Kind)
	assert.True(t, IsFetchError(err))

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"1": {"EN": 42}}`))
	}))
	defer bad.Close()
	_, err = NewClient(bad.URL, iconTemplate, bad.Client(), nil).Fetch(context.Background(), models.KindCharacter)
	require.True(t, errors.As(err, &fe), "got %v", err)
	assert.Zero(t, fe.Status)
}

func TestClient_FetchAll(t *testing.T) {
	fs := newFixtureServer(t)

	all, err := fs.client().FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Len(t, all[models.KindCharacter], 2)
	assert.Len(t, all[models.KindWeapon], 1)
	assert.Len(t, all[models.KindEquipment], 2)

	fs.broken.Store(true)
	_, err = fs.client().FetchAll(context.Background())
	assert.True(t, IsFetchError(err))
}

func newTestCatalog(t *testing.T, fs *fixtureServer) *Catalog {
	t.Helper()
	store, err := storage.New(storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewCatalog(fs.client(), store, logger.Nop())
}

func TestCatalog_LazyLoad(t *testing.T) {
	fs := newFixtureServer(t)
	cat := newTestCatalog(t, fs)

	list, err := cat.Search(context.Background(), models.KindCharacter, "nic", 0)
	require.NoError(t, err)
	assert.False(t, list.Degraded)
	assert.Equal(t, 1, list.TotalCount)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Nicole", list.Items[0].Name)

	list, err = cat.Search(context.Background(), models.KindCharacter, "", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, list.TotalCount)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, int32(1), fs.hits.Load(), "a cached kind is not fetched again")

	e, err := cat.Lookup(context.Background(), models.KindWeapon, "14102")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "Steel Cushion", e.Name)
	assert.Equal(t, int32(2), fs.hits.Load())
}

func TestCatalog_Degraded(t *testing.T) {
	fs := newFixtureServer(t)
	fs.broken.Store(true)
	cat := newTestCatalog(t, fs)

	list, err := cat.Search(context.Background(), models.KindWeapon, "", 0)
	assert.True(t, IsFetchError(err))
	assert.True(t, list.Degraded)
	assert.NotNil(t, list.Items)
	assert.Empty(t, list.Items)

	// the next search tries again
	fs.broken.Store(false)
	list, err = cat.Search(context.Background(), models.KindWeapon, "", 0)
	require.NoError(t, err)
	assert.False(t, list.Degraded)
	assert.Len(t, list.Items, 1)
}

func TestCatalog_Refresh(t *testing.T) {
	fs := newFixtureServer(t)
	cat := newTestCatalog(t, fs)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := cat.Refresh(context.Background(), models.KindEquipment)
			assert.NoError(t, err)
			assert.Equal(t, 2, n)
		}()
	}
	wg.Wait()

	// a failed refresh keeps the cached entries
	fs.broken.Store(true)
	_, err := cat.Refresh(context.Background(), models.KindEquipment)
	assert.True(t, IsFetchError(err))
	list, err := cat.Search(context.Background(), models.KindEquipment, "electro", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, list.TotalCount)
}
