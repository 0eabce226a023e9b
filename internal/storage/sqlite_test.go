package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/meur/guideforge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func weapons() []models.ReferenceEntry {
	return []models.ReferenceEntry{
		{ID: "14102", Kind: models.KindWeapon, Name: "Steel Cushion", Rank: 4, Icon: "Weapon_S_0002"},
		{ID: "13001", Kind: models.KindWeapon, Name: "Marcato Desire", Rank: 3, Icon: "Weapon_A_0001"},
		{ID: "14119", Kind: models.KindWeapon, Name: "Deep Sea Visitor", Rank: 4, Icon: "Weapon_S_0019"},
		{ID: "12001", Kind: models.KindWeapon, Name: "100% Rainforest_Gourmet", Rank: 2, Icon: "Weapon_B_0001"},
	}
}

func TestStore_ReplaceAndSearch(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	_, ok, err := s.FetchedAt(models.KindWeapon)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.ReplaceEntries(models.KindWeapon, weapons(), at))

	got, ok, err := s.FetchedAt(models.KindWeapon)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, at.Equal(got), "fetched at %s", got)

	n, err := s.Count(models.KindWeapon)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	all, total, err := s.SearchEntries(models.KindWeapon, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	names := make([]string, len(all))
	for i, e := range all {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"100% Rainforest_Gourmet", "Deep Sea Visitor", "Marcato Desire", "Steel Cushion"}, names)

	page, total, err := s.SearchEntries(models.KindWeapon, "SEA", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, page, 1)
	assert.Equal(t, weapons()[2], page[0])

	page, total, err = s.SearchEntries(models.KindWeapon, "e", 2)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, page, 2)

	// LIKE wildcards in the query match literally
	page, total, err = s.SearchEntries(models.KindWeapon, "%", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "12001", page[0].ID)
	_, total, err = s.SearchEntries(models.KindWeapon, "t_G", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	_, total, err = s.SearchEntries(models.KindWeapon, "l_C", 0)
	require.NoError(t, err)
	assert.Zero(t, total)

	none, total, err := s.SearchEntries(models.KindCharacter, "", 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, none)
}

func TestStore_ReplaceDropsOldEntries(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ReplaceEntries(models.KindWeapon, weapons(), time.Now()))
	require.NoError(t, s.ReplaceEntries(models.KindWeapon, weapons()[:1], time.Now()))

	n, err := s.Count(models.KindWeapon)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	e, err := s.GetEntry(models.KindWeapon, "14102")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "Steel Cushion", e.Name)

	e, err = s.GetEntry(models.KindWeapon, "13001")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestStore_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.ReplaceEntries(models.KindWeapon, weapons(), time.Now()))
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count(models.KindWeapon)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
