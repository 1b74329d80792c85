package jsonstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/jetsetter/internal/model"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nope.json")

	items, err := Load(p)
	require.NoError(t, err)
	require.Empty(t, items)
	require.NotNil(t, items)
	require.False(t, Exists(p))
}

func TestSaveThenLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "dir", "packing.json")
	want := []model.Item{
		{ID: 1, Title: "Tooth Brush"},
		{ID: 5, Title: "Hoodie", Packed: true},
	}

	require.NoError(t, Save(p, want))
	require.True(t, Exists(p))

	got, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestSaveEmptyListWritesArray(t *testing.T) {
	p := filepath.Join(t.TempDir(), "packing.json")
	require.NoError(t, Save(p, nil))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "[]", string(b))
}

func TestLoadRejectsGarbage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "packing.json")
	require.NoError(t, os.WriteFile(p, []byte("{not json"), 0o644))

	_, err := Load(p)
	require.ErrorContains(t, err, "json unmarshal")
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	p := filepath.Join(t.TempDir(), "packing.json")
	require.NoError(t, os.WriteFile(p, []byte(`[
  {"id": 3, "title": "Passport", "packed": false},
  {"id": 3, "title": "Socks", "packed": true}
]`), 0o644))

	_, err := Load(p)
	require.ErrorIs(t, err, ErrDuplicateID)
	require.ErrorContains(t, err, "duplicate item id 3")
}

func TestResolveDirectory(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, filepath.Join(dir, DefaultFileName), Resolve(dir))

	file := filepath.Join(dir, "mine.json")
	require.Equal(t, file, Resolve(file))
}
