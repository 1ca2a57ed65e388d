package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeed(t *testing.T) {
	seed, err := ParseSeed([]byte("kategori:\n  - Kesehatan\n  - Pendidikan\nberita_kategori:\n  - Pertanian\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Kesehatan", "Pendidikan"}, seed.Kategori)
	assert.Equal(t, []string{"Pertanian"}, seed.BeritaKategori)

	seed, err = ParseSeed(nil)
	require.NoError(t, err)
	assert.Empty(t, seed.Kategori)

	_, err = ParseSeed([]byte("categories:\n  - Kesehatan\n"))
	assert.Error(t, err)

	_, err = ParseSeed([]byte("kategori: [unterminated"))
	assert.Error(t, err)
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kategori: [Umum]\n"), 0o600))

	seed, err := LoadSeedFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Umum"}, seed.Kategori)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeedCategories_Idempotent(t *testing.T) {
	ctx := context.Background()
	announcements, news := newMemCategoryRepo(), newMemCategoryRepo()
	seed := Seed{
		Kategori:       []string{"Kesehatan", " ", "Pendidikan"},
		BeritaKategori: []string{"Pertanian"},
	}

	added, err := SeedCategories(ctx, seed, announcements, news)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	added, err = SeedCategories(ctx, seed, announcements, news)
	require.NoError(t, err)
	assert.Zero(t, added)

	list, _ := announcements.List(ctx)
	assert.Len(t, list, 2)
}

type brokenCategoryRepo struct{ memCategoryRepo }

func (*brokenCategoryRepo) EnsureExists(ctx context.Context, nama string) (bool, error) {
	return false, errors.New("connection reset")
}

func TestSeedCategories_PropagatesErrors(t *testing.T) {
	_, err := SeedCategories(context.Background(), Seed{BeritaKategori: []string{"Pertanian"}}, newMemCategoryRepo(), &brokenCategoryRepo{})
	assert.ErrorContains(t, err, "Pertanian")
}
