package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Seed lists category names that must exist after start-up.
type Seed struct {
	Kategori       []string `yaml:"kategori"`
	BeritaKategori []string `yaml:"berita_kategori"`
}

// ParseSeed decodes a YAML seed document. Unknown keys are rejected; an empty
// document is an empty seed.
func ParseSeed(data []byte) (Seed, error) {
	var s Seed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return s, nil
}

func LoadSeedFile(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, err
	}
	return ParseSeed(data)
}

// SeedCategories inserts the missing category names and returns how many rows were added.
func SeedCategories(ctx context.Context, seed Seed, announcements, news CategoryRepository) (int, error) {
	added := 0
	apply := func(repo CategoryRepository, names []string) error {
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			ok, err := repo.EnsureExists(ctx, name)
			if err != nil {
				return fmt.Errorf("seed category %q: %w", name, err)
			}
			if ok {
				added++
			}
		}
		return nil
	}
	if err := apply(announcements, seed.Kategori); err != nil {
		return added, err
	}
	if err := apply(news, seed.BeritaKategori); err != nil {
		return added, err
	}
	if added > 0 {
		log.Printf("seeded %d categories", added)
	}
	return added, nil
}
