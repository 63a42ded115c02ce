package board

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// FileStore keeps the catalog as one pretty-printed JSON document on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the catalog document. A missing file yields the seeded default
// catalog; it is written out on the first Save.
func (s *FileStore) Load(_ context.Context) (*Catalog, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		log.Info().Str("path", s.path).Msg("no board data found, using default catalog")
		return defaultCatalog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read board data: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse board data: %w", err)
	}
	if catalog.Boards == nil {
		catalog.Boards = make(map[string]*StoredBoard)
	}
	log.Info().Str("path", s.path).Int("boards", len(catalog.Boards)).Msg("board data loaded")
	return &catalog, nil
}

// Save writes the catalog document via a temp file rename so a crash mid-write
// cannot truncate the previous document.
func (s *FileStore) Save(_ context.Context, catalog *Catalog) error {
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal board data: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "boards-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write board data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace board data: %w", err)
	}
	return nil
}
