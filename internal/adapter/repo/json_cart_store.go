package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	domain "github.com/aq2208/storefront-api/internal/entity"
	"github.com/aq2208/storefront-api/internal/usecase"
)

// JSONCartStore persists the cart as a JSON file, written atomically
// (tmp file + rename) so a crash mid-write never leaves a torn snapshot.
// This is the default backend for single-node deployments.
type JSONCartStore struct {
	mu   sync.Mutex
	path string
}

func NewJSONCartStore(path string) *JSONCartStore {
	return &JSONCartStore{path: path}
}

func (s *JSONCartStore) Load(ctx context.Context) ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open cart snapshot: %w", err)
	}
	defer f.Close()

	var items []domain.CartLine
	if err := json.NewDecoder(f).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return items, nil
}

func (s *JSONCartStore) Save(ctx context.Context, items []domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create tmp snapshot: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		f.Close()
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close tmp snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace cart snapshot: %w", err)
	}
	return nil
}

var _ usecase.CartPersistence = (*JSONCartStore)(nil)
