package memory

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"pinmap/internal/mapping/application"
)

// BundleStore is an in-memory bundle backend for demos and tests.
type BundleStore struct {
	application.UnsupportedBackend

	mu      sync.RWMutex
	bundles map[string]application.Bundle
}

// NewBundleStore constructs a store.
func NewBundleStore() *BundleStore {
	return &BundleStore{
		UnsupportedBackend: application.UnsupportedBackend{BackendName: "memory"},
		bundles:            make(map[string]application.Bundle),
	}
}

func (s *BundleStore) SupportsBundle() bool { return true }

// ReadBundle returns a copy of the bundle stored at location.
func (s *BundleStore) ReadBundle(ctx context.Context, location string) (application.Bundle, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bundles[location]
	if !ok {
		return application.Bundle{}, fmt.Errorf("memory: %s: %w", location, fs.ErrNotExist)
	}
	return clone(b), nil
}

// WriteBundle stores a copy of bundle at location.
func (s *BundleStore) WriteBundle(ctx context.Context, location string, bundle application.Bundle) error {
	_ = ctx
	s.mu.Lock()
	s.bundles[location] = clone(bundle)
	s.mu.Unlock()
	return nil
}

// Locations lists the stored bundle locations in order.
func (s *BundleStore) Locations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.bundles))
	for location := range s.bundles {
		out = append(out, location)
	}
	sort.Strings(out)
	return out
}

func clone(b application.Bundle) application.Bundle {
	return application.Bundle{
		Options: b.Options.Clone(),
		Mapping: b.Mapping.Clone(),
		Notes:   b.Notes,
	}
}
