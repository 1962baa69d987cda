// Package memory provides an in-memory implementation of
// transport.ProductStore and identity.Store for tests and single-process
// deployments. Data is lost when the process restarts.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bgmsons/catalog/pkg/api"
	"github.com/bgmsons/catalog/pkg/identity"
	"github.com/bgmsons/catalog/pkg/storage"
	"github.com/bgmsons/catalog/pkg/transport"
)

// Store is an in-memory product and admin store.
type Store struct {
	mu       sync.RWMutex
	products map[string]*api.Product
	admins   map[string]*identity.Admin
}

// Ensure Store implements both store contracts at compile time.
var (
	_ transport.ProductStore = (*Store)(nil)
	_ identity.Store         = (*Store)(nil)
)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		products: make(map[string]*api.Product),
		admins:   make(map[string]*identity.Admin),
	}
}

// ListProducts returns copies of all products, newest first.
func (s *Store) ListProducts(_ context.Context) ([]*api.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*api.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, cloneProduct(p))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Created != out[j].Created {
			return out[i].Created > out[j].Created
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetProduct returns a copy of the product with the given ID.
func (s *Store) GetProduct(_ context.Context, id string) (*api.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneProduct(p), nil
}

// CreateProduct stores a new product.
func (s *Store) CreateProduct(_ context.Context, p *api.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ID]; exists {
		return storage.ErrConflict
	}
	s.products[p.ID] = cloneProduct(p)
	return nil
}

// UpdateProduct replaces an existing product.
func (s *Store) UpdateProduct(_ context.Context, p *api.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ID]; !exists {
		return storage.ErrNotFound
	}
	s.products[p.ID] = cloneProduct(p)
	return nil
}

// DeleteProduct removes a product.
func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return storage.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// GetAdmin returns a copy of the admin with the given username.
func (s *Store) GetAdmin(_ context.Context, username string) (*identity.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.admins[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// CreateAdmin stores a new admin.
func (s *Store) CreateAdmin(_ context.Context, admin *identity.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.admins[admin.Username]; exists {
		return storage.ErrConflict
	}
	cp := *admin
	s.admins[admin.Username] = &cp
	return nil
}

// ReplaceAdmin swaps the admin under the write lock, so the hash check
// and the write cannot interleave with another update.
func (s *Store) ReplaceAdmin(_ context.Context, currentUsername, currentHash string, next *identity.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.admins[currentUsername]
	if !ok || cur.PasswordHash != currentHash {
		return storage.ErrNotFound
	}
	if next.Username != currentUsername {
		if _, taken := s.admins[next.Username]; taken {
			return storage.ErrConflict
		}
		delete(s.admins, currentUsername)
	}
	cp := *next
	s.admins[next.Username] = &cp
	return nil
}

// CountAdmins returns the number of stored admins.
func (s *Store) CountAdmins(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.admins), nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// cloneProduct copies p so callers cannot mutate stored state.
func cloneProduct(p *api.Product) *api.Product {
	cp := *p
	if p.Images != nil {
		cp.Images = append([]string(nil), p.Images...)
	}
	return &cp
}
