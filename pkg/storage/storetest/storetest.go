// Package storetest holds behavior tests shared by every storage backend.
// Each backend's test file calls Run with a constructor for a fresh store.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bgmsons/catalog/pkg/api"
	"github.com/bgmsons/catalog/pkg/identity"
	"github.com/bgmsons/catalog/pkg/storage"
	"github.com/bgmsons/catalog/pkg/transport"
)

// Store is the combined contract every backend satisfies.
type Store interface {
	transport.ProductStore
	identity.Store
}

// Run executes the shared suite. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("ProductRoundTrip", func(t *testing.T) { testProductRoundTrip(t, newStore(t)) })
	t.Run("ProductDuplicate", func(t *testing.T) { testProductDuplicate(t, newStore(t)) })
	t.Run("ProductNotFound", func(t *testing.T) { testProductNotFound(t, newStore(t)) })
	t.Run("ProductUpdate", func(t *testing.T) { testProductUpdate(t, newStore(t)) })
	t.Run("ProductDelete", func(t *testing.T) { testProductDelete(t, newStore(t)) })
	t.Run("ProductListOrder", func(t *testing.T) { testProductListOrder(t, newStore(t)) })
	t.Run("AdminCreateGet", func(t *testing.T) { testAdminCreateGet(t, newStore(t)) })
	t.Run("AdminDuplicate", func(t *testing.T) { testAdminDuplicate(t, newStore(t)) })
	t.Run("AdminCaseSensitive", func(t *testing.T) { testAdminCaseSensitive(t, newStore(t)) })
	t.Run("ReplaceAdmin", func(t *testing.T) { testReplaceAdmin(t, newStore(t)) })
	t.Run("ReplaceAdminStale", func(t *testing.T) { testReplaceAdminStale(t, newStore(t)) })
	t.Run("ReplaceAdminRenameConflict", func(t *testing.T) { testReplaceAdminRenameConflict(t, newStore(t)) })
	t.Run("ReplaceAdminConcurrent", func(t *testing.T) { testReplaceAdminConcurrent(t, newStore(t)) })
	t.Run("HealthCheck", func(t *testing.T) {
		if err := newStore(t).HealthCheck(context.Background()); err != nil {
			t.Errorf("HealthCheck: %v", err)
		}
	})
}

// MakeProduct returns a fully populated product.
func MakeProduct(id, created string) *api.Product {
	return &api.Product{
		ID:            id,
		Name:          "Rotary Drum " + id,
		Category:      "Machinery",
		Subcategory:   "Drums",
		Images:        []string{"https://cdn.example.com/" + id + "/1.jpg", "https://cdn.example.com/" + id + "/2.jpg"},
		Created:       created,
		Description:   "Heavy duty drum",
		Specification: "Capacity: 500kg",
		Features:      "Stainless steel",
	}
}

func makeAdmin(username, hash string) *identity.Admin {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &identity.Admin{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testProductRoundTrip(t *testing.T, s Store) {
	ctx := context.Background()
	in := MakeProduct("prod_a", "2025-01-15")

	if err := s.CreateProduct(ctx, in); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	got, err := s.GetProduct(ctx, "prod_a")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}

	if got.Name != in.Name || got.Category != in.Category || got.Subcategory != in.Subcategory {
		t.Errorf("got %+v, want %+v", got, in)
	}
	if got.Created != "2025-01-15" {
		t.Errorf("Created = %q, want 2025-01-15", got.Created)
	}
	if got.Description != in.Description || got.Specification != in.Specification || got.Features != in.Features {
		t.Errorf("text fields mismatch: %+v", got)
	}
	if len(got.Images) != 2 || got.Images[0] != in.Images[0] || got.Images[1] != in.Images[1] {
		t.Errorf("Images = %v, want %v", got.Images, in.Images)
	}
}

func testProductDuplicate(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.CreateProduct(ctx, MakeProduct("prod_dup", "2025-01-01")); err != nil {
		t.Fatalf("first CreateProduct: %v", err)
	}
	err := s.CreateProduct(ctx, MakeProduct("prod_dup", "2025-01-02"))
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("second CreateProduct error = %v, want ErrConflict", err)
	}
}

func testProductNotFound(t *testing.T, s Store) {
	ctx := context.Background()

	if _, err := s.GetProduct(ctx, "prod_missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetProduct error = %v, want ErrNotFound", err)
	}
	if err := s.UpdateProduct(ctx, MakeProduct("prod_missing", "2025-01-01")); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateProduct error = %v, want ErrNotFound", err)
	}
	if err := s.DeleteProduct(ctx, "prod_missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteProduct error = %v, want ErrNotFound", err)
	}
}

func testProductUpdate(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.CreateProduct(ctx, MakeProduct("prod_u", "2025-01-01")); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	next := MakeProduct("prod_u", "2025-02-02")
	next.Name = "Renamed"
	next.Images = []string{"https://cdn.example.com/new.jpg"}
	if err := s.UpdateProduct(ctx, next); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}

	got, err := s.GetProduct(ctx, "prod_u")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.Name != "Renamed" || got.Created != "2025-02-02" {
		t.Errorf("got %+v after update", got)
	}
	if len(got.Images) != 1 || got.Images[0] != "https://cdn.example.com/new.jpg" {
		t.Errorf("Images = %v after update", got.Images)
	}
}

func testProductDelete(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.CreateProduct(ctx, MakeProduct("prod_d", "2025-01-01")); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if err := s.DeleteProduct(ctx, "prod_d"); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if _, err := s.GetProduct(ctx, "prod_d"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetProduct after delete error = %v, want ErrNotFound", err)
	}
}

func testProductListOrder(t *testing.T, s Store) {
	ctx := context.Background()
	for _, p := range []*api.Product{
		MakeProduct("prod_b", "2025-01-01"),
		MakeProduct("prod_c", "2025-03-01"),
		MakeProduct("prod_a", "2025-01-01"),
		MakeProduct("prod_d", "2024-12-31"),
	} {
		if err := s.CreateProduct(ctx, p); err != nil {
			t.Fatalf("CreateProduct(%s): %v", p.ID, err)
		}
	}

	list, err := s.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}

	want := []string{"prod_c", "prod_a", "prod_b", "prod_d"}
	if len(list) != len(want) {
		t.Fatalf("len(list) = %d, want %d", len(list), len(want))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("list[%d].ID = %q, want %q", i, list[i].ID, id)
		}
	}
}

func testAdminCreateGet(t *testing.T, s Store) {
	ctx := context.Background()

	n, err := s.CountAdmins(ctx)
	if err != nil {
		t.Fatalf("CountAdmins: %v", err)
	}
	if n != 0 {
		t.Fatalf("CountAdmins on empty store = %d", n)
	}

	if err := s.CreateAdmin(ctx, makeAdmin("admin", "hash-1")); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	got, err := s.GetAdmin(ctx, "admin")
	if err != nil {
		t.Fatalf("GetAdmin: %v", err)
	}
	if got.Username != "admin" || got.PasswordHash != "hash-1" {
		t.Errorf("got %+v", got)
	}
	if !got.CreatedAt.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("CreatedAt = %v", got.CreatedAt)
	}

	if n, _ := s.CountAdmins(ctx); n != 1 {
		t.Errorf("CountAdmins = %d, want 1", n)
	}

	if _, err := s.GetAdmin(ctx, "nobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetAdmin(nobody) error = %v, want ErrNotFound", err)
	}
}

func testAdminDuplicate(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.CreateAdmin(ctx, makeAdmin("admin", "hash-1")); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if err := s.CreateAdmin(ctx, makeAdmin("admin", "hash-2")); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate CreateAdmin error = %v, want ErrConflict", err)
	}

	got, err := s.GetAdmin(ctx, "admin")
	if err != nil {
		t.Fatalf("GetAdmin: %v", err)
	}
	if got.PasswordHash != "hash-1" {
		t.Errorf("duplicate create overwrote the hash: %q", got.PasswordHash)
	}
}

func testAdminCaseSensitive(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.CreateAdmin(ctx, makeAdmin("Admin", "hash-1")); err != nil {
		t.Fatalf("CreateAdmin(Admin): %v", err)
	}
	if err := s.CreateAdmin(ctx, makeAdmin("admin", "hash-2")); err != nil {
		t.Fatalf("CreateAdmin(admin) should not conflict with Admin: %v", err)
	}
	if _, err := s.GetAdmin(ctx, "ADMIN"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetAdmin(ADMIN) error = %v, want ErrNotFound", err)
	}
}

func testReplaceAdmin(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.CreateAdmin(ctx, makeAdmin("admin", "hash-1")); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	next := makeAdmin("root", "hash-2")
	if err := s.ReplaceAdmin(ctx, "admin", "hash-1", next); err != nil {
		t.Fatalf("ReplaceAdmin: %v", err)
	}

	if _, err := s.GetAdmin(ctx, "admin"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("old username still present: err = %v", err)
	}
	got, err := s.GetAdmin(ctx, "root")
	if err != nil {
		t.Fatalf("GetAdmin(root): %v", err)
	}
	if got.PasswordHash != "hash-2" {
		t.Errorf("PasswordHash = %q, want hash-2", got.PasswordHash)
	}
	if n, _ := s.CountAdmins(ctx); n != 1 {
		t.Errorf("CountAdmins = %d after rename, want 1", n)
	}

	// Same username, new hash.
	if err := s.ReplaceAdmin(ctx, "root", "hash-2", makeAdmin("root", "hash-3")); err != nil {
		t.Fatalf("ReplaceAdmin in place: %v", err)
	}
	got, _ = s.GetAdmin(ctx, "root")
	if got == nil || got.PasswordHash != "hash-3" {
		t.Errorf("in-place replace not applied: %+v", got)
	}
}

func testReplaceAdminStale(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.CreateAdmin(ctx, makeAdmin("admin", "hash-1")); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	err := s.ReplaceAdmin(ctx, "admin", "stale-hash", makeAdmin("root", "hash-2"))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("stale ReplaceAdmin error = %v, want ErrNotFound", err)
	}
	err = s.ReplaceAdmin(ctx, "ghost", "hash-1", makeAdmin("root", "hash-2"))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("ReplaceAdmin on missing admin error = %v, want ErrNotFound", err)
	}

	got, err := s.GetAdmin(ctx, "admin")
	if err != nil {
		t.Fatalf("GetAdmin: %v", err)
	}
	if got.PasswordHash != "hash-1" {
		t.Errorf("stale replace modified record: %+v", got)
	}
}

func testReplaceAdminRenameConflict(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.CreateAdmin(ctx, makeAdmin("admin", "hash-1")); err != nil {
		t.Fatalf("CreateAdmin(admin): %v", err)
	}
	if err := s.CreateAdmin(ctx, makeAdmin("other", "hash-o")); err != nil {
		t.Fatalf("CreateAdmin(other): %v", err)
	}

	err := s.ReplaceAdmin(ctx, "admin", "hash-1", makeAdmin("other", "hash-2"))
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("rename onto taken username error = %v, want ErrConflict", err)
	}

	for name, hash := range map[string]string{"admin": "hash-1", "other": "hash-o"} {
		got, err := s.GetAdmin(ctx, name)
		if err != nil {
			t.Fatalf("GetAdmin(%s): %v", name, err)
		}
		if got.PasswordHash != hash {
			t.Errorf("%s hash = %q, want %q", name, got.PasswordHash, hash)
		}
	}
}

// testReplaceAdminConcurrent races several swaps from the same starting
// state. Exactly one must win and the record must be that winner's.
func testReplaceAdminConcurrent(t *testing.T, s Store) {
	ctx := context.Background()
	if err := s.CreateAdmin(ctx, makeAdmin("admin", "hash-0")); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hash := "hash-" + string(rune('a'+i))
			err := s.ReplaceAdmin(ctx, "admin", "hash-0", makeAdmin("admin", hash))
			if err == nil {
				mu.Lock()
				winners = append(winners, hash)
				mu.Unlock()
				return
			}
			if !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("worker %d: unexpected error %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if len(winners) != 1 {
		t.Fatalf("winners = %v, want exactly one", winners)
	}
	got, err := s.GetAdmin(ctx, "admin")
	if err != nil {
		t.Fatalf("GetAdmin: %v", err)
	}
	if got.PasswordHash != winners[0] {
		t.Errorf("stored hash = %q, want winner %q", got.PasswordHash, winners[0])
	}
}
