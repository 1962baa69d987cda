// Package sqlite provides a single-file SQLite implementation of
// transport.ProductStore and identity.Store using the pure Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/bgmsons/catalog/pkg/api"
	"github.com/bgmsons/catalog/pkg/identity"
	"github.com/bgmsons/catalog/pkg/storage"
	"github.com/bgmsons/catalog/pkg/transport"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store persists products and admins in SQLite.
type Store struct {
	db *sql.DB
}

// Ensure Store implements both store contracts at compile time.
var (
	_ transport.ProductStore = (*Store)(nil)
	_ identity.Store         = (*Store)(nil)
)

// Open opens (creating if needed) the database at path and applies
// embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single writer connection serializes writes inside the process.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		prefix, _, ok := strings.Cut(entry.Name(), "_")
		if !ok || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}

		var exists bool
		if err := s.db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", version,
		).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %s: %w", entry.Name(), err)
		}
		if exists {
			continue
		}

		content, err := migrationFiles.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		slog.Info("applying migration", "file", entry.Name(), "version", version)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", entry.Name(), err)
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %s: %w", entry.Name(), err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			version, time.Now().UTC().UnixMilli(),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", entry.Name(), err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

const productColumns = `id, name, category, subcategory, images, created, description, specification, features`

// ListProducts returns all products, newest first.
func (s *Store) ListProducts(ctx context.Context) ([]*api.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY created DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	products := []*api.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a product by ID.
func (s *Store) GetProduct(ctx context.Context, id string) (*api.Product, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProduct inserts a new product.
func (s *Store) CreateProduct(ctx context.Context, p *api.Product) error {
	imgs, err := encodeImages(p.Images)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO products ("+productColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Category, p.Subcategory, imgs,
		p.Created, p.Description, p.Specification, p.Features,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

// UpdateProduct replaces every field of an existing product.
func (s *Store) UpdateProduct(ctx context.Context, p *api.Product) error {
	imgs, err := encodeImages(p.Images)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, category = ?, subcategory = ?, images = ?,
		    created = ?, description = ?, specification = ?, features = ?
		WHERE id = ?`,
		p.Name, p.Category, p.Subcategory, imgs,
		p.Created, p.Description, p.Specification, p.Features, p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	return requireRow(result)
}

// DeleteProduct removes a product by ID.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return requireRow(result)
}

// GetAdmin retrieves an admin by username.
func (s *Store) GetAdmin(ctx context.Context, username string) (*identity.Admin, error) {
	var (
		a                    identity.Admin
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT username, password_hash, created_at, updated_at FROM admins WHERE username = ?",
		username,
	).Scan(&a.Username, &a.PasswordHash, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying admin: %w", err)
	}
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updatedAt)
	return &a, nil
}

// CreateAdmin inserts a new admin.
func (s *Store) CreateAdmin(ctx context.Context, admin *identity.Admin) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO admins (username, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?)",
		admin.Username, admin.PasswordHash, toMillis(admin.CreatedAt), toMillis(admin.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting admin: %w", err)
	}
	return nil
}

// ReplaceAdmin swaps the admin row in one conditional UPDATE.
func (s *Store) ReplaceAdmin(ctx context.Context, currentUsername, currentHash string, next *identity.Admin) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE admins
		SET username = ?, password_hash = ?, updated_at = ?
		WHERE username = ? AND password_hash = ?`,
		next.Username, next.PasswordHash, toMillis(next.UpdatedAt),
		currentUsername, currentHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("updating admin: %w", err)
	}
	return requireRow(result)
}

// CountAdmins returns the number of admins.
func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM admins").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return n, nil
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*api.Product, error) {
	var (
		p    api.Product
		imgs string
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Category, &p.Subcategory, &imgs,
		&p.Created, &p.Description, &p.Specification, &p.Features,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning product: %w", err)
	}
	if err := json.Unmarshal([]byte(imgs), &p.Images); err != nil {
		return nil, fmt.Errorf("decoding images of %s: %w", p.ID, err)
	}
	return &p, nil
}

func encodeImages(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding images: %w", err)
	}
	return string(b), nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
