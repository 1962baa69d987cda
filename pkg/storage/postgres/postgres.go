// Package postgres provides a PostgreSQL implementation of
// transport.ProductStore and identity.Store using pgx/v5 connection pooling.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bgmsons/catalog/pkg/api"
	"github.com/bgmsons/catalog/pkg/debug"
	"github.com/bgmsons/catalog/pkg/identity"
	"github.com/bgmsons/catalog/pkg/storage"
	"github.com/bgmsons/catalog/pkg/transport"
)

// Store is a PostgreSQL-backed product and admin store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements both store contracts at compile time.
var (
	_ transport.ProductStore = (*Store)(nil)
	_ identity.Store         = (*Store)(nil)
)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

const productColumns = `id, name, category, subcategory, images, created, description, specification, features`

// ListProducts returns all products, newest first.
func (s *Store) ListProducts(ctx context.Context) ([]*api.Product, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY created DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	products := []*api.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}

	debug.Trace("storage", "listed products", "count", len(products))
	return products, nil
}

// GetProduct retrieves a product by ID.
func (s *Store) GetProduct(ctx context.Context, id string) (*api.Product, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id)

	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying product: %w", err)
	}
	return p, nil
}

// CreateProduct inserts a new product.
func (s *Store) CreateProduct(ctx context.Context, p *api.Product) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		p.ID, p.Name, p.Category, p.Subcategory, images(p.Images),
		p.Created, p.Description, p.Specification, p.Features,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

// UpdateProduct replaces every field of an existing product.
func (s *Store) UpdateProduct(ctx context.Context, p *api.Product) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE products
		SET name = $2, category = $3, subcategory = $4, images = $5,
		    created = $6, description = $7, specification = $8, features = $9
		WHERE id = $1
	`,
		p.ID, p.Name, p.Category, p.Subcategory, images(p.Images),
		p.Created, p.Description, p.Specification, p.Features,
	)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteProduct removes a product by ID.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetAdmin retrieves an admin by username.
func (s *Store) GetAdmin(ctx context.Context, username string) (*identity.Admin, error) {
	var a identity.Admin
	err := s.pool.QueryRow(ctx, `
		SELECT username, password_hash, created_at, updated_at
		FROM admins WHERE username = $1
	`, username).Scan(&a.Username, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying admin: %w", err)
	}
	return &a, nil
}

// CreateAdmin inserts a new admin.
func (s *Store) CreateAdmin(ctx context.Context, admin *identity.Admin) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO admins (username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, admin.Username, admin.PasswordHash, admin.CreatedAt, admin.UpdatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting admin: %w", err)
	}
	return nil
}

// ReplaceAdmin swaps the admin row in a single conditional UPDATE. Row
// locking makes a concurrent second swap re-check the WHERE clause
// against the winner's values, so it matches nothing.
func (s *Store) ReplaceAdmin(ctx context.Context, currentUsername, currentHash string, next *identity.Admin) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE admins
		SET username = $3, password_hash = $4, updated_at = $5
		WHERE username = $1 AND password_hash = $2
	`, currentUsername, currentHash, next.Username, next.PasswordHash, next.UpdatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("updating admin: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CountAdmins returns the number of admins.
func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM admins").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return n, nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func scanProduct(row pgx.Row) (*api.Product, error) {
	var p api.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Category, &p.Subcategory, &p.Images,
		&p.Created, &p.Description, &p.Specification, &p.Features,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// images maps nil to an empty array for the NOT NULL column.
func images(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
