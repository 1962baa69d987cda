// Package identity manages the administrative accounts allowed to edit
// the catalog. Passwords are stored as bcrypt hashes only; plaintext never
// reaches a Store.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bgmsons/catalog/pkg/debug"
	"github.com/bgmsons/catalog/pkg/storage"
)

// Admin is a stored administrative identity.
type Admin struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store persists admins. Implementations return storage.ErrNotFound for
// unknown usernames and storage.ErrConflict for duplicate usernames.
type Store interface {
	// GetAdmin retrieves an admin by exact (case-sensitive) username.
	GetAdmin(ctx context.Context, username string) (*Admin, error)

	// CreateAdmin inserts a new admin.
	CreateAdmin(ctx context.Context, admin *Admin) error

	// ReplaceAdmin atomically swaps the record identified by
	// currentUsername for next, provided its hash still equals
	// currentHash. A stale hash or a vanished row yields
	// storage.ErrNotFound; a rename onto a taken username yields
	// storage.ErrConflict.
	ReplaceAdmin(ctx context.Context, currentUsername, currentHash string, next *Admin) error

	// CountAdmins returns the number of stored admins.
	CountAdmins(ctx context.Context) (int, error)
}

var (
	// ErrUsernameTaken is returned when an admin with the username exists.
	ErrUsernameTaken = fmt.Errorf("admin username already exists: %w", storage.ErrConflict)

	// ErrInvalidCredentials is returned when the supplied credentials do
	// not match a stored admin.
	ErrInvalidCredentials = errors.New("invalid admin credentials")

	// ErrStorage wraps any failure of the underlying store. It is kept
	// apart from ErrInvalidCredentials so a database outage is never
	// reported as a wrong password.
	ErrStorage = errors.New("identity storage failure")

	// ErrEmptyCredentials is returned when a username or password is empty.
	ErrEmptyCredentials = errors.New("username and password are required")
)

// Service implements the admin identity operations on top of a Store.
type Service struct {
	store Store
	cost  int
	now   func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// Option configures a Service.
type Option func(*Service)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithClock sets the time source for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an identity service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		cost:  bcrypt.DefaultCost,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindByUsername returns the admin with the given username, or nil when
// none exists.
func (s *Service) FindByUsername(ctx context.Context, username string) (*Admin, error) {
	admin, err := s.store.GetAdmin(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return admin, nil
}

// Create hashes password and stores a new admin.
func (s *Service) Create(ctx context.Context, username, password string) (*Admin, error) {
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now().UTC()
	admin := &Admin{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, storageErr(err)
	}

	debug.Log("auth", "admin created", "username", username)
	return admin, nil
}

// VerifyCredentials reports whether password matches the stored hash for
// username. An unknown username is not an error; it yields false.
func (s *Service) VerifyCredentials(ctx context.Context, username, password string) (bool, error) {
	admin, err := s.verify(ctx, username, password)
	if errors.Is(err, ErrInvalidCredentials) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return admin != nil, nil
}

// Update re-verifies the current credentials and then replaces username
// and password in one conditional write. If another update wins the race,
// the loser observes ErrInvalidCredentials and the stored record reflects
// the winner only.
func (s *Service) Update(ctx context.Context, currentUsername, currentPassword, newUsername, newPassword string) (*Admin, error) {
	if newUsername == "" || newPassword == "" {
		return nil, ErrEmptyCredentials
	}

	current, err := s.verify(ctx, currentUsername, currentPassword)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	next := &Admin{
		Username:     newUsername,
		PasswordHash: string(hash),
		CreatedAt:    current.CreatedAt,
		UpdatedAt:    s.now().UTC(),
	}

	err = s.store.ReplaceAdmin(ctx, current.Username, current.PasswordHash, next)
	switch {
	case err == nil:
		debug.Log("auth", "admin updated", "username", currentUsername, "new_username", newUsername)
		return next, nil
	case errors.Is(err, storage.ErrNotFound):
		return nil, ErrInvalidCredentials
	case errors.Is(err, storage.ErrConflict):
		return nil, ErrUsernameTaken
	default:
		return nil, storageErr(err)
	}
}

// Bootstrap creates the first admin when the store holds none. It is a
// no-op when any admin exists or when username or password is empty.
func (s *Service) Bootstrap(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	n, err := s.store.CountAdmins(ctx)
	if err != nil {
		return false, storageErr(err)
	}
	if n > 0 {
		return false, nil
	}

	if _, err := s.Create(ctx, username, password); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// verify loads the admin and compares the password. Unknown usernames
// still pay for one bcrypt comparison so response timing does not reveal
// which usernames exist.
func (s *Service) verify(ctx context.Context, username, password string) (*Admin, error) {
	admin, err := s.store.GetAdmin(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storageErr(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}

func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), s.cost)
	})
	return s.dummyHash
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
