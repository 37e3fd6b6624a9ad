// Package auth manages staff accounts and login sessions. Passwords are
// stored as bcrypt hashes; the sanitized current user is persisted
// separately and never carries a hash.
package auth

import (
	"errors"
	"sync"
	"time"

	"burguerclub-pos/internal/domain"
	"burguerclub-pos/internal/storage"
	"burguerclub-pos/pkg/pubsub"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	usersKey   = "users"
	sessionKey = "current-user"
)

var (
	// ErrInvalidCredentials covers both the unknown-user and the
	// wrong-password case; callers render one generic message and never
	// learn which it was.
	ErrInvalidCredentials = errors.New("auth: incorrect credentials")

	ErrEmailTaken   = errors.New("auth: email already registered")
	ErrInvalidRole  = errors.New("auth: unknown role")
	ErrNameRequired = errors.New("auth: name is required")
)

type Options struct {
	SessionSecret string
	SessionExpiry time.Duration
	// LoginDelay is the fixed artificial delay applied to every login
	// attempt, success or failure.
	LoginDelay time.Duration
}

// storedUser is the persisted shape; the hash never leaves the package.
type storedUser struct {
	domain.User
	PasswordHash string `json:"passwordHash"`
}

type Store struct {
	records *storage.RecordStore
	log     *zap.Logger
	opts    Options
	sleep   func(time.Duration)

	mu    sync.Mutex
	users []storedUser
}

func NewStore(records *storage.RecordStore, bus *pubsub.Bus, log *zap.Logger, opts Options) *Store {
	if opts.SessionExpiry <= 0 {
		opts.SessionExpiry = 12 * time.Hour
	}
	s := &Store{records: records, log: log, opts: opts, sleep: time.Sleep}
	s.reload()

	if bus != nil {
		bus.Subscribe("storage."+usersKey, func(pubsub.Event) { s.reload() })
		bus.Subscribe("poll.tick", func(pubsub.Event) { s.reload() })
	}
	return s
}

// Login checks the credentials after the fixed artificial delay. On
// success it persists the sanitized user as the current session and
// returns it with a signed session token.
func (s *Store) Login(email, password string) (domain.User, string, error) {
	if s.opts.LoginDelay > 0 {
		s.sleep(s.opts.LoginDelay)
	}

	s.mu.Lock()
	var found *storedUser
	for i := range s.users {
		if s.users[i].Email == email {
			found = &s.users[i]
			break
		}
	}
	var hash string
	if found != nil {
		hash = found.PasswordHash
	}
	s.mu.Unlock()

	if found == nil {
		// burn a comparison anyway so both failure paths cost the same
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B4Vn5N0F8NkO3a0qW9ZrJH6sW1zK"), []byte(password))
		return domain.User{}, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return domain.User{}, "", ErrInvalidCredentials
	}

	user := found.User
	token, err := issueSessionToken(user, s.opts.SessionSecret, s.opts.SessionExpiry)
	if err != nil {
		return domain.User{}, "", err
	}
	if err := s.records.Put(sessionKey, user); err != nil {
		return domain.User{}, "", err
	}

	s.log.Info("user logged in", zap.String("email", email), zap.String("role", string(user.Role)))
	return user, token, nil
}

// Logout clears the persisted session.
func (s *Store) Logout() error {
	return s.records.Delete(sessionKey)
}

// CurrentUser returns the persisted session user, if any.
func (s *Store) CurrentUser() (domain.User, bool) {
	var user domain.User
	if err := s.records.Get(sessionKey, &user); err != nil {
		return domain.User{}, false
	}
	return user, true
}

// VerifySession validates a session token issued by Login.
func (s *Store) VerifySession(token string) (domain.User, error) {
	return VerifySessionToken(token, s.opts.SessionSecret)
}

// Users returns every staff account, sanitized.
func (s *Store) Users() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.User)
	}
	return users
}

// AddUser registers a staff account with a freshly hashed password and
// returns the sanitized record.
func (s *Store) AddUser(name, email, password string, role domain.UserRole) (domain.User, error) {
	if name == "" {
		return domain.User{}, ErrNameRequired
	}
	if !role.Valid() {
		return domain.User{}, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := storedUser{
		User: domain.User{
			ID:    uuid.NewString(),
			Name:  name,
			Email: email,
			Role:  role,
		},
		PasswordHash: string(hash),
	}

	s.mu.Lock()
	for _, existing := range s.users {
		if existing.Email == email {
			s.mu.Unlock()
			return domain.User{}, ErrEmailTaken
		}
	}
	s.users = append(s.users, user)
	snapshot := append([]storedUser(nil), s.users...)
	s.mu.Unlock()

	return user.User, s.records.Put(usersKey, snapshot)
}

// UserUpdate carries a partial account change; nil fields stay
// untouched.
type UserUpdate struct {
	Name     *string
	Email    *string
	Role     *domain.UserRole
	Password *string
}

// UpdateUser applies a partial change; unknown IDs are a no-op.
func (s *Store) UpdateUser(id string, upd UserUpdate) error {
	if upd.Role != nil && !upd.Role.Valid() {
		return ErrInvalidRole
	}

	var hash string
	if upd.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		hash = string(hashed)
	}

	s.mu.Lock()
	changed := false
	for i := range s.users {
		if s.users[i].ID != id {
			continue
		}
		if upd.Name != nil {
			s.users[i].Name = *upd.Name
		}
		if upd.Email != nil {
			s.users[i].Email = *upd.Email
		}
		if upd.Role != nil {
			s.users[i].Role = *upd.Role
		}
		if upd.Password != nil {
			s.users[i].PasswordHash = hash
		}
		changed = true
		break
	}
	snapshot := append([]storedUser(nil), s.users...)
	s.mu.Unlock()

	if !changed {
		return nil
	}
	return s.records.Put(usersKey, snapshot)
}

// DeleteUser removes an account; unknown IDs are a no-op.
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	kept := make([]storedUser, 0, len(s.users))
	for _, u := range s.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	changed := len(kept) != len(s.users)
	s.users = kept
	snapshot := append([]storedUser(nil), s.users...)
	s.mu.Unlock()

	if !changed {
		return nil
	}
	return s.records.Put(usersKey, snapshot)
}

func (s *Store) reload() {
	var stored []storedUser
	err := s.records.Get(usersKey, &stored)

	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("users reload failed", zap.Error(err))
		}
		s.seedDefaults()
		return
	}

	s.mu.Lock()
	s.users = stored
	s.mu.Unlock()
}

// seedDefaults installs the demo staff the first time the store runs,
// hashing their well-known demo passwords.
func (s *Store) seedDefaults() {
	defaults := []struct {
		name     string
		email    string
		password string
		role     domain.UserRole
	}{
		{"Carlos Mesero", "mesero@burguerclub.com", "mesero123", domain.RoleWaiter},
		{"Ana Cocina", "cocina@burguerclub.com", "cocina123", domain.RoleKitchen},
		{"Luis Admin", "admin@burguerclub.com", "admin123", domain.RoleAdmin},
	}

	users := make([]storedUser, 0, len(defaults))
	for _, d := range defaults {
		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			s.log.Error("seeding user failed", zap.String("email", d.email), zap.Error(err))
			continue
		}
		users = append(users, storedUser{
			User: domain.User{
				ID:    uuid.NewString(),
				Name:  d.name,
				Email: d.email,
				Role:  d.role,
			},
			PasswordHash: string(hash),
		})
	}

	s.mu.Lock()
	s.users = users
	s.mu.Unlock()

	if err := s.records.Put(usersKey, users); err != nil {
		s.log.Error("persisting seeded users failed", zap.Error(err))
	}
	s.log.Info("seeded default staff", zap.Int("count", len(users)))
}
