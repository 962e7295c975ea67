package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/castvote-dev/castvote/internal/cli/client"
	"github.com/castvote-dev/castvote/internal/cli/guard"
	"github.com/castvote-dev/castvote/internal/cli/store"
)

// AuthAPI is the part of the backend the manager talks to
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*client.LoginResponse, error)
	Register(ctx context.Context, name, email, password string) (*client.RegisterResponse, error)
}

// Manager owns the single live Session
type Manager struct {
	store  store.Store
	api    AuthAPI
	logger zerolog.Logger

	mu        sync.RWMutex
	session   *Session
	restoring bool

	restoreOnce sync.Once
	restoreErr  error
}

// NewManager creates a manager. Until RestoreOnStartup completes the
// manager reports the Restoring state.
func NewManager(s store.Store, api AuthAPI, logger zerolog.Logger) *Manager {
	return &Manager{
		store:     s,
		api:       api,
		logger:    logger,
		restoring: true,
	}
}

// Snapshot returns a copy of the current state
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{Restoring: m.restoring}
	if m.session != nil {
		sess := *m.session
		snap.Session = &sess
	}
	return snap
}

// State maps the current state onto the route guard's states
func (m *Manager) State() guard.State {
	snap := m.Snapshot()
	switch {
	case snap.Restoring:
		return guard.Restoring
	case snap.IsAdmin():
		return guard.AuthenticatedAdmin
	case snap.Authenticated():
		return guard.AuthenticatedUser
	default:
		return guard.Unauthenticated
	}
}

// RestoreOnStartup re-establishes a session from persisted state. It runs
// once per process; later calls return the first result. A malformed user
// record is discarded together with the token and is not reported as an error.
func (m *Manager) RestoreOnStartup(ctx context.Context) error {
	m.restoreOnce.Do(func() {
		m.restoreErr = m.restore()

		m.mu.Lock()
		m.restoring = false
		m.mu.Unlock()
	})
	return m.restoreErr
}

func (m *Manager) restore() error {
	rawUser, hasUser, err := m.store.Load(store.KeyUser)
	if err != nil {
		return fmt.Errorf("failed to load stored user: %w", err)
	}
	token, hasToken, err := m.store.Load(store.KeyToken)
	if err != nil {
		return fmt.Errorf("failed to load stored token: %w", err)
	}

	if !hasUser || rawUser == "" || !hasToken || token == "" {
		return nil
	}

	user, err := parseUser(rawUser)
	if err != nil {
		m.logger.Debug().Err(err).Msg("Discarding stored session")
		m.clearPersisted()
		return nil
	}

	m.mu.Lock()
	m.session = &Session{
		UserID:      user.ID,
		DisplayName: user.Name,
		Email:       user.Email,
		IsAdmin:     user.IsAdmin,
		Token:       token,
	}
	m.mu.Unlock()

	m.logger.Debug().Str("user_id", user.ID.String()).Bool("is_admin", user.IsAdmin).Msg("Session restored")
	return nil
}

func parseUser(raw string) (*persistedUser, error) {
	var user *persistedUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, errors.Join(ErrMalformedPersistedSession, err)
	}
	if user == nil || user.ID == "" {
		return nil, fmt.Errorf("%w: user record has no id", ErrMalformedPersistedSession)
	}
	return user, nil
}

// Login authenticates against the backend and establishes the session.
// On failure nothing is stored and the client error is returned unchanged.
func (m *Manager) Login(ctx context.Context, email, password string) (Navigation, error) {
	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.logger.Debug().Err(err).Str("email", email).Msg("Login failed")
		return Navigation{}, err
	}
	if resp.Token == "" {
		return Navigation{}, ErrMissingToken
	}

	sess := &Session{
		UserID:      resp.ID,
		DisplayName: resp.Name,
		Email:       resp.Email,
		IsAdmin:     isAdmin(resp.Roles),
		Token:       resp.Token,
	}

	record, err := json.Marshal(persistedUser{
		ID:      sess.UserID,
		Name:    sess.DisplayName,
		Email:   sess.Email,
		IsAdmin: sess.IsAdmin,
	})
	if err != nil {
		return Navigation{}, fmt.Errorf("failed to serialize user: %w", err)
	}

	if err := m.store.Save(store.KeyToken, sess.Token); err != nil {
		return Navigation{}, fmt.Errorf("failed to save authentication token: %w", err)
	}
	if err := m.store.Save(store.KeyUser, string(record)); err != nil {
		m.clearPersisted()
		return Navigation{}, fmt.Errorf("failed to save user: %w", err)
	}

	m.mu.Lock()
	m.session = sess
	m.restoring = false
	m.mu.Unlock()

	m.logger.Debug().Str("user_id", sess.UserID.String()).Bool("is_admin", sess.IsAdmin).Msg("Logged in")

	return Navigation{Route: guard.Vote.Path, Notice: "Login successful"}, nil
}

// Register creates an account. It never stores credentials: registering
// does not log the user in.
func (m *Manager) Register(ctx context.Context, name, email, password string) (Navigation, error) {
	if _, err := m.api.Register(ctx, name, email, password); err != nil {
		m.logger.Debug().Err(err).Str("email", email).Msg("Registration failed")
		return Navigation{}, err
	}

	return Navigation{Route: guard.Login.Path, Notice: "Registration successful. Please log in."}, nil
}

// Logout ends the session. It always succeeds.
func (m *Manager) Logout(ctx context.Context) Navigation {
	m.teardown()
	return Navigation{Route: guard.Home.Path, Notice: "Logged out successfully"}
}

// Expire tears the session down after the backend rejected the token
func (m *Manager) Expire(ctx context.Context) {
	m.teardown()
	m.logger.Debug().Msg("Session expired")
}

func (m *Manager) teardown() {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()

	m.clearPersisted()
}

// clearPersisted removes token and user; failures are logged, never returned
func (m *Manager) clearPersisted() {
	for _, key := range []string{store.KeyUser, store.KeyToken} {
		if err := m.store.Clear(key); err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("Failed to clear stored credential")
		}
	}
}

// SetBackendEndpoint persists a new backend URL. The running client keeps
// its old URL; the returned navigation asks for a reload.
func (m *Manager) SetBackendEndpoint(rawURL string) (Navigation, error) {
	if rawURL == "" {
		return Navigation{}, fmt.Errorf("%w: empty", ErrInvalidEndpoint)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Navigation{}, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Navigation{}, fmt.Errorf("%w: %q must be an absolute http(s) URL", ErrInvalidEndpoint, rawURL)
	}

	if err := m.store.Save(store.KeyBaseURL, rawURL); err != nil {
		return Navigation{}, fmt.Errorf("failed to save backend URL: %w", err)
	}

	return Navigation{Reload: true, Notice: fmt.Sprintf("API URL set to: %s", rawURL)}, nil
}
