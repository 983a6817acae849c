// Package session owns the credential lifecycle: login, signup, restore,
// expiry checks, and logout. All state transitions replace the credential
// wholesale under a single lock; network calls never run while the lock is
// held.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/freshcart/shopkit/domain"
	"github.com/freshcart/shopkit/internal/token"
	"github.com/freshcart/shopkit/repository"
)

// API is the remote surface the manager needs; *api.Client satisfies it.
type API interface {
	SignIn(ctx context.Context, req domain.LoginRequest) (domain.JwtResponse, error)
	SignUp(ctx context.Context, req domain.SignupRequest) (domain.MessageResponse, error)
}

// Manager holds the current session state.
type Manager struct {
	api    API
	store  repository.CredentialStore
	logger *zap.Logger

	mu      sync.Mutex
	current *domain.Credential
}

// New constructs a Manager. Call Restore once at startup to pick up a
// persisted credential.
func New(api API, store repository.CredentialStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{api: api, store: store, logger: logger}
}

// Login signs the user in and adopts the returned credential. A credential
// whose token is already expired at receipt is rejected with TOKEN_EXPIRED
// and the session stays unauthenticated.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	// Any previous session is discarded before attempting a new one.
	m.clear()

	resp, err := m.api.SignIn(ctx, domain.LoginRequest{Username: username, Password: password})
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
			return domain.WrapError(domain.ErrCodeAuthenticationFailed, "authentication failed", err)
		}
		return err
	}

	cred, err := credentialFrom(resp, time.Now())
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.current = cred
	m.mu.Unlock()

	if err := m.store.Put(&resp); err != nil {
		// The session is usable either way; it just won't survive a restart.
		m.logger.Warn("failed to persist credential", zap.Error(err))
	}
	m.logger.Info("login successful",
		zap.String("username", cred.Username),
		zap.Time("expires_at", cred.ExpiresAt))
	return nil
}

// Signup registers a new customer account and logs in with the same
// credentials. The full name is split into first/last name and the email
// doubles as the username, which is how the backend models customers.
func (m *Manager) Signup(ctx context.Context, fullName, email, password string) error {
	first, last := splitName(fullName)
	req := domain.SignupRequest{
		Username:  email,
		Email:     email,
		Password:  password,
		FirstName: first,
		LastName:  last,
	}
	if _, err := m.api.SignUp(ctx, req); err != nil {
		return err
	}
	return m.Login(ctx, email, password)
}

// Logout clears the session and deletes the persisted credential. Idempotent.
func (m *Manager) Logout() {
	m.clear()
	m.logger.Info("logged out")
}

// Restore loads a persisted credential at startup. This is the graceful
// validation path: a missing, undecodable, or expired record leaves the
// session unauthenticated without raising an error.
func (m *Manager) Restore() {
	resp, err := m.store.Get()
	if err != nil {
		m.logger.Warn("failed to load persisted credential", zap.Error(err))
		return
	}
	if resp == nil {
		m.logger.Debug("no persisted credential, user needs to login")
		return
	}
	cred, err := credentialFrom(*resp, time.Now())
	if err != nil {
		m.logger.Info("persisted credential expired, discarding")
		if err := m.store.Delete(); err != nil {
			m.logger.Warn("failed to delete expired credential", zap.Error(err))
		}
		return
	}
	m.mu.Lock()
	m.current = cred
	m.mu.Unlock()
	m.logger.Info("session restored",
		zap.String("username", cred.Username),
		zap.Time("expires_at", cred.ExpiresAt))
}

// Valid is the strict check: it re-validates expiry on demand and forces a
// logout when the credential is no longer usable.
func (m *Manager) Valid() bool {
	m.mu.Lock()
	cred := m.current
	m.mu.Unlock()
	if cred == nil {
		return false
	}
	if token.Expired(cred.RawToken, time.Now()) {
		m.logger.Info("token expired, clearing session")
		m.clear()
		return false
	}
	return true
}

// Current returns the current credential, or nil when unauthenticated. The
// credential is immutable; callers must not modify it.
func (m *Manager) Current() *domain.Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Token implements api.TokenSource. Each request attempt reads the token
// through here, so a credential swap between retries takes effect.
func (m *Manager) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.current.RawToken == "" {
		return "", false
	}
	return m.current.RawToken, true
}

// HandleUnauthorized is the executor's 401 hook: any unauthorized response
// invalidates the session so local state and the server's view of
// authorization never diverge for long.
func (m *Manager) HandleUnauthorized() {
	m.logger.Info("received 401, invalidating session")
	m.clear()
}

func (m *Manager) clear() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	if err := m.store.Delete(); err != nil {
		m.logger.Warn("failed to delete persisted credential", zap.Error(err))
	}
}

// credentialFrom validates the token expiry and builds the immutable
// credential. Unparseable tokens fail safe as expired.
func credentialFrom(resp domain.JwtResponse, now time.Time) (*domain.Credential, error) {
	if token.Expired(resp.Token, now) {
		return nil, domain.NewError(domain.ErrCodeTokenExpired, "token is expired")
	}
	exp, err := token.ExpiresAt(resp.Token)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeTokenExpired, "token has no usable expiry", err)
	}
	return &domain.Credential{
		RawToken:      resp.Token,
		SubjectID:     resp.ID,
		Username:      resp.Username,
		Email:         resp.Email,
		FullName:      resp.FullName,
		EmailVerified: resp.EmailVerified,
		Roles:         append([]string(nil), resp.Roles...),
		ExpiresAt:     exp,
	}, nil
}

func splitName(fullName string) (first, last string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
