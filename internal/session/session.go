// Package session holds the signed-in identity. The persisted token is the
// single source of truth: the service reconstructs its state from the
// token store on Restore and keeps the two in step on every operation.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cinelume/internal/apperr"
	"cinelume/internal/models"
	"cinelume/internal/tokenstore"

	"github.com/sirupsen/logrus"
)

const (
	RouteLanding = "/"
	RouteLogin   = "/login"

	minPasswordLength = 8
)

// Navigator receives the route a session operation wants to show next.
type Navigator interface {
	Navigate(route string)
}

type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// Authenticator is the part of the API client the session needs.
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (string, error)
	Register(ctx context.Context, reg models.Registration) error
}

// UserUpdate lists the identity fields to overwrite. Nil fields are left
// as they are.
type UserUpdate struct {
	ID        *int
	Username  *string
	AvatarURL *string
}

type Service struct {
	store  tokenstore.Store
	auth   Authenticator
	nav    Navigator
	logger *logrus.Logger
	now    func() time.Time

	restoreOnce sync.Once

	mu       sync.RWMutex
	identity *Identity
	token    string
}

func New(store tokenstore.Store, auth Authenticator, nav Navigator, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	if nav == nil {
		nav = NavigatorFunc(func(string) {})
	}
	return &Service{
		store:  store,
		auth:   auth,
		nav:    nav,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the clock used for expiry checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Restore rebuilds the session from the persisted token. It runs once per
// Service; later calls return immediately. An undecodable token is
// deleted and the session stays absent.
func (s *Service) Restore(ctx context.Context) {
	s.restoreOnce.Do(func() {
		s.restore(ctx)
	})
}

func (s *Service) restore(ctx context.Context) {
	token, err := s.store.Get(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read persisted token")
		return
	}
	if token == "" {
		return
	}

	identity, err := Decode(token, s.now())
	if err != nil {
		s.logger.WithError(err).Debug("Discarding undecodable persisted token")
		if delErr := s.store.Delete(ctx); delErr != nil {
			s.logger.WithError(delErr).Warn("Failed to delete persisted token")
		}
		return
	}

	s.mu.Lock()
	s.identity = &identity
	s.token = token
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"user_id":  identity.ID,
		"username": identity.Username,
	}).Debug("Session restored")
}

func (s *Service) Login(ctx context.Context, creds models.Credentials) error {
	const op = "login"

	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return apperr.Validation(op, "Email and password are required.")
	}

	token, err := s.auth.Login(ctx, creds)
	if err != nil {
		return &apperr.Error{Kind: apperr.KindAuthentication, Op: op, Status: apperr.StatusOf(err), Err: err}
	}

	identity, err := Decode(token, s.now())
	if err != nil {
		return &apperr.Error{Kind: apperr.KindAuthentication, Op: op, Message: "The server issued an unreadable token.", Err: err}
	}

	if err := s.store.Set(ctx, token); err != nil {
		return &apperr.Error{Kind: apperr.KindAuthentication, Op: op, Message: "Could not save the session.", Err: fmt.Errorf("failed to persist token: %w", err)}
	}

	s.mu.Lock()
	s.identity = &identity
	s.token = token
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"user_id":  identity.ID,
		"username": identity.Username,
	}).Info("Logged in")

	s.nav.Navigate(RouteLanding)
	return nil
}

func (s *Service) Register(ctx context.Context, reg models.Registration) error {
	const op = "register"

	if err := validateRegistration(reg); err != nil {
		return err
	}

	if err := s.auth.Register(ctx, reg); err != nil {
		status := apperr.StatusOf(err)
		msg := ""
		if status >= 400 && status < 500 {
			msg = apperr.UserMessage(err)
		}
		return &apperr.Error{Kind: apperr.KindRegistration, Op: op, Status: status, Message: msg, Err: err}
	}

	s.logger.WithField("username", reg.Username).Info("Registered")
	s.nav.Navigate(RouteLogin)
	return nil
}

func validateRegistration(reg models.Registration) error {
	const op = "register"
	switch {
	case strings.TrimSpace(reg.Username) == "":
		return apperr.Validation(op, "Username is required.")
	case !strings.Contains(reg.Email, "@"):
		return apperr.Validation(op, "A valid email is required.")
	case len(reg.Password) < minPasswordLength:
		return apperr.Validation(op, fmt.Sprintf("Password must be at least %d characters.", minPasswordLength))
	}
	return nil
}

// Logout always succeeds; a token store that refuses the delete is logged.
func (s *Service) Logout(ctx context.Context) {
	if err := s.store.Delete(ctx); err != nil {
		s.logger.WithError(err).Warn("Failed to delete persisted token")
	}

	s.mu.Lock()
	s.identity = nil
	s.token = ""
	s.mu.Unlock()

	s.nav.Navigate(RouteLanding)
}

// UpdateUser merges the given fields into the in-memory identity without a
// network call. When the persisted token carries an avatar, that avatar
// wins: a profile update may have been answered with a re-signed token.
func (s *Service) UpdateUser(ctx context.Context, upd UserUpdate) {
	tokenAvatar := s.persistedAvatar(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return
	}

	next := *s.identity
	if upd.ID != nil {
		next.ID = *upd.ID
	}
	if upd.Username != nil {
		next.Username = *upd.Username
	}
	if upd.AvatarURL != nil {
		next.AvatarURL = *upd.AvatarURL
	}

	if tokenAvatar != "" {
		next.AvatarURL = tokenAvatar
	}

	s.identity = &next
}

// persistedAvatar reads the pfp claim of the stored token, or "".
func (s *Service) persistedAvatar(ctx context.Context) string {
	token, err := s.store.Get(ctx)
	if err != nil || token == "" {
		return ""
	}
	identity, err := Decode(token, s.now())
	if err != nil {
		return ""
	}
	return identity.AvatarURL
}

// AdoptToken persists a token issued outside of Login, such as one
// returned by a profile update, and re-derives the identity from it.
func (s *Service) AdoptToken(ctx context.Context, token string) error {
	identity, err := Decode(token, s.now())
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	s.mu.Lock()
	s.identity = &identity
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *Service) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

func (s *Service) LoggedIn() bool {
	_, ok := s.Current()
	return ok
}

func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Owns reports whether the signed-in user is username.
func (s *Service) Owns(username string) bool {
	id, ok := s.Current()
	return ok && id.Username == username
}
