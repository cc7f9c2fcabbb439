// Package auth implements email/password accounts and opaque session
// tokens on top of the store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/qtplanner/internal/apperr"
	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/store"
)

// MinPasswordLength is the shortest password SignUp accepts.
const MinPasswordLength = 6

var (
	// ErrInvalidCredentials is returned when email or password do not match.
	ErrInvalidCredentials = errors.New("invalid login credentials")
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("user already registered")
	// ErrSessionNotFound is returned when a token does not resolve.
	ErrSessionNotFound = errors.New("session not found")
)

// Service issues and resolves sessions.
type Service struct {
	store store.Store
	cost  int
}

// NewService creates a Service backed by s.
func NewService(s store.Store) *Service {
	return &Service{store: s, cost: bcrypt.DefaultCost}
}

// WithCost returns a copy of the service hashing with the given bcrypt cost.
func (a *Service) WithCost(cost int) *Service {
	cp := *a
	cp.cost = cost
	return &cp
}

// SignUp registers a new account. The account is not signed in.
func (a *Service) SignUp(
	ctx context.Context,
	email, password string,
	metadata map[string]string,
) (*model.User, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("invalid email address")
	}
	if len(password) < MinPasswordLength {
		return nil, apperr.Validation(
			fmt.Sprintf("password should be at least %d characters", MinPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "hashing password", err)
	}

	user, err := a.store.CreateUser(ctx, model.User{Email: email, Metadata: metadata}, string(hash))
	if errors.Is(err, store.ErrConflict) {
		return nil, apperr.Wrap(apperr.KindAuth, ErrEmailTaken.Error(), ErrEmailTaken)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAuth, "sign up failed", err)
	}
	return user, nil
}

// SignIn checks credentials and opens a new session, returning its token.
func (a *Service) SignIn(ctx context.Context, email, password string) (*model.User, string, error) {
	user, hash, err := a.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", apperr.Wrap(apperr.KindAuth, ErrInvalidCredentials.Error(), ErrInvalidCredentials)
	}
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindAuth, "sign in failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, "", apperr.Wrap(apperr.KindAuth, ErrInvalidCredentials.Error(), ErrInvalidCredentials)
	}

	token := uuid.New().String()
	if err := a.store.CreateSession(ctx, token, user.ID); err != nil {
		return nil, "", apperr.Wrap(apperr.KindAuth, "sign in failed", err)
	}
	return user, token, nil
}

// Resolve returns the account owning token.
func (a *Service) Resolve(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperr.Wrap(apperr.KindAuth, ErrSessionNotFound.Error(), ErrSessionNotFound)
	}
	user, err := a.store.GetSessionUser(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Wrap(apperr.KindAuth, ErrSessionNotFound.Error(), ErrSessionNotFound)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRead, "could not resolve session", err)
	}
	return user, nil
}

// IsSessionNotFound reports whether err says the token itself is unknown,
// either in-process or as decoded from a backend response.
func IsSessionNotFound(err error) bool {
	if errors.Is(err, ErrSessionNotFound) {
		return true
	}
	return apperr.Is(err, apperr.KindAuth) && apperr.Message(err) == ErrSessionNotFound.Error()
}

// SignOut ends the session. Unknown tokens are ignored.
func (a *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := a.store.DeleteSession(ctx, token); err != nil {
		return apperr.Wrap(apperr.KindAuth, "sign out failed", err)
	}
	return nil
}
