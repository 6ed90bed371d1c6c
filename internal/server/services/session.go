package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/config"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/repomanager"
)

// SignoutMessage is returned by Signout.
const SignoutMessage = "Goodbye!"

// SignupInput is the payload of Signup.
type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Validate checks the signup payload.
func (in SignupInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&in.Password, validation.Required),
		validation.Field(&in.Name, validation.Required, validation.Length(1, 200)),
	)
}

// SessionService signs users up, in and out.
type SessionService struct {
	base
	session session
	hasher  PasswordHasher
}

// NewSessionService constructs a SessionService from repositories and server config.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config,
	tokens TokenIssuer, hasher PasswordHasher, logger logging.Logger) *SessionService {
	return &SessionService{
		base:    newBase(db, m, logger),
		session: newSession(tokens, cfg.SessionCookieName, cfg.SessionTTL),
		hasher:  hasher,
	}
}

// Signup creates a user with the USER permission and signs them in.
func (s *SessionService) Signup(ctx context.Context, jar CookieJar, in SignupInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrorInvalidInput)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, internal("hash password", err)
	}

	user := &models.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		Permissions:  models.Permissions{models.PermissionUser},
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, internal("error creating user", err)
	}

	if err := s.session.start(jar, u.ID); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user signed up", "user_id", u.ID)
	return u, nil
}

// Signin verifies the credentials and starts a session. Unknown email gives
// ErrUserNotFound and a wrong password ErrInvalidCredentials.
func (s *SessionService) Signin(ctx context.Context, jar CookieJar, email, password string) (*models.User, error) {
	email = normalizeEmail(email)

	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "signin failed", "reason", "unknown email")
			return nil, common.ErrUserNotFound
		}
		return nil, internal("error searching user", err)
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		s.logger.Info(ctx, "signin failed", "reason", "wrong password", "user_id", u.ID)
		return nil, common.ErrInvalidCredentials
	}

	if err := s.session.start(jar, u.ID); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user signed in", "user_id", u.ID)
	return u, nil
}

// Signout clears the session cookie.
func (s *SessionService) Signout(jar CookieJar) string {
	s.session.end(jar)
	return SignoutMessage
}
