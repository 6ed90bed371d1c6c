package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/config"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/notify"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/repomanager"
)

// ResetInput is the payload of ResetPassword.
type ResetInput struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	ResetToken      string `json:"resetToken"`
}

// ResetService runs the two phases of a password reset: issuing a mailed
// single-use token and exchanging it for a new password.
type ResetService struct {
	base
	session     session
	hasher      PasswordHasher
	notifier    Notifier
	frontendURL string
	ttl         time.Duration
	window      time.Duration
	newToken    func() (string, error)
}

// NewResetService constructs a ResetService from repositories and server config.
func NewResetService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config,
	tokens TokenIssuer, hasher PasswordHasher, notifier Notifier, logger logging.Logger) *ResetService {
	ttl := cfg.ResetTokenTTL
	if ttl <= 0 {
		ttl = common.ResetTokenTTL
	}
	return &ResetService{
		base:        newBase(db, m, logger),
		session:     newSession(tokens, cfg.SessionCookieName, cfg.SessionTTL),
		hasher:      hasher,
		notifier:    notifier,
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		ttl:         ttl,
		window:      cfg.ResetTokenWindow,
		newToken: func() (string, error) {
			return common.MakeRandHexString(common.ResetTokenBytes)
		},
	}
}

// RequestReset stores a fresh reset token on the user with email and mails
// them a link carrying it. A delivery failure is returned wrapped in
// ErrNotificationFailed; the token stays stored.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	repo := s.repomanager.Users(s.db)

	u, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w for email %s", common.ErrUserNotFound, email)
		}
		return internal("error searching user", err)
	}

	token, err := s.newToken()
	if err != nil {
		return internal("generate reset token", err)
	}
	expiry := s.now().Add(s.ttl)

	if err := repo.SetResetToken(ctx, u.ID, token, expiry); err != nil {
		return internal("error storing reset token", err)
	}

	link := s.frontendURL + "/reset?resetToken=" + url.QueryEscape(token)
	body, err := notify.PasswordResetBody(link)
	if err != nil {
		return internal("render reset mail", err)
	}

	if err := s.notifier.SendMail(ctx, u.Email, notify.PasswordResetSubject, body); err != nil {
		s.logger.Warn(ctx, "reset mail not delivered", "user_id", u.ID, "error", err.Error())
		return fmt.Errorf("%w: %w", common.ErrNotificationFailed, err)
	}

	s.logger.Info(ctx, "reset token issued", "user_id", u.ID)
	return nil
}

// ResetPassword sets a new password for the holder of a valid reset token,
// consumes the token and starts a session.
func (s *ResetService) ResetPassword(ctx context.Context, jar CookieJar, in ResetInput) (*models.User, error) {
	if in.Password != in.ConfirmPassword {
		return nil, common.ErrPasswordMismatch
	}
	if in.ResetToken == "" {
		return nil, common.ErrResetTokenInvalid
	}

	repo := s.repomanager.Users(s.db)
	minExpiry := s.now().Add(-s.window)

	if _, err := repo.FindByResetToken(ctx, in.ResetToken, minExpiry); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrResetTokenInvalid
		}
		return nil, internal("error searching reset token", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, internal("hash password", err)
	}

	u, err := repo.ConsumeResetToken(ctx, in.ResetToken, minExpiry, hash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrResetTokenInvalid
		}
		return nil, internal("error updating password", err)
	}

	if err := s.session.start(jar, u.ID); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "password reset", "user_id", u.ID)
	return u, nil
}
