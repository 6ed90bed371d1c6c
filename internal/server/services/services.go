// Package services contains server-side business logic: sessions, password
// reset, user administration, items and carts. Every operation takes the
// acting models.Identity explicitly; transport code never touches storage.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/repomanager"
)

// CookieOptions are the attributes of a session cookie.
type CookieOptions struct {
	HTTPOnly bool
	MaxAge   int // seconds
}

// CookieJar is the transport side of a request able to set and clear cookies.
type CookieJar interface {
	SetCookie(name, value string, opts CookieOptions)
	ClearCookie(name string)
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// Notifier delivers HTML e-mail.
type Notifier interface {
	SendMail(ctx context.Context, to, subject, htmlBody string) error
}

// ImagePresigner returns a URL the client can PUT an object to.
type ImagePresigner interface {
	PresignPut(ctx context.Context, key string) (string, error)
}

// base bundles what every service needs to reach storage.
type base struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func newBase(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) base {
	if logger == nil {
		logger = logging.Nop{}
	}
	return base{db: db, repomanager: m, logger: logger, now: time.Now}
}

// actor loads the user behind id with fresh permissions. Anonymous callers
// and tokens of users that no longer exist get ErrLoginRequired.
func (b *base) actor(ctx context.Context, id models.Identity) (*models.User, error) {
	if id.IsAnonymous() {
		return nil, common.ErrLoginRequired
	}
	u, err := b.repomanager.Users(b.db).GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrLoginRequired
		}
		return nil, internal("load acting user", err)
	}
	return u, nil
}

// session starts and ends cookie sessions.
type session struct {
	tokens     TokenIssuer
	cookieName string
	maxAge     int
}

func newSession(tokens TokenIssuer, cookieName string, ttl time.Duration) session {
	if cookieName == "" {
		cookieName = common.SessionCookieName
	}
	if ttl <= 0 {
		ttl = common.SessionTTL
	}
	return session{tokens: tokens, cookieName: cookieName, maxAge: int(ttl / time.Second)}
}

func (s session) start(jar CookieJar, userID string) error {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return internal("issue session token", err)
	}
	jar.SetCookie(s.cookieName, token, CookieOptions{HTTPOnly: true, MaxAge: s.maxAge})
	return nil
}

func (s session) end(jar CookieJar) {
	jar.ClearCookie(s.cookieName)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// internal wraps err as common.ErrorInternal unless it already carries a kind.
func internal(op string, err error) error {
	for _, kind := range []error{
		common.ErrorNotFound, common.ErrorUnauthenticated, common.ErrorForbidden,
		common.ErrorConflict, common.ErrorInvalidInput, common.ErrorInvalidOrExpiredToken,
		common.ErrorInternal,
	} {
		if errors.Is(err, kind) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrorInternal, err)
}
