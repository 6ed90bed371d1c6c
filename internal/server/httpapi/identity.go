package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/services"
)

const identityKey = "identity"

// identity decodes the session cookie. A missing or invalid token leaves the
// request anonymous; handlers decide whether that is acceptable.
func (s *Server) identity(c *fiber.Ctx) error {
	id := models.Anonymous
	if token := c.Cookies(s.cookieName); token != "" {
		userID, err := s.tokens.Verify(token)
		if err != nil {
			s.logger.Debug(c.UserContext(), "ignoring session token", "error", err.Error())
		} else {
			id = models.Identity{UserID: userID}
		}
	}
	c.Locals(identityKey, id)
	return c.Next()
}

func identityFrom(c *fiber.Ctx) models.Identity {
	id, _ := c.Locals(identityKey).(models.Identity)
	return id
}

// cookieJar adapts a fiber request to services.CookieJar.
type cookieJar struct {
	c *fiber.Ctx
}

func (j cookieJar) SetCookie(name, value string, opts services.CookieOptions) {
	j.c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HTTPOnly: opts.HTTPOnly,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie expires the cookie with the attributes SetCookie used, so the
// browser matches and drops the same cookie.
func (j cookieJar) ClearCookie(name string) {
	j.c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
