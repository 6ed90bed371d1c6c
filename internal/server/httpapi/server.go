// Package httpapi exposes the shop services over HTTP with fiber. The session
// travels in an HTTP-only cookie; every request is resolved to an explicit
// models.Identity before it reaches a handler.
package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type SessionService interface {
	Signup(ctx context.Context, jar services.CookieJar, in services.SignupInput) (*models.User, error)
	Signin(ctx context.Context, jar services.CookieJar, email, password string) (*models.User, error)
	Signout(jar services.CookieJar) string
}

type ResetService interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, jar services.CookieJar, in services.ResetInput) (*models.User, error)
}

type UserService interface {
	Me(ctx context.Context, id models.Identity) (*models.User, error)
	Users(ctx context.Context, id models.Identity) ([]*models.User, error)
	UpdatePermissions(ctx context.Context, id models.Identity, userID string, labels []string) (*models.User, error)
}

type ItemService interface {
	CreateItem(ctx context.Context, id models.Identity, in services.ItemInput) (*models.Item, error)
	Item(ctx context.Context, itemID string) (*models.Item, error)
	Items(ctx context.Context, limit, offset int) ([]*models.Item, error)
	ItemsCount(ctx context.Context) (int, error)
	UpdateItem(ctx context.Context, id models.Identity, itemID string, upd models.ItemUpdate) (*models.Item, error)
	DeleteItem(ctx context.Context, id models.Identity, itemID string) (*models.Item, error)
	ImageUploadURL(ctx context.Context, id models.Identity) (*services.ImageUpload, error)
}

type CartService interface {
	AddToCart(ctx context.Context, id models.Identity, itemID string) (*models.CartItem, error)
	RemoveFromCart(ctx context.Context, id models.Identity, cartItemID string) (*models.CartItem, error)
	Cart(ctx context.Context, id models.Identity) ([]*models.CartItem, error)
}

// TokenVerifier resolves a session token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Services groups the handlers' collaborators.
type Services struct {
	Sessions SessionService
	Resets   ResetService
	Users    UserService
	Items    ItemService
	Cart     CartService
}

type Server struct {
	address    string
	app        *fiber.App
	logger     logging.Logger
	tokens     TokenVerifier
	cookieName string
	svc        Services
}

// NewServer builds the fiber app and registers all routes.
func NewServer(address string, l logging.Logger, tokens TokenVerifier, cookieName string, svc Services) *Server {
	if cookieName == "" {
		cookieName = common.SessionCookieName
	}
	s := &Server{
		address:    address,
		logger:     l.With("module", "http_server"),
		tokens:     tokens,
		cookieName: cookieName,
		svc:        svc,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "shopkeeper",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(s.accessLog)
	s.app.Use(s.identity)
	s.routes()

	return s
}

func (s *Server) routes() {
	s.app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	api := s.app.Group("/api")

	api.Post("/signup", s.signup)
	api.Post("/signin", s.signin)
	api.Post("/signout", s.signout)
	api.Post("/password/reset-request", s.requestReset)
	api.Post("/password/reset", s.resetPassword)

	api.Get("/me", s.me)
	api.Get("/users", s.users)
	api.Put("/users/:id/permissions", s.updatePermissions)

	api.Get("/items", s.items)
	api.Post("/items", s.createItem)
	api.Post("/items/image-upload", s.imageUpload)
	api.Get("/items/:id", s.item)
	api.Patch("/items/:id", s.updateItem)
	api.Delete("/items/:id", s.deleteItem)

	api.Get("/cart", s.cart)
	api.Post("/cart/:itemId", s.addToCart)
	api.Delete("/cart/:cartItemId", s.removeFromCart)
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.address)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	case err := <-errCh:
		return err
	}
}

func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start).String(),
	)
	return err
}
