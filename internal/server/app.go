// Package server wires the shopkeeper components together: database and
// migrations, token and password primitives, mail and object storage, the
// domain services and the HTTP server. It also handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/auth"
	"github.com/dmitrijs2005/shopkeeper/internal/server/config"
	"github.com/dmitrijs2005/shopkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/shopkeeper/internal/server/notify"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/shopkeeper/internal/server/services"
	"github.com/dmitrijs2005/shopkeeper/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *httpapi.Server
}

// seams for tests
var (
	openDB         = repomanager.Open
	newRepoManager = repomanager.NewPostgresRepositoryManager
)

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.New(c.Env, os.Stdout)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := build(ctx, c, logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB) (*App, error) {
	rm, err := newRepoManager(db)
	if err != nil {
		return nil, fmt.Errorf("repository manager init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	tokens, err := auth.NewTokenService([]byte(c.SecretKey), c.SessionTTL)
	if err != nil {
		return nil, err
	}
	hasher := auth.NewHasher(c.BcryptCost)

	notifier, err := newNotifier(c, logger)
	if err != nil {
		return nil, err
	}

	presigner, err := storage.NewS3Presigner(ctx, storage.S3Config{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, err
	}

	svc := httpapi.Services{
		Sessions: services.NewSessionService(db, rm, c, tokens, hasher, logger),
		Resets:   services.NewResetService(db, rm, c, tokens, hasher, notifier, logger),
		Users:    services.NewUserService(db, rm, logger),
		Items:    services.NewItemService(db, rm, presigner, logger),
		Cart:     services.NewCartService(db, rm, logger),
	}
	srv := httpapi.NewServer(c.EndpointAddrHTTP, logger, tokens, c.SessionCookieName, svc)

	return &App{config: c, logger: logger, db: db, http: srv}, nil
}

// newNotifier sends real mail when an SMTP host is configured and only logs
// the message otherwise.
func newNotifier(c *config.Config, logger logging.Logger) (services.Notifier, error) {
	if c.MailHost == "" {
		return notify.NewLogNotifier(logger), nil
	}
	n, err := notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     c.MailHost,
		Port:     c.MailPort,
		Username: c.MailUser,
		Password: c.MailPassword,
		From:     c.MailFrom,
	})
	if err != nil {
		return nil, fmt.Errorf("mail init error: %w", err)
	}
	return n, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until the parent context is cancelled or a termination signal
// arrives, then closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
	app.logger.Info(ctx, "App stopped")
}
