// Package server wires the diary application together: configuration,
// logging, the database pool, object storage, services and the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dmitrijs2005/gophdiary/internal/dbx"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"github.com/dmitrijs2005/gophdiary/internal/server/config"
	"github.com/dmitrijs2005/gophdiary/internal/server/httpapi"
	"github.com/dmitrijs2005/gophdiary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdiary/internal/server/services"
	"github.com/dmitrijs2005/gophdiary/internal/server/storage"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	logCloser io.Closer
	db        *sql.DB
	media     *services.MediaTracker
	http      *httpapi.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, closer, err := logging.New(logging.Options{
		Level:      c.LogLevel,
		File:       c.LogFile,
		MaxSizeMB:  20,
		MaxBackups: 5,
		MaxAgeDays: 30,
	})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	if _, err := c.LoadLocation(); err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("config error: %w", err)
	}

	if !strings.EqualFold(c.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := dbx.OpenPool(ctx, repomanager.DriverName, c.DatabaseDSN, c.Pool())
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		_ = closer.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := storage.NewS3Store(ctx, storage.S3Config{
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Region:       c.S3Region,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
		PublicURL:    c.S3PublicURL,
	})
	if err != nil {
		_ = db.Close()
		_ = closer.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	media := services.NewMediaTracker(store, c.S3Bucket, []string{c.S3PublicURL, c.S3BaseEndpoint}, c.MediaQueueSize, logger)

	svc := httpapi.Services{
		Users:   services.NewUserService(db, rm, c),
		Diaries: services.NewDiaryService(db, rm, media, logger),
		Stats:   services.NewStatsService(db, rm, c),
		Uploads: services.NewUploadService(store, c),
		DB:      db,
	}

	return &App{
		config:    c,
		logger:    logger,
		logCloser: closer,
		db:        db,
		media:     media,
		http:      httpapi.NewHTTPServer(c.EndpointAddrHTTP, logger, svc, c.MaxUploadBytes),
	}, nil
}

// Run serves until SIGINT/SIGTERM/SIGQUIT or until a component fails. The
// media worker drains its queue before Run returns.
func (app *App) Run(ctx context.Context) error {

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	defer app.close()

	app.logger.Info(ctx, "Starting app...", "address", app.config.EndpointAddrHTTP)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.http.Run(gctx)
	})

	g.Go(func() error {
		return app.media.Run(gctx)
	})

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "app stopped with error", "error", err)
	} else {
		app.logger.Info(ctx, "app stopped")
	}
	return err
}

func (app *App) close() {
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
	_ = app.logCloser.Close()
}
