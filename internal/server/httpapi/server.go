// Package httpapi exposes the diary services over HTTP/JSON. Every response
// uses the {code, message, data} envelope.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"github.com/dmitrijs2005/gophdiary/internal/server/models"
	"github.com/dmitrijs2005/gophdiary/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, username, password string) (*services.AuthResult, error)
	ValidateToken(token string) (*models.Identity, error)
	GetProfile(ctx context.Context, ownerID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, ownerID string, patch models.ProfilePatch) (*models.Profile, error)
	ChangePassword(ctx context.Context, ownerID, oldPassword, newPassword string) error
}

type DiaryService interface {
	Save(ctx context.Context, ownerID string, in services.SaveInput) (*models.DiaryEntry, error)
	Get(ctx context.Context, ownerID, date string) (*models.DiaryEntry, error)
	List(ctx context.Context, ownerID string, filter *services.MonthFilter) ([]*models.DiaryEntry, error)
	Search(ctx context.Context, ownerID, keyword string) ([]*models.DiaryEntry, error)
	Delete(ctx context.Context, ownerID, date string) error
}

type StatsService interface {
	Stats(ctx context.Context, ownerID string) (*models.Stats, error)
}

type UploadService interface {
	Upload(ctx context.Context, ownerID string, in services.FileInput) (*models.UploadedFile, error)
	UploadMany(ctx context.Context, ownerID string, files []services.FileInput) ([]*models.UploadedFile, error)
}

// Pinger reports database reachability for /health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services groups the collaborators behind the routes.
type Services struct {
	Users   AuthService
	Diaries DiaryService
	Stats   StatsService
	Uploads UploadService
	DB      Pinger
}

type HTTPServer struct {
	address        string
	logger         logging.Logger
	services       Services
	maxUploadBytes int64
}

func NewHTTPServer(a string, l logging.Logger, svc Services, maxUploadBytes int64) *HTTPServer {
	return &HTTPServer{
		address:        a,
		logger:         l.With("module", "http_server"),
		services:       svc,
		maxUploadBytes: maxUploadBytes,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-stopped
	return nil
}
