// Package httpapi exposes the account and session operations over HTTP. All
// routes live under /api/auth; protected routes take a Bearer access token.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mpetrenko/accountd/internal/logging"
	"github.com/mpetrenko/accountd/internal/server/services"
)

type Server struct {
	address  string
	accounts *services.AccountService
	tokens   *services.TokenService
	avatars  *services.AvatarService
	logger   logging.Logger
	echo     *echo.Echo
}

func NewServer(address string, l logging.Logger, accounts *services.AccountService, tokens *services.TokenService, avatars *services.AvatarService) *Server {
	s := &Server{
		address:  address,
		accounts: accounts,
		tokens:   tokens,
		avatars:  avatars,
		logger:   l.With("module", "http_server"),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	g := e.Group("/api/auth")
	g.POST("/register", s.handleRegister)
	g.POST("/login", s.handleLogin)
	g.POST("/refresh", s.handleRefresh)

	g.POST("/logout", s.handleLogout, s.requireAuth)
	g.GET("/me", s.handleMe, s.requireAuth)
	g.GET("/profile", s.handleGetProfile, s.requireAuth)
	g.PATCH("/profile", s.handleUpdateProfile, s.requireAuth)
	g.POST("/change-password", s.handleChangePassword, s.requireAuth)
	g.GET("/login-records", s.handleLoginRecords, s.requireAuth)
	g.GET("/dashboard", s.handleDashboard, s.requireAuth)
	g.POST("/deactivate", s.handleDeactivate, s.requireAuth)
	g.POST("/profile/avatar-url", s.handleAvatarUploadURL, s.requireAuth)
	g.GET("/profile/avatar-url", s.handleAvatarDownloadURL, s.requireAuth)

	s.echo = e
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
