package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/iamvkosarev/lunaris-ai/config"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	echo   *echo.Echo
	addr   string
	logger *slog.Logger
}

func NewServer(cfg config.HTTP, handler *Handler, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadHeaderTimeout = cfg.ReadHeaderTimeout

	e.Use(middleware.Recover())
	e.Use(
		middleware.RequestLoggerWithConfig(
			middleware.RequestLoggerConfig{
				LogMethod:  true,
				LogURI:     true,
				LogStatus:  true,
				LogLatency: true,
				LogError:   true,
				LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
					logger.Info(
						"request",
						"method", v.Method,
						"uri", v.URI,
						"status", v.Status,
						"latency", v.Latency,
						"error", v.Error,
					)
					return nil
				},
			},
		),
	)
	handler.RegisterRoutes(e)

	return &Server{
		echo:   e,
		addr:   cfg.Addr,
		logger: logger,
	}
}

// Run serves until ctx is done, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server started", "addr", s.addr)
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}
