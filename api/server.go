package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/localsearch/config"
	"github.com/meghashyamc/localsearch/db/kvdb"
	"github.com/meghashyamc/localsearch/db/searchdb"
	"github.com/meghashyamc/localsearch/logger"
	"github.com/meghashyamc/localsearch/services/catalog"
	"github.com/meghashyamc/localsearch/services/controller"
	"github.com/meghashyamc/localsearch/services/search"
	"github.com/meghashyamc/localsearch/services/session"
	"github.com/meghashyamc/localsearch/ui"
	"github.com/meghashyamc/localsearch/validation"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	router     *gin.Engine
	httpServer *http.Server
	validator  *validation.Validator
	logger     logger.Logger
	closers    []io.Closer
}

// Run serves the search front end until ctx is done or the process is interrupted.
func Run(ctx context.Context, cfg *config.Config, logger logger.Logger) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	s, err := newFrontendServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	s.setupHTTPServer(cfg.GetPort())

	return s.serve(ctx)
}

// RunBackend loads the catalog and serves it over GET /search until ctx is done or the process
// is interrupted.
func RunBackend(ctx context.Context, cfg *config.Config, logger logger.Logger) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	s, err := newBackendServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	s.setupHTTPServer(cfg.GetBackendPort())

	return s.serve(ctx)
}

func newFrontendServer(ctx context.Context, cfg *config.Config, logger logger.Logger) (*server, error) {
	s := &server{logger: logger}
	if err := s.setupValidator(); err != nil {
		return nil, err
	}

	settings := cfg.ClientSettings()
	if err := s.validator.Validate(settings); err != nil {
		s.logger.Error("invalid client settings", "err", err.Error())
		return nil, err
	}

	client, err := search.New(s.logger, settings.BaseURL, settings.Timeout)
	if err != nil {
		s.logger.Error("error creating search client", "err", err.Error())
		return nil, err
	}

	renderer, err := ui.NewRenderer()
	if err != nil {
		s.logger.Error("error parsing templates", "err", err.Error())
		return nil, err
	}

	sessions := session.New(ctx, s.logger, func(ctx context.Context) *controller.Controller {
		return controller.New(ctx, s.logger, client)
	}, cfg.GetSessionIdleTimeout())
	s.closers = append(s.closers, closerFunc(sessions.Close))

	router := newRouter()
	router.Use(loggingMiddleware(s.logger))
	if err := setupRoutes(router, s.logger, sessions, renderer); err != nil {
		s.logger.Error("error setting up routes", "err", err.Error())
		s.close()
		return nil, err
	}
	s.router = router

	return s, nil
}

func newBackendServer(ctx context.Context, cfg *config.Config, logger logger.Logger) (*server, error) {
	s := &server{logger: logger}
	if err := s.setupValidator(); err != nil {
		return nil, err
	}

	settings := cfg.CatalogSettings()
	if err := s.validator.Validate(settings); err != nil {
		s.logger.Error("invalid catalog settings", "err", err.Error())
		return nil, err
	}

	kvDB, err := kvdb.New(s.logger, cfg.GetKVDBPath())
	if err != nil {
		s.logger.Error("error creating kvDB", "err", err.Error())
		return nil, err
	}
	s.closers = append(s.closers, kvDB)

	searchDB, err := searchdb.New(s.logger, cfg.GetIndexPath())
	if err != nil {
		s.logger.Error("error creating searchDB", "err", err.Error())
		s.close()
		return nil, err
	}
	s.closers = append(s.closers, searchDB)

	catalogService := catalog.New(s.logger, searchDB, kvDB)
	if _, err := catalogService.Load(ctx, settings.Path); err != nil {
		s.close()
		return nil, err
	}

	router := newRouter()
	router.Use(loggingMiddleware(s.logger))
	router.Use(corsMiddleware(cfg.GetAllowedOrigin()))
	setupBackendRoutes(router, s.logger, catalogService, s.validator, settings.MaxResults)
	s.router = router

	return s, nil
}

func (s *server) setupValidator() error {
	var err error
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		return err
	}
	return nil
}

func (s *server) setupHTTPServer(port string) {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           s.router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *server) serve(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		s.close()
		if ok {
			s.logger.Error("http server failed", "err", err.Error())
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("starting to shut down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.close()
	if err != nil {
		s.logger.Error("error shutting down http server", "err", err.Error())
		return err
	}
	s.logger.Info("shut down http server successfully")

	return nil
}

// close releases dependencies in reverse order of creation.
func (s *server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			s.logger.Warn("error closing dependency", "err", err.Error())
		}
	}
	s.closers = nil
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
