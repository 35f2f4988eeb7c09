package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/clubbrunch/brunch/internal/auth"
	"github.com/clubbrunch/brunch/internal/config"
	"github.com/clubbrunch/brunch/internal/database"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

// Application wires configuration, database, router, background jobs and server lifecycle.
type Application struct {
	cfg    config.Application
	db     *pgxpool.Pool
	deps   *Dependencies
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context, cfg config.Application) (*Application, error) {
	credentials, err := auth.LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(cfg.Database); err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	deps, err := BuildDependencies(db, cfg, credentials)
	if err != nil {
		db.Close()
		return nil, err
	}

	if _, err := deps.ItemService.SeedFromFile(ctx, cfg.Items.File); err != nil {
		db.Close()
		return nil, err
	}

	r := mux.NewRouter()
	SetupMiddleware(r, cfg)
	RegisterRoutes(r, deps, NewHealthHandler(db), cfg)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, db: db, deps: deps, router: r, srv: srv}, nil
}

// Run starts the reset job and the HTTP server and blocks until ctx is cancelled or the
// server fails. Both are shut down before Run returns.
func (a *Application) Run(ctx context.Context) error {
	defer a.db.Close()

	if a.deps.PagerNotifier != nil {
		defer a.deps.PagerNotifier.Wait()
		unsubscribe := a.deps.PagerNotifier.Subscribe(a.deps.EventBus)
		defer unsubscribe()
		log.Info("Pager notifications enabled")
	}

	if err := a.deps.ResetJob.Start(); err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case err := <-serverErr:
		runErr = fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown failed: %v", err)
	}
	if err := a.deps.ResetJob.Stop(shutdownCtx); err != nil {
		log.Errorf("reset job did not stop: %v", err)
	}
	return runErr
}
