// Package studyplanaccess собирает и запускает HTTP-приложение движка доступа.
package studyplanaccess

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/studyplan-access/internal/cache"
	"github.com/magabrotheeeer/studyplan-access/internal/config"
	"github.com/magabrotheeeer/studyplan-access/internal/lib/jwt"
	"github.com/magabrotheeeer/studyplan-access/internal/migrations"
	"github.com/magabrotheeeer/studyplan-access/internal/policy"
	accessservice "github.com/magabrotheeeer/studyplan-access/internal/services/access"
	activationservice "github.com/magabrotheeeer/studyplan-access/internal/services/activation"
	reconcilerservice "github.com/magabrotheeeer/studyplan-access/internal/services/reconciler"
	trialservice "github.com/magabrotheeeer/studyplan-access/internal/services/trial"
	"github.com/magabrotheeeer/studyplan-access/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	policyLoader := policy.NewLoader(db, cacheRedis, logger)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	accessService := accessservice.New(db, db, policyLoader, logger)
	activationService := activationservice.New(db, db, policyLoader, logger)
	trialService := trialservice.New(db, policyLoader, logger)
	reconcilerService := reconcilerservice.New(db, policyLoader, nil, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, jwtMaker, db, policyLoader,
		accessService, activationService, trialService, reconcilerService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
