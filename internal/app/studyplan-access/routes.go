// Package studyplanaccess предоставляет маршруты для основного приложения.
package studyplanaccess

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/studyplan-access/internal/http/handlers/access/check"
	"github.com/magabrotheeeer/studyplan-access/internal/http/handlers/admin/policyinvalidate"
	"github.com/magabrotheeeer/studyplan-access/internal/http/handlers/admin/reconcile"
	"github.com/magabrotheeeer/studyplan-access/internal/http/handlers/health"
	planlist "github.com/magabrotheeeer/studyplan-access/internal/http/handlers/plan/list"
	"github.com/magabrotheeeer/studyplan-access/internal/http/handlers/subscription/activate"
	"github.com/magabrotheeeer/studyplan-access/internal/http/handlers/subscription/status"
	"github.com/magabrotheeeer/studyplan-access/internal/http/handlers/subscription/trialstart"
	"github.com/magabrotheeeer/studyplan-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/studyplan-access/internal/lib/jwt"
	"github.com/magabrotheeeer/studyplan-access/internal/policy"
	accessservice "github.com/magabrotheeeer/studyplan-access/internal/services/access"
	activationservice "github.com/magabrotheeeer/studyplan-access/internal/services/activation"
	reconcilerservice "github.com/magabrotheeeer/studyplan-access/internal/services/reconciler"
	trialservice "github.com/magabrotheeeer/studyplan-access/internal/services/trial"
	"github.com/magabrotheeeer/studyplan-access/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker,
	db *repository.Storage, policyLoader *policy.Loader,
	accessService *accessservice.Service, activationService *activationservice.Service,
	trialService *trialservice.Service, reconcilerService *reconcilerservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/plans", planlist.New(logger, db).ServeHTTP)
			r.Get("/access", check.New(logger, accessService).ServeHTTP)
			r.Get("/subscriptions/status", status.New(logger, accessService).ServeHTTP)
			r.Post("/subscriptions/activate", activate.New(logger, activationService).ServeHTTP)
			r.Post("/subscriptions/trial", trialstart.New(logger, trialService).ServeHTTP)
		})

		// Административная группа
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.AdminOnlyMiddleware(logger))
			r.Post("/admin/reconcile", reconcile.New(logger, reconcilerService).ServeHTTP)
			r.Post("/admin/policy/invalidate", policyinvalidate.New(logger, policyLoader).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
