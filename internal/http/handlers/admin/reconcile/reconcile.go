// Package reconcile реализует административный HTTP-обработчик для ручного запуска
// сверки жизненного цикла подписок.
package reconcile

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/studyplan-access/internal/http/response"
	"github.com/magabrotheeeer/studyplan-access/internal/lib/sl"
)

// Handler обрабатывает запросы на ручной запуск сверки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики сверки жизненного цикла.
type Service interface {
	ReconcileAll(ctx context.Context) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Запустить сверку жизненного цикла
// @Description Переводит просроченные записи подписок в состояние expired и фиксирует льготные периоды. Доступно только администраторам.
// @Tags Admin
// @Produce  json
// @Success 200 {object} map[string]any "Количество переведённых записей"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при сверке"
// @Security BearerAuth
// @Router /admin/reconcile [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.reconcile"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	count, err := h.service.ReconcileAll(r.Context())
	if err != nil {
		log.Error("failed to reconcile subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not reconcile subscriptions"))
		return
	}

	log.Info("success to reconcile subscriptions", slog.Int("transitioned", count))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"transitioned": count,
	}))
}
