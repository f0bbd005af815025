// Package status реализует HTTP-обработчик для получения производного статуса подписки пользователя.
//
// Handler извлекает идентификатор пользователя из контекста, вызывает бизнес-логику
// вычисления статуса и возвращает его в JSON-формате.
package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/studyplan-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/studyplan-access/internal/http/response"
	"github.com/magabrotheeeer/studyplan-access/internal/lib/sl"
	"github.com/magabrotheeeer/studyplan-access/internal/models"
)

// Handler обрабатывает запросы на получение статуса подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики вычисления статуса подписки.
type Service interface {
	DeriveStatus(ctx context.Context, userUID string) (*models.DerivedStatus, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить статус подписки
// @Description Возвращает производный статус подписки текущего пользователя: этап жизненного цикла, окна и лимиты.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} map[string]any "Производный статус подписки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при вычислении статуса"
// @Security BearerAuth
// @Router /subscriptions/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.status"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("useruid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	status, err := h.service.DeriveStatus(r.Context(), userUID)
	if err != nil {
		log.Error("failed to derive subscription status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not derive subscription status"))
		return
	}

	log.Info("success to derive subscription status",
		slog.String("user_uid", userUID),
		slog.String("state", string(status.State)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription": status,
	}))
}
