// Package trialstart реализует HTTP-обработчик для выдачи пробного периода пользователю.
//
// Handler извлекает идентификатор пользователя из контекста, вызывает бизнес-логику
// выдачи пробного периода и возвращает созданную запись подписки в JSON-формате.
package trialstart

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/studyplan-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/studyplan-access/internal/http/response"
	"github.com/magabrotheeeer/studyplan-access/internal/lib/sl"
	"github.com/magabrotheeeer/studyplan-access/internal/models"
	"github.com/magabrotheeeer/studyplan-access/internal/services/trial"
)

// Handler управляет HTTP-запросами на выдачу пробного периода.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выдачи пробного периода.
type Service interface {
	Grant(ctx context.Context, userUID string) (*models.SubscriptionRecord, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Начать пробный период
// @Description Выдает пробный период текущему пользователю, если он ещё не использовал подписку.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} map[string]any "Созданная запись пробного периода"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Пробный период недоступен"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при выдаче пробного периода"
// @Security BearerAuth
// @Router /subscriptions/trial [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.trialstart"
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

	rec, err := h.service.Grant(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, trial.ErrTrialDisabled) || errors.Is(err, trial.ErrTrialNotAvailable) {
			log.Error("trial not available", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("trial not available"))
			return
		}
		log.Error("failed to grant trial", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not grant trial"))
		return
	}

	log.Info("success to grant trial",
		slog.String("user_uid", userUID),
		slog.Int("subscription_id", rec.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription": rec,
	}))
}
