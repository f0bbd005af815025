// Package check реализует HTTP-обработчик для проверки доступа пользователя к функциям продукта.
//
// Handler извлекает идентификатор пользователя из контекста, опционально читает имя функции
// из query-параметра feature, вызывает бизнес-логику оценки доступа и возвращает решение в JSON-формате.
//
// В случае ошибок формирует соответствующие HTTP-ответы с описанием проблемы.
package check

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

// Handler обрабатывает запросы на проверку доступа к функции.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики оценки доступа
}

// Service описывает интерфейс бизнес-логики оценки доступа.
type Service interface {
	EvaluateAccess(ctx context.Context, userUID, feature string) (*models.AccessResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Проверить доступ к функции
// @Description Возвращает решение о доступе текущего пользователя к указанной функции.
// @Tags Access
// @Produce  json
// @Param feature query string false "Имя функции (timetable, notes, focus_sessions, private_lessons)"
// @Success 200 {object} map[string]any "Решение о доступе"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при оценке доступа"
// @Security BearerAuth
// @Router /access [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.check"
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

	feature := r.URL.Query().Get("feature")

	result, err := h.service.EvaluateAccess(r.Context(), userUID, feature)
	if err != nil {
		log.Error("failed to evaluate access", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not evaluate access"))
		return
	}

	log.Info("success to evaluate access",
		slog.String("user_uid", userUID),
		slog.String("reason", string(result.Reason)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"access": result,
	}))
}
