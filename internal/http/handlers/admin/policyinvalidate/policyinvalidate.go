// Package policyinvalidate реализует административный HTTP-обработчик для сброса
// кэша конфигурации политики доступа.
package policyinvalidate

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/studyplan-access/internal/http/response"
	"github.com/magabrotheeeer/studyplan-access/internal/lib/sl"
)

// Handler обрабатывает запросы на сброс кэша политики.
type Handler struct {
	log    *slog.Logger
	loader Loader
}

// Loader описывает интерфейс сброса кэшированной политики.
type Loader interface {
	Invalidate() error
}

// New создает новый Handler с переданными логгером и загрузчиком политики.
func New(log *slog.Logger, loader Loader) *Handler {
	return &Handler{
		log:    log,
		loader: loader,
	}
}

// ServeHTTP godoc
// @Summary Сбросить кэш политики
// @Description Удаляет кэшированную конфигурацию политики, чтобы следующие запросы прочитали свежие значения из хранилища. Доступно только администраторам.
// @Tags Admin
// @Produce  json
// @Success 200 {object} map[string]any "Кэш сброшен"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при сбросе кэша"
// @Security BearerAuth
// @Router /admin/policy/invalidate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.policyinvalidate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.loader.Invalidate(); err != nil {
		log.Error("failed to invalidate policy cache", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not invalidate policy cache"))
		return
	}

	log.Info("policy cache invalidated")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"invalidated": true,
	}))
}
