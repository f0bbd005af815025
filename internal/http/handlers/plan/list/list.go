// Package list реализует HTTP-обработчик для получения каталога активных тарифных планов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/studyplan-access/internal/http/response"
	"github.com/magabrotheeeer/studyplan-access/internal/lib/sl"
	"github.com/magabrotheeeer/studyplan-access/internal/models"
)

// Handler обрабатывает запросы на получение каталога тарифных планов.
type Handler struct {
	log     *slog.Logger
	storage Storage
}

// Storage описывает интерфейс чтения каталога планов.
type Storage interface {
	ListActivePlans(ctx context.Context) ([]*models.Plan, error)
}

// New создает новый Handler с переданными логгером и хранилищем.
func New(log *slog.Logger, storage Storage) *Handler {
	return &Handler{
		log:     log,
		storage: storage,
	}
}

// ServeHTTP godoc
// @Summary Получить каталог тарифных планов
// @Description Возвращает список активных тарифных планов, отсортированных по цене.
// @Tags Plans
// @Produce  json
// @Success 200 {object} map[string]any "Список тарифных планов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении каталога"
// @Security BearerAuth
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans, err := h.storage.ListActivePlans(r.Context())
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list plans"))
		return
	}

	summaries := make([]*models.PlanSummary, 0, len(plans))
	for _, p := range plans {
		summaries = append(summaries, p.Summary())
	}

	log.Info("success to list plans", slog.Int("count", len(summaries)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plans": summaries,
	}))
}
