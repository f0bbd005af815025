// Package activate реализует HTTP-обработчик для активации платной подписки пользователя.
//
// Handler принимает JSON-запрос с идентификатором тарифного плана, валидирует его,
// извлекает идентификатор пользователя из контекста, вызывает бизнес-логику активации
// и возвращает созданную запись подписки в JSON-формате.
//
// В случае ошибок формируются соответствующие HTTP-ответы с описанием проблемы.
package activate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/studyplan-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/studyplan-access/internal/http/response"
	"github.com/magabrotheeeer/studyplan-access/internal/lib/sl"
	"github.com/magabrotheeeer/studyplan-access/internal/models"
	"github.com/magabrotheeeer/studyplan-access/internal/services/activation"
)

// Request описывает тело запроса на активацию подписки.
type Request struct {
	PlanID int `json:"plan_id" validate:"required,gt=0"`
}

// Handler управляет HTTP-запросами на активацию подписок.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики активации подписок
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики активации подписки.
type Service interface {
	Activate(ctx context.Context, userUID string, planID int) (*models.SubscriptionRecord, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Активировать подписку
// @Description Активирует подписку на указанный тарифный план для текущего пользователя. Предыдущие действующие записи отменяются.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body Request true "Идентификатор тарифного плана"
// @Success 200 {object} map[string]any "Созданная запись подписки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Тарифный план не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при активации подписки"
// @Security BearerAuth
// @Router /subscriptions/activate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.activate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("useruid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	rec, err := h.service.Activate(r.Context(), userUID, req.PlanID)
	if err != nil {
		if errors.Is(err, activation.ErrPlanNotFound) {
			log.Error("plan not found", slog.Int("plan_id", req.PlanID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("plan not found"))
			return
		}
		log.Error("failed to activate subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not activate subscription"))
		return
	}

	log.Info("success to activate subscription",
		slog.String("user_uid", userUID),
		slog.Int("subscription_id", rec.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription": rec,
	}))
}
