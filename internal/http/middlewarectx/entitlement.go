package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/studyplan-access/internal/http/response"
	"github.com/magabrotheeeer/studyplan-access/internal/lib/sl"
	"github.com/magabrotheeeer/studyplan-access/internal/models"
)

// AccessServiceInterface определяет интерфейс для проверки доступа пользователя к функции.
type AccessServiceInterface interface {
	EvaluateAccess(ctx context.Context, userUID, feature string) (*models.AccessResult, error)
}

// EntitlementMiddleware создает middleware для проверки доступа пользователя к указанной функции.
// Запрос пропускается дальше только если доступ разрешён, иначе возвращается 403
// с причиной отказа.
func EntitlementMiddleware(log *slog.Logger, accessService AccessServiceInterface, feature string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userUID, ok := r.Context().Value(UserUID).(string)
			if !ok || userUID == "" {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			result, err := accessService.EvaluateAccess(r.Context(), userUID, feature)
			if err != nil {
				log.Error("failed to evaluate access", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			if !result.HasAccess {
				log.Info("access denied", slog.String("user_uid", userUID),
					slog.String("reason", string(result.Reason)))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("access denied: "+string(result.Reason)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
