package trialstart

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/studyplan-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/studyplan-access/internal/models"
	"github.com/magabrotheeeer/studyplan-access/internal/services/trial"
)

// MockService реализует интерфейс trialstart.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Grant(ctx context.Context, userUID string) (*models.SubscriptionRecord, error) {
	args := m.Called(ctx, userUID)
	if res := args.Get(0); res != nil {
		return res.(*models.SubscriptionRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestTrialStartHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешная выдача пробного периода",
			userUID: "user-123",
			setupMock: func(m *MockService) {
				m.On("Grant", mock.Anything, "user-123").
					Return(&models.SubscriptionRecord{
						ID:      7,
						UserUID: "user-123",
						Status:  models.StatusTrial,
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"Status":"trial"`,
		},
		{
			name:           "пользователь не авторизован",
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:    "пробный период отключён политикой",
			userUID: "user-123",
			setupMock: func(m *MockService) {
				m.On("Grant", mock.Anything, "user-123").
					Return(nil, trial.ErrTrialDisabled)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"trial not available"}`,
		},
		{
			name:    "у пользователя уже была подписка",
			userUID: "user-123",
			setupMock: func(m *MockService) {
				m.On("Grant", mock.Anything, "user-123").
					Return(nil, trial.ErrTrialNotAvailable)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"trial not available"}`,
		},
		{
			name:    "ошибка сервиса",
			userUID: "user-123",
			setupMock: func(m *MockService) {
				m.On("Grant", mock.Anything, "user-123").
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not grant trial"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/subscriptions/trial", nil)
			if tt.userUID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID))
			}

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
