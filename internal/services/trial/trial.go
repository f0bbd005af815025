// Package trial содержит бизнес-логику выдачи пробного периода
// при онбординге нового пользователя.
package trial

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/studyplan-access/internal/models"
)

var (
	// ErrTrialDisabled возвращается, когда выдача пробных периодов
	// выключена политикой.
	ErrTrialDisabled = errors.New("trial is disabled by policy")
	// ErrTrialNotAvailable возвращается, когда у пользователя уже есть
	// какая-либо запись подписки: пробный период выдаётся один раз.
	ErrTrialNotAvailable = errors.New("trial not available")
)

// SubscriptionRepository определяет методы для работы с записями подписок.
type SubscriptionRepository interface {
	FindCurrentSubscription(ctx context.Context, userUID string) (*models.SubscriptionRecord, error)
	CreateSubscription(ctx context.Context, rec models.SubscriptionRecord) (int, error)
}

// PolicyProvider загружает актуальный снимок политики доступа.
type PolicyProvider interface {
	Load(ctx context.Context) (models.PolicyConfig, error)
}

// Service реализует выдачу пробного периода. Запись создаётся без плана
// и без даты окончания: границей служит только trial_end.
type Service struct {
	subs   SubscriptionRepository
	policy PolicyProvider
	log    *slog.Logger
	now    func() time.Time
}

// New создает новый Service.
func New(subs SubscriptionRepository, policy PolicyProvider, log *slog.Logger) *Service {
	return &Service{
		subs:   subs,
		policy: policy,
		log:    log,
		now:    time.Now,
	}
}

// Grant выдаёт пользователю пробный период длиной policy.TrialDays.
func (s *Service) Grant(ctx context.Context, userUID string) (*models.SubscriptionRecord, error) {
	const op = "trial.Grant"

	policy, err := s.policy.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !policy.TrialEnabled {
		return nil, ErrTrialDisabled
	}

	existing, err := s.subs.FindCurrentSubscription(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		return nil, ErrTrialNotAvailable
	}

	now := s.now()
	trialEnd := now.AddDate(0, 0, policy.TrialDays)
	rec := models.SubscriptionRecord{
		UserUID:   userUID,
		Status:    models.StatusTrial,
		StartDate: now,
		TrialEnd:  &trialEnd,
		CreatedAt: now,
	}

	id, err := s.subs.CreateSubscription(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rec.ID = id

	s.log.Info("granted trial",
		slog.String("user_uid", userUID),
		slog.Int("subscription_id", id),
		slog.Time("trial_end", trialEnd))

	return &rec, nil
}
