// Package activation содержит бизнес-логику активации тарифного плана
// после успешной оплаты или ручного одобрения.
package activation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/studyplan-access/internal/models"
)

// ErrPlanNotFound возвращается, когда план не существует или снят с продажи.
// Вызывающий код обязан отклонить покупку до списания денег.
var ErrPlanNotFound = errors.New("plan not found")

// SubscriptionRepository определяет методы для записи подписок.
type SubscriptionRepository interface {
	// SupersedeAndCreate атомарно вытесняет действующие записи пользователя
	// и создаёт новую, возвращая её ID.
	SupersedeAndCreate(ctx context.Context, rec models.SubscriptionRecord) (int, error)
}

// PlanRepository определяет методы для чтения каталога планов.
type PlanRepository interface {
	FindActivePlanByID(ctx context.Context, id int) (*models.Plan, error)
}

// PolicyProvider загружает актуальный снимок политики доступа.
type PolicyProvider interface {
	Load(ctx context.Context) (models.PolicyConfig, error)
}

// Service реализует активацию плана: прежние записи trial/active помечаются
// cancelled (никогда не удаляются), создаётся новая active-запись с датой
// окончания и сразу замороженной границей льготного периода.
type Service struct {
	subs   SubscriptionRepository
	plans  PlanRepository
	policy PolicyProvider
	log    *slog.Logger
	now    func() time.Time
}

// New создает новый Service.
func New(subs SubscriptionRepository, plans PlanRepository, policy PolicyProvider, log *slog.Logger) *Service {
	return &Service{
		subs:   subs,
		plans:  plans,
		policy: policy,
		log:    log,
		now:    time.Now,
	}
}

// Activate создаёт новую действующую запись подписки для пользователя.
// Граница льготного периода фиксируется в момент создания по текущей политике,
// позднейшие правки длины льготного периода её не изменят.
func (s *Service) Activate(ctx context.Context, userUID string, planID int) (*models.SubscriptionRecord, error) {
	const op = "activation.Activate"

	plan, err := s.plans.FindActivePlanByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	policy, err := s.policy.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	endDate := now.AddDate(0, 0, plan.DurationDays)
	graceEnd := endDate.AddDate(0, 0, policy.GracePeriodDays)

	rec := models.SubscriptionRecord{
		UserUID:        userUID,
		PlanID:         &plan.ID,
		Status:         models.StatusActive,
		StartDate:      now,
		EndDate:        &endDate,
		GracePeriodEnd: &graceEnd,
		CreatedAt:      now,
	}

	id, err := s.subs.SupersedeAndCreate(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rec.ID = id

	s.log.Info("activated plan",
		slog.String("user_uid", userUID),
		slog.Int("plan_id", plan.ID),
		slog.Int("subscription_id", id))

	return &rec, nil
}
