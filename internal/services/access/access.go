// Package access содержит бизнес-логику оценки доступа: единая точка входа,
// которой пользуются HTTP-обработчики и middleware, чтобы узнать, разрешена
// ли пользователю защищённая операция прямо сейчас.
package access

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/studyplan-access/internal/entitlement"
	"github.com/magabrotheeeer/studyplan-access/internal/lib/sl"
	"github.com/magabrotheeeer/studyplan-access/internal/models"
)

var accessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "studyplan_access_decisions_total",
	Help: "Access gate decisions grouped by reason.",
}, []string{"reason"})

// SubscriptionRepository определяет методы для чтения записей подписок.
type SubscriptionRepository interface {
	// FindCurrentSubscription возвращает актуальную запись пользователя или nil.
	FindCurrentSubscription(ctx context.Context, userUID string) (*models.SubscriptionRecord, error)
}

// PlanRepository определяет методы для чтения каталога планов.
type PlanRepository interface {
	FindActivePlanByID(ctx context.Context, id int) (*models.Plan, error)
}

// PolicyProvider загружает актуальный снимок политики доступа.
type PolicyProvider interface {
	Load(ctx context.Context) (models.PolicyConfig, error)
}

// Service реализует оценку доступа поверх чистого ядра entitlement.
// Решение всегда пересчитывается из сырых дат записи и свежей политики,
// сохранённое поле status записи для решения не используется.
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

// EvaluateAccess возвращает решение о доступе пользователя к функции feature
// (пустая строка — общая проверка без лимита конкретной функции).
func (s *Service) EvaluateAccess(ctx context.Context, userUID, feature string) (*models.AccessResult, error) {
	st, policy, err := s.derive(ctx, userUID)
	if err != nil {
		return nil, err
	}

	res := entitlement.Check(*st, policy, feature)
	accessDecisions.WithLabelValues(string(res.Reason)).Inc()
	if !res.HasAccess {
		s.log.Info("access refused",
			slog.String("user_uid", userUID),
			slog.String("reason", string(res.Reason)))
	}
	return &res, nil
}

// DeriveStatus возвращает производный статус подписки пользователя
// без решения о доступе, для экранов состояния аккаунта.
func (s *Service) DeriveStatus(ctx context.Context, userUID string) (*models.DerivedStatus, error) {
	st, _, err := s.derive(ctx, userUID)
	return st, err
}

func (s *Service) derive(ctx context.Context, userUID string) (*models.DerivedStatus, models.PolicyConfig, error) {
	policy, err := s.policy.Load(ctx)
	if err != nil {
		return nil, models.PolicyConfig{}, err
	}

	rec, err := s.subs.FindCurrentSubscription(ctx, userUID)
	if err != nil {
		return nil, models.PolicyConfig{}, err
	}

	st := entitlement.Evaluate(rec, policy, s.now())

	if rec != nil && rec.PlanID != nil {
		plan, err := s.plans.FindActivePlanByID(ctx, *rec.PlanID)
		if err != nil {
			s.log.Warn("failed to load plan summary", sl.Err(err))
		} else if plan != nil {
			st.Plan = plan.Summary()
		}
	}

	return &st, policy, nil
}
