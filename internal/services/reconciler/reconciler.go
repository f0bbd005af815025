// Package reconciler приводит сохранённые статусы подписок в соответствие
// с тем, что вычислило бы чистое ядро «прямо сейчас». Сверка нужна только
// отчётным выборкам по полю status: запросный путь всегда пересчитывает
// доступ из сырых дат и остаётся корректным, даже если сверка давно не шла.
package reconciler

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/studyplan-access/internal/lib/sl"
	"github.com/magabrotheeeer/studyplan-access/internal/models"
)

var transitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "studyplan_lifecycle_transitions_total",
	Help: "Subscription status transitions applied by the reconciler.",
}, []string{"transition"})

// SubscriptionRepository определяет методы хранилища, нужные сверке.
type SubscriptionRepository interface {
	ListExpiredTrials(ctx context.Context, now time.Time) ([]*models.SubscriptionRecord, error)
	ListLapsedActive(ctx context.Context, now time.Time) ([]*models.SubscriptionRecord, error)
	FindSubscriptionByID(ctx context.Context, id int) (*models.SubscriptionRecord, error)
	MarkExpired(ctx context.Context, id int) (int, error)
	FreezeGracePeriod(ctx context.Context, id int, graceEnd time.Time) (int, error)
}

// PolicyProvider загружает актуальный снимок политики доступа.
type PolicyProvider interface {
	Load(ctx context.Context) (models.PolicyConfig, error)
}

// Publisher публикует события переходов для воркеров уведомлений.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// LifecycleEvent — сообщение о переходе статуса записи подписки.
type LifecycleEvent struct {
	SubscriptionID int        `json:"subscription_id"`
	UserUID        string     `json:"user_uid"`
	From           string     `json:"from"`
	To             string     `json:"to"`
	GracePeriodEnd *time.Time `json:"grace_period_end,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

// Service выполняет сверку статусов. Все операции идемпотентны,
// пересекающиеся запуски сходятся к одному результату без блокировок.
type Service struct {
	repo      SubscriptionRepository
	policy    PolicyProvider
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// New создает новый Service. Publisher может быть nil — тогда события
// переходов не публикуются (например, при ручном запуске через HTTP).
func New(repo SubscriptionRepository, policy PolicyProvider, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		policy:    policy,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// ReconcileAll выполняет один проход сверки и возвращает количество записей,
// сменивших статус. Повторный запуск без сдвига времени даёт ноль переходов.
func (s *Service) ReconcileAll(ctx context.Context) (int, error) {
	now := s.now()

	policy, err := s.policy.Load(ctx)
	if err != nil {
		return 0, err
	}

	count := 0

	trials, err := s.repo.ListExpiredTrials(ctx, now)
	if err != nil {
		return count, err
	}
	for _, rec := range trials {
		n, err := s.repo.MarkExpired(ctx, rec.ID)
		if err != nil {
			s.log.Error("failed to expire trial", slog.Int("id", rec.ID), sl.Err(err))
			continue
		}
		if n == 0 {
			continue
		}
		count++
		transitions.WithLabelValues("trial_expired").Inc()
		s.publish(LifecycleEvent{
			SubscriptionID: rec.ID,
			UserUID:        rec.UserUID,
			From:           string(models.StatusTrial),
			To:             string(models.StatusExpired),
			OccurredAt:     now,
		})
	}

	lapsed, err := s.repo.ListLapsedActive(ctx, now)
	if err != nil {
		return count, err
	}
	for _, rec := range lapsed {
		graceEnd := rec.GracePeriodEnd
		if graceEnd == nil {
			// Единственное место, где длина льготного периода «замораживается»
			// по текущей политике. Дальше ядро всегда предпочитает
			// зафиксированное значение пересчёту.
			frozen := rec.EndDate.AddDate(0, 0, policy.GracePeriodDays)
			n, err := s.repo.FreezeGracePeriod(ctx, rec.ID, frozen)
			if err != nil {
				s.log.Error("failed to freeze grace period", slog.Int("id", rec.ID), sl.Err(err))
				continue
			}
			if n == 0 {
				// Параллельный проход уже зафиксировал границу, возможно по
				// другой политике. В событие должно попасть сохранённое
				// значение, а не локально вычисленное.
				stored, err := s.repo.FindSubscriptionByID(ctx, rec.ID)
				if err != nil {
					s.log.Error("failed to reread subscription", slog.Int("id", rec.ID), sl.Err(err))
					continue
				}
				if stored == nil {
					continue
				}
				graceEnd = stored.GracePeriodEnd
			} else {
				graceEnd = &frozen
			}
		}

		n, err := s.repo.MarkExpired(ctx, rec.ID)
		if err != nil {
			s.log.Error("failed to expire subscription", slog.Int("id", rec.ID), sl.Err(err))
			continue
		}
		if n == 0 {
			continue
		}
		count++
		transitions.WithLabelValues("subscription_expired").Inc()
		s.publish(LifecycleEvent{
			SubscriptionID: rec.ID,
			UserUID:        rec.UserUID,
			From:           string(models.StatusActive),
			To:             string(models.StatusExpired),
			GracePeriodEnd: graceEnd,
			OccurredAt:     now,
		})
	}

	return count, nil
}

// Run выполняет сверку сразу и далее по тикеру, пока контекст не отменён.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Service) runOnce(ctx context.Context) {
	s.log.Info("starting lifecycle reconciliation")
	count, err := s.ReconcileAll(ctx)
	if err != nil {
		s.log.Error("reconciliation failed", sl.Err(err))
		return
	}
	s.log.Info("lifecycle reconciliation finished", slog.Int("transitions", count))
}

func (s *Service) publish(event LifecycleEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish("lifecycle", "expired", event); err != nil {
		s.log.Error("failed to publish lifecycle event", sl.Err(err))
	}
}
