package entitlement

import "github.com/magabrotheeeer/studyplan-access/internal/models"

// Check переводит производный статус в решение о доступе.
// Таблица решений, первый совпавший ряд выигрывает:
//
//	система подписок выключена  → доступ, subscription_disabled
//	терминальный отказ          → нет доступа, access_denied
//	trial или active            → доступ, trial_active / subscription_active
//	льготный период             → доступ, grace_period
//	окно ограниченного входа    → доступ с ограничениями, sign_in_restricted
//	иначе                       → нет доступа, trial_expired / no_subscription
//
// Если передано имя функции, в результат добавляется её лимит из политики.
// Сам движок ничего не ограничивает: применение лимитов (усечение списков,
// горизонта расписания) — ответственность вызывающей функции продукта.
func Check(status models.DerivedStatus, policy models.PolicyConfig, feature string) models.AccessResult {
	res := models.AccessResult{
		Status:       status,
		FeatureLimit: featureLimit(policy.Limits, feature),
	}

	switch {
	case !policy.SubscriptionSystemEnabled:
		res.HasAccess = true
		res.Reason = models.ReasonSubscriptionDisabled
	case status.IsAccessDenied:
		res.Reason = models.ReasonAccessDenied
	case status.IsActive:
		res.HasAccess = true
		if status.IsInTrial {
			res.Reason = models.ReasonTrialActive
		} else {
			res.Reason = models.ReasonSubscriptionActive
		}
	case status.IsInGracePeriod:
		res.HasAccess = true
		res.Reason = models.ReasonGracePeriod
	case status.SignInRestricted:
		res.HasAccess = true
		res.Reason = models.ReasonSignInRestricted
	case status.HasSubscription:
		res.Reason = models.ReasonTrialExpired
	default:
		res.Reason = models.ReasonNoSubscription
	}

	return res
}

func featureLimit(limits models.FeatureLimits, feature string) *int {
	var v int
	switch feature {
	case models.FeatureTimetable:
		v = limits.TimetableDays
	case models.FeatureNotes:
		v = limits.NotesLimit
	case models.FeatureFocusSessions:
		v = limits.FocusSessionsLimit
	case models.FeaturePrivateLessons:
		v = limits.PrivateLessonsLimit
	default:
		return nil
	}
	return &v
}
