package models

import "time"

// LifecycleState — производное состояние жизненного цикла подписки.
// Никогда не сохраняется, вычисляется заново при каждой оценке.
type LifecycleState string

const (
	// StateTrial — действующий пробный период.
	StateTrial LifecycleState = "trial"
	// StateActive — действующая оплаченная подписка.
	StateActive LifecycleState = "active"
	// StateGracePeriod — льготный период после окончания оплаченного доступа.
	StateGracePeriod LifecycleState = "grace_period"
	// StateExpired — доступ истёк (включая окна ограничения и отказа).
	StateExpired LifecycleState = "expired"
)

// DerivedStatus — результат оценки записи подписки на конкретный момент времени.
type DerivedStatus struct {
	State              LifecycleState `json:"state"`
	HasSubscription    bool           `json:"has_subscription"`      // Существует ли запись вообще
	IsActive           bool           `json:"is_active"`             // Полный доступ (trial или active)
	IsInTrial          bool           `json:"is_in_trial"`           // Идёт пробный период
	IsInGracePeriod    bool           `json:"is_in_grace_period"`    // Идёт льготный период
	RemainingTrialDays int            `json:"remaining_trial_days"`  // Осталось дней пробного периода
	DaysUntilExpiry    *int           `json:"days_until_expiry"`     // Дней до окончания оплаченного доступа
	DaysSinceExpiry    *int           `json:"days_since_expiry"`     // Дней с момента окончания
	GracePeriodEnd     *time.Time     `json:"grace_period_end"`      // Граница льготного периода
	IsAccessDenied     bool           `json:"is_access_denied"`      // Терминальный отказ в доступе
	SignInRestricted   bool           `json:"sign_in_restricted"`    // Окно деградированного доступа
	Limits             FeatureLimits  `json:"limits"`                // Ограничения деградированного доступа
	Plan               *PlanSummary   `json:"plan,omitempty"`        // Сводка плана, если он известен
}

// AccessReason — причина решения о доступе.
type AccessReason string

const (
	// ReasonSubscriptionDisabled — система подписок выключена целиком.
	ReasonSubscriptionDisabled AccessReason = "subscription_disabled"
	// ReasonAccessDenied — терминальный отказ после всех окон.
	ReasonAccessDenied AccessReason = "access_denied"
	// ReasonTrialActive — действующий пробный период.
	ReasonTrialActive AccessReason = "trial_active"
	// ReasonSubscriptionActive — действующая оплаченная подписка.
	ReasonSubscriptionActive AccessReason = "subscription_active"
	// ReasonGracePeriod — льготный период.
	ReasonGracePeriod AccessReason = "grace_period"
	// ReasonSignInRestricted — окно ограниченного (деградированного) доступа.
	ReasonSignInRestricted AccessReason = "sign_in_restricted"
	// ReasonTrialExpired — пробный период или подписка истекли.
	ReasonTrialExpired AccessReason = "trial_expired"
	// ReasonNoSubscription — у пользователя нет ни одной записи.
	ReasonNoSubscription AccessReason = "no_subscription"
)

// Имена защищаемых функций продукта, для которых действуют ограничения.
const (
	FeatureTimetable      = "timetable"
	FeatureNotes          = "notes"
	FeatureFocusSessions  = "focus_sessions"
	FeaturePrivateLessons = "private_lessons"
)

// AccessResult — итоговое решение о доступе, возвращаемое вызывающему коду.
// HasAccess=false — ожидаемый частый исход, а не системная ошибка.
type AccessResult struct {
	HasAccess    bool          `json:"has_access"`
	Reason       AccessReason  `json:"reason"`
	Status       DerivedStatus `json:"status"`
	FeatureLimit *int          `json:"feature_limit,omitempty"` // Лимит конкретной функции, если она указана
}
