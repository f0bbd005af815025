// Package entitlement реализует чистое ядро движка доступа:
// вычисление производного состояния жизненного цикла подписки (Evaluate)
// и решение о доступе к функциям продукта (Check).
//
// Обе функции детерминированы, не выполняют I/O и не имеют разделяемого
// состояния, поэтому безопасны для конкурентного вызова из любого числа
// горутин без синхронизации.
package entitlement

import (
	"time"

	"github.com/magabrotheeeer/studyplan-access/internal/models"
)

const day = 24 * time.Hour

// Evaluate вычисляет производный статус записи подписки на момент now.
// Запись может отсутствовать (rec == nil) — это ожидаемый вход,
// означающий «никогда не подписывался», а не ошибка.
//
// Окна времени проверяются в строгом порядке приоритета:
// пробный период → активная подписка → льготный период →
// окно ограниченного входа → отказ в доступе.
//
// Сохранённое поле Status записи не используется для решения о доступе
// (оно может отставать), единственное исключение — проверка того, что
// запись числится активной, у шага активной подписки.
func Evaluate(rec *models.SubscriptionRecord, policy models.PolicyConfig, now time.Time) models.DerivedStatus {
	st := models.DerivedStatus{
		State:  models.StateExpired,
		Limits: policy.Limits,
	}
	if rec == nil {
		return st
	}
	st.HasSubscription = true

	// Действующий пробный период даёт полный доступ.
	if rec.TrialEnd != nil && now.Before(*rec.TrialEnd) {
		st.State = models.StateTrial
		st.IsActive = true
		st.IsInTrial = true
		st.RemainingTrialDays = ceilDays(rec.TrialEnd.Sub(now))
		return st
	}

	// Действующая оплаченная подписка. EndDate равный nil означает,
	// что дата окончания ещё не назначена — доступ открыт.
	if rec.Status == models.StatusActive && (rec.EndDate == nil || now.Before(*rec.EndDate)) {
		st.State = models.StateActive
		st.IsActive = true
		if rec.EndDate != nil {
			d := ceilDays(rec.EndDate.Sub(now))
			st.DaysUntilExpiry = &d
		}
		return st
	}

	// Срок оплаченного доступа вышел: льготный период, затем окно
	// ограниченного входа, затем отказ. Все три окна требуют опорной
	// даты EndDate; истёкший пробный период без EndDate проваливается
	// сразу в «истёк, доступа нет» — льготного периода у него нет.
	// TODO: подтвердить у продукта, что жёсткая отсечка пробного периода намеренная.
	if rec.EndDate != nil && !now.Before(*rec.EndDate) {
		since := floorDays(now.Sub(*rec.EndDate))
		st.DaysSinceExpiry = &since

		// Замороженное значение всегда в приоритете: первая запись
		// границы фиксирует окно независимо от позднейших правок политики.
		graceEnd := rec.EndDate.AddDate(0, 0, policy.GracePeriodDays)
		if rec.GracePeriodEnd != nil {
			graceEnd = *rec.GracePeriodEnd
		}
		st.GracePeriodEnd = &graceEnd

		// Льготный период даёт полный, а не деградированный доступ.
		if !now.After(graceEnd) {
			st.State = models.StateGracePeriod
			st.IsInGracePeriod = true
			return st
		}

		if policy.SignInRestrictionEnabled {
			totalEnd := graceEnd.AddDate(0, 0, policy.SignInRestrictionDays)
			if !now.After(totalEnd) {
				st.SignInRestricted = true
			} else {
				st.IsAccessDenied = true
			}
		}
	}

	return st
}

// ceilDays округляет длительность вверх до целых дней, не опускаясь ниже нуля.
func ceilDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	days := int(d / day)
	if d%day != 0 {
		days++
	}
	return days
}

func floorDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / day)
}
