package models

import "time"

// SubscriptionStatus — сохранённая классификация записи подписки.
// Значение может отставать от реального положения дел: источником истины
// для решений о доступе являются даты записи, а не это поле.
type SubscriptionStatus string

const (
	// StatusTrial — пробный период без оплаченного плана.
	StatusTrial SubscriptionStatus = "trial"
	// StatusActive — оплаченная действующая подписка.
	StatusActive SubscriptionStatus = "active"
	// StatusExpired — срок действия истёк (ставится реконсилиатором).
	StatusExpired SubscriptionStatus = "expired"
	// StatusCancelled — запись вытеснена более новой, не удаляется.
	StatusCancelled SubscriptionStatus = "cancelled"
	// StatusPaused — подписка приостановлена.
	StatusPaused SubscriptionStatus = "paused"
)

// SubscriptionRecord представляет одну запись о праве доступа пользователя.
// У пользователя может накопиться несколько исторических записей,
// актуальной считается запись с самым поздним CreatedAt.
// EndDate равный nil означает, что фиксированная дата окончания ещё
// не назначена (например, чистый пробный период).
type SubscriptionRecord struct {
	ID             int                // Уникальный идентификатор записи
	UserUID        string             // Владелец записи
	PlanID         *int               // Ссылка на план; nil для пробного периода без покупки
	Status         SubscriptionStatus // Сохранённый статус
	StartDate      time.Time          // Дата начала действия
	EndDate        *time.Time         // Дата окончания оплаченного доступа
	TrialEnd       *time.Time         // Дата окончания пробного периода
	GracePeriodEnd *time.Time         // Замороженная дата окончания льготного периода
	CreatedAt      time.Time          // Дата создания записи
}
