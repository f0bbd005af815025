package models

// FeatureLimits — числовые ограничения, применяемые при деградированном
// (read-only) доступе. При полном доступе и при полном отказе не используются.
type FeatureLimits struct {
	TimetableDays       int `json:"timetable_days"`        // Видимый горизонт расписания в днях
	NotesLimit          int `json:"notes_limit"`           // Максимум доступных заметок
	FocusSessionsLimit  int `json:"focus_sessions_limit"`  // Максимум фокус-сессий
	PrivateLessonsLimit int `json:"private_lessons_limit"` // Максимум частных занятий
}

// PolicyConfig — неизменяемый снимок административных настроек движка.
// Снимок читается из хранилища настроек на каждую оценку (или из кеша
// с явной инвалидацией) и никогда не мутируется движком.
type PolicyConfig struct {
	SubscriptionSystemEnabled bool          // Главный выключатель: false — безусловный полный доступ всем
	TrialEnabled              bool          // Выдаются ли пробные периоды
	TrialDays                 int           // Длительность пробного периода в днях
	GracePeriodDays           int           // Длительность льготного периода в днях
	SignInRestrictionEnabled  bool          // Включено ли окно ограниченного входа после льготного периода
	SignInRestrictionDays     int           // Длительность окна ограниченного входа в днях
	Limits                    FeatureLimits // Ограничения деградированного доступа
}

// Значения по умолчанию для настроек политики. Используются, когда ключ
// отсутствует в хранилище или его значение не парсится: испорченная
// админская настройка не должна заблокировать доступ всем пользователям.
const (
	DefaultTrialDays             = 14
	DefaultGracePeriodDays       = 7
	DefaultSignInRestrictionDays = 30
	DefaultTimetableDays         = 7
	DefaultNotesLimit            = 10
	DefaultFocusSessionsLimit    = 3
	DefaultPrivateLessonsLimit   = 1
)

// DefaultPolicy возвращает политику со значениями по умолчанию.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		SubscriptionSystemEnabled: true,
		TrialEnabled:              true,
		TrialDays:                 DefaultTrialDays,
		GracePeriodDays:           DefaultGracePeriodDays,
		SignInRestrictionEnabled:  false,
		SignInRestrictionDays:     DefaultSignInRestrictionDays,
		Limits: FeatureLimits{
			TimetableDays:       DefaultTimetableDays,
			NotesLimit:          DefaultNotesLimit,
			FocusSessionsLimit:  DefaultFocusSessionsLimit,
			PrivateLessonsLimit: DefaultPrivateLessonsLimit,
		},
	}
}
