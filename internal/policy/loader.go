// Package policy отвечает за загрузку снимка административной политики
// доступа из хранилища настроек. Каждый ключ парсится отдельно и при
// отсутствии или порче значения заменяется значением по умолчанию:
// испорченная настройка не должна закрыть доступ всем пользователям.
//
// Снимок кешируется с коротким TTL и явной инвалидацией, поэтому оценка
// доступа никогда не работает со значением, захваченным на старте процесса.
package policy

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/magabrotheeeer/studyplan-access/internal/lib/sl"
	"github.com/magabrotheeeer/studyplan-access/internal/models"
)

// Ключи настроек в хранилище.
const (
	KeySubscriptionSystemEnabled = "subscription_system_enabled"
	KeyTrialEnabled              = "trial_enabled"
	KeyTrialDays                 = "trial_days"
	KeyGracePeriodDays           = "grace_period_days"
	KeySignInRestrictionEnabled  = "sign_in_restriction_enabled"
	KeySignInRestrictionDays     = "sign_in_restriction_days"
	KeyTimetableDaysLimit        = "timetable_days_limit"
	KeyNotesLimit                = "notes_limit"
	KeyFocusSessionsLimit        = "focus_sessions_limit"
	KeyPrivateLessonsLimit       = "private_lessons_limit"
)

const (
	cacheKey = "policy:config"
	cacheTTL = time.Minute
)

// SettingsProvider описывает доступ к хранилищу настроек.
// Второе возвращаемое значение — существует ли ключ.
type SettingsProvider interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
}

// Cache описывает методы для кэширования снимка политики.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Loader загружает снимок политики из хранилища настроек через кеш.
type Loader struct {
	settings SettingsProvider
	cache    Cache
	log      *slog.Logger
}

// NewLoader создает новый Loader.
func NewLoader(settings SettingsProvider, cache Cache, log *slog.Logger) *Loader {
	return &Loader{
		settings: settings,
		cache:    cache,
		log:      log,
	}
}

// Load возвращает актуальный снимок политики.
// Ошибка возможна только при недоступности хранилища настроек.
func (l *Loader) Load(ctx context.Context) (models.PolicyConfig, error) {
	const op = "policy.Load"

	var cached models.PolicyConfig
	found, err := l.cache.Get(cacheKey, &cached)
	if err != nil {
		l.log.Warn("failed to read policy from cache", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	cfg := models.DefaultPolicy()
	if err := l.fill(ctx, &cfg); err != nil {
		return models.PolicyConfig{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := l.cache.Set(cacheKey, cfg, cacheTTL); err != nil {
		l.log.Warn("failed to cache policy", sl.Err(err))
	}
	return cfg, nil
}

// Invalidate сбрасывает закешированный снимок, следующая загрузка
// прочитает настройки заново.
func (l *Loader) Invalidate() error {
	return l.cache.Invalidate(cacheKey)
}

func (l *Loader) fill(ctx context.Context, cfg *models.PolicyConfig) error {
	var err error
	if cfg.SubscriptionSystemEnabled, err = l.boolSetting(ctx, KeySubscriptionSystemEnabled, cfg.SubscriptionSystemEnabled); err != nil {
		return err
	}
	if cfg.TrialEnabled, err = l.boolSetting(ctx, KeyTrialEnabled, cfg.TrialEnabled); err != nil {
		return err
	}
	if cfg.TrialDays, err = l.intSetting(ctx, KeyTrialDays, cfg.TrialDays); err != nil {
		return err
	}
	if cfg.GracePeriodDays, err = l.intSetting(ctx, KeyGracePeriodDays, cfg.GracePeriodDays); err != nil {
		return err
	}
	if cfg.SignInRestrictionEnabled, err = l.boolSetting(ctx, KeySignInRestrictionEnabled, cfg.SignInRestrictionEnabled); err != nil {
		return err
	}
	if cfg.SignInRestrictionDays, err = l.intSetting(ctx, KeySignInRestrictionDays, cfg.SignInRestrictionDays); err != nil {
		return err
	}
	if cfg.Limits.TimetableDays, err = l.intSetting(ctx, KeyTimetableDaysLimit, cfg.Limits.TimetableDays); err != nil {
		return err
	}
	if cfg.Limits.NotesLimit, err = l.intSetting(ctx, KeyNotesLimit, cfg.Limits.NotesLimit); err != nil {
		return err
	}
	if cfg.Limits.FocusSessionsLimit, err = l.intSetting(ctx, KeyFocusSessionsLimit, cfg.Limits.FocusSessionsLimit); err != nil {
		return err
	}
	if cfg.Limits.PrivateLessonsLimit, err = l.intSetting(ctx, KeyPrivateLessonsLimit, cfg.Limits.PrivateLessonsLimit); err != nil {
		return err
	}
	return nil
}

func (l *Loader) intSetting(ctx context.Context, key string, def int) (int, error) {
	raw, ok, err := l.settings.GetSetting(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		l.log.Warn("invalid policy value, using default",
			slog.String("key", key), slog.String("value", raw), slog.Int("default", def))
		return def, nil
	}
	return v, nil
}

func (l *Loader) boolSetting(ctx context.Context, key string, def bool) (bool, error) {
	raw, ok, err := l.settings.GetSetting(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		l.log.Warn("invalid policy value, using default",
			slog.String("key", key), slog.String("value", raw), slog.Bool("default", def))
		return def, nil
	}
	return v, nil
}
