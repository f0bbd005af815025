package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/studyplan-access/internal/models"
)

const subscriptionColumns = `id, user_uid, plan_id, status, start_date, end_date,
	trial_end, grace_period_end, created_at`

// FindCurrentSubscription возвращает актуальную запись подписки пользователя —
// запись с самым поздним created_at. Исторические записи не учитываются.
// Отсутствие записи не является ошибкой, возвращается (nil, nil).
func (s *Storage) FindCurrentSubscription(ctx context.Context, userUID string) (*models.SubscriptionRecord, error) {
	const op = "storage.FindCurrentSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_uid = $1
			  ORDER BY created_at DESC
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, userUID)

	rec, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// FindSubscriptionByID возвращает запись подписки по её ID.
// Отсутствие записи не является ошибкой, возвращается (nil, nil).
func (s *Storage) FindSubscriptionByID(ctx context.Context, id int) (*models.SubscriptionRecord, error) {
	const op = "storage.FindSubscriptionByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	rec, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// CreateSubscription вставляет новую запись подписки и возвращает её ID.
func (s *Storage) CreateSubscription(ctx context.Context, rec models.SubscriptionRecord) (int, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_uid, plan_id, status, start_date,
			      end_date, trial_end, grace_period_end, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		rec.UserUID, rec.PlanID, rec.Status, rec.StartDate,
		rec.EndDate, rec.TrialEnd, rec.GracePeriodEnd, rec.CreatedAt).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// SupersedeAndCreate в одной транзакции помечает все действующие записи
// пользователя как cancelled и вставляет новую запись. Транзакция гарантирует,
// что при двойной активации выживет ровно одна действующая запись.
func (s *Storage) SupersedeAndCreate(ctx context.Context, rec models.SubscriptionRecord) (int, error) {
	const op = "storage.SupersedeAndCreate"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	supersede := `UPDATE subscriptions
			      SET status = $1
			      WHERE user_uid = $2
			        AND status IN ($3, $4)`
	if _, err = tx.ExecContext(ctx, supersede,
		models.StatusCancelled, rec.UserUID, models.StatusTrial, models.StatusActive); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	insert := `INSERT INTO subscriptions (user_uid, plan_id, status, start_date,
			       end_date, trial_end, grace_period_end, created_at)
			   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			   RETURNING id`
	var newID int
	if err = tx.QueryRowContext(ctx, insert,
		rec.UserUID, rec.PlanID, rec.Status, rec.StartDate,
		rec.EndDate, rec.TrialEnd, rec.GracePeriodEnd, rec.CreatedAt).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListExpiredTrials возвращает записи со статусом trial, чей пробный период
// уже закончился к моменту now.
func (s *Storage) ListExpiredTrials(ctx context.Context, now time.Time) ([]*models.SubscriptionRecord, error) {
	const op = "storage.ListExpiredTrials"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE status = $1
			    AND trial_end IS NOT NULL
			    AND trial_end <= $2
			  ORDER BY id`
	return s.listSubscriptions(ctx, op, query, models.StatusTrial, now)
}

// ListLapsedActive возвращает записи со статусом active, чья дата окончания
// уже прошла к моменту now.
func (s *Storage) ListLapsedActive(ctx context.Context, now time.Time) ([]*models.SubscriptionRecord, error) {
	const op = "storage.ListLapsedActive"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE status = $1
			    AND end_date IS NOT NULL
			    AND end_date <= $2
			  ORDER BY id`
	return s.listSubscriptions(ctx, op, query, models.StatusActive, now)
}

// MarkExpired переводит запись в статус expired и возвращает количество
// изменённых строк. Повторный вызов для уже истёкшей записи — no-op,
// благодаря чему пересекающиеся проходы сверки сходятся к одному результату.
func (s *Storage) MarkExpired(ctx context.Context, id int) (int, error) {
	const op = "storage.MarkExpired"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = $1
			  WHERE id = $2
			    AND status IN ($3, $4)`
	result, err := s.DB.ExecContext(ctx, query,
		models.StatusExpired, id, models.StatusTrial, models.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// FreezeGracePeriod записывает границу льготного периода, только если она
// ещё не была зафиксирована. Однажды замороженное значение авторитетно
// и не пересчитывается при изменениях политики.
func (s *Storage) FreezeGracePeriod(ctx context.Context, id int, graceEnd time.Time) (int, error) {
	const op = "storage.FreezeGracePeriod"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET grace_period_end = $1
			  WHERE id = $2
			    AND grace_period_end IS NULL`
	result, err := s.DB.ExecContext(ctx, query, graceEnd, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

func (s *Storage) listSubscriptions(ctx context.Context, op, query string, args ...any) ([]*models.SubscriptionRecord, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SubscriptionRecord
	for rows.Next() {
		rec, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*models.SubscriptionRecord, error) {
	var rec models.SubscriptionRecord
	err := row.Scan(&rec.ID, &rec.UserUID, &rec.PlanID, &rec.Status, &rec.StartDate,
		&rec.EndDate, &rec.TrialEnd, &rec.GracePeriodEnd, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
