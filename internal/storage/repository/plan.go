package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/studyplan-access/internal/models"
)

// FindActivePlanByID возвращает план по ID, если он существует и доступен
// для покупки. Отсутствие плана не является ошибкой, возвращается (nil, nil).
func (s *Storage) FindActivePlanByID(ctx context.Context, id int) (*models.Plan, error) {
	const op = "storage.FindActivePlanByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, display_name, price, duration_days, is_active
			  FROM plans
			  WHERE id = $1
			    AND is_active = true`
	row := s.DB.QueryRowContext(ctx, query, id)

	var plan models.Plan
	err := row.Scan(&plan.ID, &plan.Name, &plan.DisplayName, &plan.Price,
		&plan.DurationDays, &plan.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &plan, nil
}

// ListActivePlans возвращает все планы, доступные для покупки.
func (s *Storage) ListActivePlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListActivePlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, display_name, price, duration_days, is_active
			  FROM plans
			  WHERE is_active = true
			  ORDER BY price`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plan
	for rows.Next() {
		var plan models.Plan
		if err := rows.Scan(&plan.ID, &plan.Name, &plan.DisplayName, &plan.Price,
			&plan.DurationDays, &plan.IsActive); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &plan)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
