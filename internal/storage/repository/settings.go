package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetSetting возвращает значение административной настройки по ключу.
// Второе значение показывает, существует ли ключ.
func (s *Storage) GetSetting(ctx context.Context, key string) (string, bool, error) {
	const op = "storage.GetSetting"
	select {
	case <-ctx.Done():
		return "", false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT value FROM settings WHERE key = $1`
	var value string
	err := s.DB.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return value, true, nil
}

// UpsertSetting сохраняет значение настройки, заменяя существующее.
func (s *Storage) UpsertSetting(ctx context.Context, key, value string) error {
	const op = "storage.UpsertSetting"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO settings (key, value)
			  VALUES ($1, $2)
			  ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := s.DB.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
