package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

// MapError converts pgx/pgconn errors to domain errors. Context errors pass
// through unchanged (wrapped with the entity name).
func MapError(err error, entity string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", entity, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", entity, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", entity, domain.ErrAlreadyExists)
		case "23514", "22P02": // check_violation, invalid_text_representation
			return fmt.Errorf("%s: %w", entity, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s: %w", entity, err)
}
