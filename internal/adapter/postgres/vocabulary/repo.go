// Package vocabulary stores the corpus in PostgreSQL. Insertion order is
// kept by a BIGSERIAL sequence column.
package vocabulary

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/wordstream-bot/internal/adapter/postgres"
	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

const (
	table     = "vocabulary"
	chunkSize = 500
)

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repo implements storage.WordBackend.
type Repo struct {
	pool *pgxpool.Pool
	tx   txManager
}

// New creates a new vocabulary repository.
func New(pool *pgxpool.Pool, tx txManager) *Repo {
	return &Repo{pool: pool, tx: tx}
}

// ReadWords returns the corpus in insertion order.
func (r *Repo) ReadWords(ctx context.Context) ([]domain.VocabularyItem, error) {
	sql, args, err := postgres.Builder.
		Select("word", "translation", "definition", "level").
		From(table).
		OrderBy("seq").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, table)
	}
	defer rows.Close()

	words := []domain.VocabularyItem{}
	for rows.Next() {
		var (
			item  domain.VocabularyItem
			level string
		)
		if err := rows.Scan(&item.Word, &item.Translation, &item.Definition, &level); err != nil {
			return nil, postgres.MapError(err, table)
		}
		item.Level = domain.Level(level)
		if !item.Level.IsValid() {
			item.Level = domain.LevelBeginner
		}
		words = append(words, item)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, table)
	}

	return words, nil
}

// WriteWords replaces the corpus in one transaction. Words already stored
// keep their position; new words are appended in slice order.
func (r *Repo) WriteWords(ctx context.Context, words []domain.VocabularyItem) error {
	keys := make([]string, len(words))
	for i, w := range words {
		keys[i] = w.Word
	}

	return r.tx.RunInTx(ctx, func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, r.pool)

		if _, err := q.Exec(ctx, `DELETE FROM vocabulary WHERE NOT (word = ANY($1))`, keys); err != nil {
			return postgres.MapError(err, table)
		}

		for start := 0; start < len(words); start += chunkSize {
			end := min(start+chunkSize, len(words))

			ins := postgres.Builder.Insert(table).Columns("word", "translation", "definition", "level")
			for _, w := range words[start:end] {
				ins = ins.Values(w.Word, w.Translation, w.Definition, w.Level.String())
			}
			sql, args, err := ins.Suffix("ON CONFLICT (word) DO NOTHING").ToSql()
			if err != nil {
				return fmt.Errorf("build insert: %w", err)
			}

			if _, err := q.Exec(ctx, sql, args...); err != nil {
				return postgres.MapError(err, table)
			}
		}
		return nil
	})
}
