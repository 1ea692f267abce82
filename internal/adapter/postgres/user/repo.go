// Package user stores the users collection in PostgreSQL, one JSONB
// profile per row.
package user

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/wordstream-bot/internal/adapter/postgres"
	"github.com/heartmarshall/wordstream-bot/internal/domain"
)

const (
	table     = "bot_users"
	chunkSize = 500
)

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repo implements storage.UserBackend.
type Repo struct {
	pool *pgxpool.Pool
	tx   txManager
}

// New creates a new user repository.
func New(pool *pgxpool.Pool, tx txManager) *Repo {
	return &Repo{pool: pool, tx: tx}
}

// ReadUsers returns every stored profile, defaults filled for missing fields.
func (r *Repo) ReadUsers(ctx context.Context) (map[int64]domain.UserProfile, error) {
	sql, args, err := postgres.Builder.Select("id", "profile").From(table).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, table)
	}
	defer rows.Close()

	users := make(map[int64]domain.UserProfile)
	for rows.Next() {
		var (
			id  int64
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, postgres.MapError(err, table)
		}

		p := domain.NewUserProfile("")
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%s: decode profile %d: %w", table, id, err)
		}
		p.FillDefaults()
		users[id] = p
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, table)
	}

	return users, nil
}

// WriteUsers replaces the collection in one transaction: rows whose id is
// absent from users are deleted, the rest are upserted.
func (r *Repo) WriteUsers(ctx context.Context, users map[int64]domain.UserProfile) error {
	ids := make([]int64, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}

	return r.tx.RunInTx(ctx, func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, r.pool)

		if _, err := q.Exec(ctx, `DELETE FROM bot_users WHERE NOT (id = ANY($1))`, ids); err != nil {
			return postgres.MapError(err, table)
		}

		for start := 0; start < len(ids); start += chunkSize {
			end := min(start+chunkSize, len(ids))

			ins := postgres.Builder.Insert(table).Columns("id", "profile")
			for _, id := range ids[start:end] {
				raw, err := json.Marshal(users[id])
				if err != nil {
					return fmt.Errorf("%s: encode profile %d: %w", table, id, err)
				}
				ins = ins.Values(id, string(raw))
			}
			sql, args, err := ins.
				Suffix("ON CONFLICT (id) DO UPDATE SET profile = EXCLUDED.profile, updated_at = now() " +
					"WHERE bot_users.profile IS DISTINCT FROM EXCLUDED.profile").
				ToSql()
			if err != nil {
				return fmt.Errorf("build upsert: %w", err)
			}

			if _, err := q.Exec(ctx, sql, args...); err != nil {
				return postgres.MapError(err, table)
			}
		}
		return nil
	})
}
