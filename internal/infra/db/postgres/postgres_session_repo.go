package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"inline-post-bot/internal/domain"
	"inline-post-bot/internal/domain/model"
	"inline-post-bot/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*PostgresSessionRepo)(nil)

type PostgresSessionRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresSessionRepo(pool *pgxpool.Pool) *PostgresSessionRepo {
	return &PostgresSessionRepo{pool: pool}
}

const sessionColumns = `id, user_id, telegram_id, state, data, expires_at, is_active, created_at, updated_at`

func (r *PostgresSessionRepo) Insert(ctx context.Context, tx repository.Tx, s *model.UserSession) error {
	const q = `
INSERT INTO user_sessions (id, user_id, telegram_id, state, data, expires_at, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`
	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.UserID, s.TelegramID, s.State, s.Data, s.ExpiresAt, s.IsActive, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *PostgresSessionRepo) Update(ctx context.Context, tx repository.Tx, s *model.UserSession) error {
	const q = `
UPDATE user_sessions
   SET state=$2, data=$3, expires_at=$4, is_active=$5, updated_at=$6
 WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, s.ID, s.State, s.Data, s.ExpiresAt, s.IsActive, s.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresSessionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UserSession, error) {
	const q = `SELECT ` + sessionColumns + ` FROM user_sessions WHERE id=$1;`
	return r.scanOne(pickRow(ctx, r.pool, tx, q, id))
}

func (r *PostgresSessionRepo) FindActive(ctx context.Context, tx repository.Tx, tgID int64, state string) (*model.UserSession, error) {
	// state='' matches any state
	const q = `SELECT ` + sessionColumns + `
  FROM user_sessions
 WHERE telegram_id=$1 AND is_active=TRUE AND ($2 = '' OR state=$2)
 ORDER BY created_at DESC
 LIMIT 1;`
	return r.scanOne(pickRow(ctx, r.pool, tx, q, tgID, state))
}

func (r *PostgresSessionRepo) Deactivate(ctx context.Context, tx repository.Tx, tgID int64, state string) error {
	const q = `
UPDATE user_sessions
   SET is_active=FALSE, updated_at=NOW()
 WHERE telegram_id=$1 AND is_active=TRUE AND ($2 = '' OR state=$2);`
	_, err := execSQL(ctx, r.pool, tx, q, tgID, state)
	return err
}

func (r *PostgresSessionRepo) DeactivateExpired(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	const q = `
UPDATE user_sessions
   SET is_active=FALSE, updated_at=NOW()
 WHERE is_active=TRUE AND expires_at <= $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresSessionRepo) scanOne(row pgx.Row) (*model.UserSession, error) {
	var s model.UserSession
	if err := row.Scan(&s.ID, &s.UserID, &s.TelegramID, &s.State, &s.Data,
		&s.ExpiresAt, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
