package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"inline-post-bot/internal/domain"
	"inline-post-bot/internal/domain/model"
	"inline-post-bot/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

const userColumns = `id, telegram_id, username, first_name, last_name, language_code,
       is_bot, is_premium, last_activity, created_at, updated_at, is_deleted`

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (
  id, telegram_id, username, first_name, last_name, language_code,
  is_bot, is_premium, last_activity, created_at, updated_at, is_deleted
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
) ON CONFLICT (id) DO UPDATE SET
  username=$3, first_name=$4, last_name=$5, language_code=$6,
  is_bot=$7, is_premium=$8, last_activity=$9, updated_at=$11, is_deleted=$12;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		u.ID, u.TelegramID, u.Username, u.FirstName, u.LastName, u.LanguageCode,
		u.IsBot, u.IsPremium, u.LastActivity, u.CreatedAt, u.UpdatedAt, u.IsDeleted)
	return err
}

func (r *PostgresUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE telegram_id=$1 AND is_deleted=FALSE;`
	return r.scanOne(pickRow(ctx, r.pool, tx, q, tgID))
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1 AND is_deleted=FALSE;`
	return r.scanOne(pickRow(ctx, r.pool, tx, q, id))
}

func (r *PostgresUserRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username=$1 AND is_deleted=FALSE;`
	return r.scanOne(pickRow(ctx, r.pool, tx, q, username))
}

func (r *PostgresUserRepo) SoftDelete(ctx context.Context, tx repository.Tx, tgID int64) error {
	const q = `UPDATE users SET is_deleted=TRUE, updated_at=NOW() WHERE telegram_id=$1 AND is_deleted=FALSE;`
	tag, err := execSQL(ctx, r.pool, tx, q, tgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepo) scanOne(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.LanguageCode,
		&u.IsBot, &u.IsPremium, &u.LastActivity, &u.CreatedAt, &u.UpdatedAt, &u.IsDeleted); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
