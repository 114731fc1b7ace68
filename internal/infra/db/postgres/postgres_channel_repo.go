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

var _ repository.ChannelRepository = (*PostgresChannelRepo)(nil)

type PostgresChannelRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresChannelRepo(pool *pgxpool.Pool) *PostgresChannelRepo {
	return &PostgresChannelRepo{pool: pool}
}

const channelColumns = `id, chat_id, title, username, description, member_count,
       is_active, is_public, invite_link, last_checked,
       claim_status, claim_expires_at, owner_id, created_at, updated_at, is_deleted`

func (r *PostgresChannelRepo) Save(ctx context.Context, tx repository.Tx, c *model.Channel) error {
	const q = `
INSERT INTO channels (
  id, chat_id, title, username, description, member_count,
  is_active, is_public, invite_link, last_checked,
  claim_status, claim_expires_at, owner_id, created_at, updated_at, is_deleted
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16
) ON CONFLICT (id) DO UPDATE SET
  title=$3, username=$4, description=$5, member_count=$6,
  is_active=$7, is_public=$8, invite_link=$9, last_checked=$10,
  claim_status=$11, claim_expires_at=$12, owner_id=$13, updated_at=$15, is_deleted=$16;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, c.ChatID, c.Title, c.Username, c.Description, c.MemberCount,
		c.IsActive, c.IsPublic, c.InviteLink, c.LastChecked,
		string(c.ClaimStatus), c.ClaimExpiresAt, c.OwnerID, c.CreatedAt, c.UpdatedAt, c.IsDeleted)
	return err
}

func (r *PostgresChannelRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Channel, error) {
	const q = `SELECT ` + channelColumns + ` FROM channels WHERE id=$1 AND is_deleted=FALSE;`
	return r.scanOne(pickRow(ctx, r.pool, tx, q, id))
}

func (r *PostgresChannelRepo) FindByChatID(ctx context.Context, tx repository.Tx, chatID int64) (*model.Channel, error) {
	const q = `SELECT ` + channelColumns + ` FROM channels WHERE chat_id=$1 AND is_deleted=FALSE;`
	return r.scanOne(pickRow(ctx, r.pool, tx, q, chatID))
}

func (r *PostgresChannelRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.Channel, error) {
	const q = `SELECT ` + channelColumns + ` FROM channels WHERE username=$1 AND is_deleted=FALSE;`
	return r.scanOne(pickRow(ctx, r.pool, tx, q, username))
}

func (r *PostgresChannelRepo) FindActiveByOwner(ctx context.Context, tx repository.Tx, ownerTgID int64) ([]*model.Channel, error) {
	const q = `SELECT ` + channelColumns + `
  FROM channels
 WHERE owner_id=$1 AND is_active=TRUE AND claim_status='claimed' AND is_deleted=FALSE
 ORDER BY created_at ASC;`
	rows, err := querySQL(ctx, r.pool, tx, q, ownerTgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *PostgresChannelRepo) FindPendingByTitle(ctx context.Context, tx repository.Tx, title string) ([]*model.Channel, error) {
	const q = `SELECT ` + channelColumns + `
  FROM channels
 WHERE title=$1 AND claim_status='pending' AND is_deleted=FALSE
 ORDER BY created_at ASC;`
	rows, err := querySQL(ctx, r.pool, tx, q, title)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *PostgresChannelRepo) ExpirePending(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	const q = `
UPDATE channels
   SET claim_status='expired', updated_at=NOW()
 WHERE claim_status='pending' AND claim_expires_at < $1 AND is_deleted=FALSE;`
	tag, err := execSQL(ctx, r.pool, tx, q, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresChannelRepo) scanOne(row pgx.Row) (*model.Channel, error) {
	var c model.Channel
	var status string
	if err := row.Scan(&c.ID, &c.ChatID, &c.Title, &c.Username, &c.Description, &c.MemberCount,
		&c.IsActive, &c.IsPublic, &c.InviteLink, &c.LastChecked,
		&status, &c.ClaimExpiresAt, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt, &c.IsDeleted); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.ClaimStatus = model.ClaimStatus(status)
	return &c, nil
}

func (r *PostgresChannelRepo) scanMany(rows pgx.Rows) ([]*model.Channel, error) {
	var out []*model.Channel
	for rows.Next() {
		var c model.Channel
		var status string
		if err := rows.Scan(&c.ID, &c.ChatID, &c.Title, &c.Username, &c.Description, &c.MemberCount,
			&c.IsActive, &c.IsPublic, &c.InviteLink, &c.LastChecked,
			&status, &c.ClaimExpiresAt, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt, &c.IsDeleted); err != nil {
			return nil, err
		}
		c.ClaimStatus = model.ClaimStatus(status)
		out = append(out, &c)
	}
	return out, rows.Err()
}
