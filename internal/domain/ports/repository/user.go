package repository

import (
	"context"

	"inline-post-bot/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

// UserRepository reads never return soft-deleted rows; the is_deleted filter is
// applied explicitly on every query, not by any ORM-level global filter.
type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.User, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByUsername(ctx context.Context, tx Tx, username string) (*model.User, error)
	SoftDelete(ctx context.Context, tx Tx, tgID int64) error
}
