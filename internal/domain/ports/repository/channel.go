package repository

import (
	"context"
	"time"

	"inline-post-bot/internal/domain/model"
)

// -----------------------------
// Channels
// -----------------------------

type ChannelRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Channel) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Channel, error)
	FindByChatID(ctx context.Context, tx Tx, chatID int64) (*model.Channel, error)
	FindByUsername(ctx context.Context, tx Tx, username string) (*model.Channel, error)
	// FindActiveByOwner returns the active channels bound to the given
	// Telegram user ID, oldest registration first.
	FindActiveByOwner(ctx context.Context, tx Tx, ownerTgID int64) ([]*model.Channel, error)
	// FindPendingByTitle matches unclaimed channels on exact title.
	FindPendingByTitle(ctx context.Context, tx Tx, title string) ([]*model.Channel, error)
	// ExpirePending flips pending channels whose claim window closed before
	// `now` to the expired status and reports how many rows changed.
	ExpirePending(ctx context.Context, tx Tx, now time.Time) (int64, error)
}
