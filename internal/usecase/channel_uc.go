package usecase

import (
	"context"
	"strings"
	"time"

	"inline-post-bot/internal/domain"
	"inline-post-bot/internal/domain/model"
	"inline-post-bot/internal/domain/ports/adapter"
	"inline-post-bot/internal/domain/ports/repository"
	"inline-post-bot/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ ChannelUseCase = (*channelUC)(nil)

// chat member statuses that count as posting rights.
func isChannelAdmin(status string) bool {
	return status == "creator" || status == "administrator"
}

// ChannelUseCase covers channel registration, the claim handshake, and
// ownership checks used before publishing.
type ChannelUseCase interface {
	// RegisterFromChannelPost records a channel the bot saw a /register
	// post in. The channel starts unclaimed with a 24h claim window.
	// Re-registering an already known channel refreshes its metadata
	// instead; the second return reports whether the channel is new.
	RegisterFromChannelPost(ctx context.Context, chatID int64) (*model.Channel, bool, error)
	// ClaimByTitle binds a pending channel with the given exact title to
	// the claiming user, after verifying they administer it on Telegram.
	ClaimByTitle(ctx context.Context, tgID int64, title string) (*model.Channel, error)
	OwnedActive(ctx context.Context, tgID int64) ([]*model.Channel, error)
	ByID(ctx context.Context, id string) (*model.Channel, error)
	IsOwner(ctx context.Context, tgID int64, channelID string) (bool, error)
	// CanSendTo performs the stored ownership check plus live
	// GetChatMember lookups for the bot and the user, so a revoked
	// admin or a kicked bot loses access immediately.
	CanSendTo(ctx context.Context, tgID int64, channelID string) (bool, error)
	// Deactivate removes the channel from the owner's active list.
	Deactivate(ctx context.Context, tgID int64, channelID string) error
	// RefreshInfo re-reads title, member count and invite link from Telegram.
	RefreshInfo(ctx context.Context, channelID string) (*model.Channel, error)
	// ExpireStaleClaims closes claim windows that passed. Used by the scheduler.
	ExpireStaleClaims(ctx context.Context) (int64, error)
}

type channelUC struct {
	channels repository.ChannelRepository
	tm       repository.TransactionManager
	bot      adapter.TelegramBotAdapter
	log      *zerolog.Logger
}

func NewChannelUseCase(channels repository.ChannelRepository, tm repository.TransactionManager, bot adapter.TelegramBotAdapter, logger *zerolog.Logger) *channelUC {
	return &channelUC{
		channels: channels,
		tm:       tm,
		bot:      bot,
		log:      logger,
	}
}

func (c *channelUC) RegisterFromChannelPost(ctx context.Context, chatID int64) (*model.Channel, bool, error) {
	defer logging.TraceDuration(c.log, "ChannelUC.RegisterFromChannelPost")()

	info, err := c.bot.ChatInfo(ctx, chatID)
	if err != nil {
		return nil, false, err
	}

	var ch *model.Channel
	var created bool
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err = c.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		existing, err := c.channels.FindByChatID(ctx, tx, chatID)
		if err == nil {
			existing.Title = info.Title
			existing.Username = info.Username
			existing.Description = info.Description
			existing.InviteLink = info.InviteLink
			existing.MemberCount = info.MemberCount
			now := time.Now()
			existing.LastChecked = &now
			existing.UpdatedAt = now
			// A previously expired claim window reopens on re-register.
			if existing.ClaimStatus == model.ClaimExpired {
				existing.ClaimStatus = model.ClaimPending
				exp := now.Add(model.DefaultClaimWindow)
				existing.ClaimExpiresAt = &exp
			}
			if err := c.channels.Save(ctx, tx, existing); err != nil {
				return err
			}
			ch = existing
			return nil
		}
		if !isNotFound(err) {
			return err
		}

		nc, err := model.NewPendingChannel(chatID, info.Title, info.Username, info.Description)
		if err != nil {
			return err
		}
		nc.InviteLink = info.InviteLink
		nc.MemberCount = info.MemberCount
		if err := c.channels.Save(ctx, tx, nc); err != nil {
			return err
		}
		ch = nc
		created = true
		return nil
	})
	return ch, created, err
}

func (c *channelUC) ClaimByTitle(ctx context.Context, tgID int64, title string) (*model.Channel, error) {
	defer logging.TraceDuration(c.log, "ChannelUC.ClaimByTitle")()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.ErrInvalidArgument
	}

	candidates, err := c.channels.FindPendingByTitle(ctx, repository.NoTX, title)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	var target *model.Channel
	for _, cand := range candidates {
		if cand.ClaimableAt(now) {
			target = cand
			break
		}
	}
	if target == nil {
		return nil, domain.ErrNotFound
	}
	if len(candidates) > 1 {
		c.log.Warn().Str("title", title).Int("matches", len(candidates)).Int64("chosen_chat_id", target.ChatID).Msg("ambiguous claim title, using oldest pending match")
	}

	status, err := c.bot.MemberStatus(ctx, target.ChatID, tgID)
	if err != nil {
		return nil, err
	}
	if !isChannelAdmin(status) {
		return nil, domain.ErrNotChannelOwner
	}

	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err = c.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		// Re-read inside the transaction: a concurrent claim must lose.
		fresh, err := c.channels.FindByID(ctx, tx, target.ID)
		if err != nil {
			return err
		}
		if err := fresh.Claim(tgID); err != nil {
			return err
		}
		if err := c.channels.Save(ctx, tx, fresh); err != nil {
			return err
		}
		target = fresh
		return nil
	})
	return target, err
}

func (c *channelUC) OwnedActive(ctx context.Context, tgID int64) ([]*model.Channel, error) {
	defer logging.TraceDuration(c.log, "ChannelUC.OwnedActive")()
	return c.channels.FindActiveByOwner(ctx, repository.NoTX, tgID)
}

func (c *channelUC) ByID(ctx context.Context, id string) (*model.Channel, error) {
	defer logging.TraceDuration(c.log, "ChannelUC.ByID")()
	return c.channels.FindByID(ctx, repository.NoTX, id)
}

func (c *channelUC) IsOwner(ctx context.Context, tgID int64, channelID string) (bool, error) {
	ch, err := c.channels.FindByID(ctx, repository.NoTX, channelID)
	if err != nil {
		return false, err
	}
	return ch.OwnerID != nil && *ch.OwnerID == tgID && ch.ClaimStatus == model.ClaimClaimed, nil
}

func (c *channelUC) CanSendTo(ctx context.Context, tgID int64, channelID string) (bool, error) {
	defer logging.TraceDuration(c.log, "ChannelUC.CanSendTo")()

	ch, err := c.channels.FindByID(ctx, repository.NoTX, channelID)
	if err != nil {
		return false, err
	}
	if !ch.IsActive || ch.OwnerID == nil || *ch.OwnerID != tgID {
		return false, nil
	}
	// The bot must be an administrator itself or sendMessage to the
	// channel will fail anyway.
	botStatus, err := c.bot.MemberStatus(ctx, ch.ChatID, c.bot.BotID())
	if err != nil {
		return false, err
	}
	if botStatus != "administrator" {
		return false, nil
	}
	status, err := c.bot.MemberStatus(ctx, ch.ChatID, tgID)
	if err != nil {
		return false, err
	}
	return isChannelAdmin(status), nil
}

func (c *channelUC) Deactivate(ctx context.Context, tgID int64, channelID string) error {
	defer logging.TraceDuration(c.log, "ChannelUC.Deactivate")()

	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	return c.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		ch, err := c.channels.FindByID(ctx, tx, channelID)
		if err != nil {
			return err
		}
		if ch.OwnerID == nil || *ch.OwnerID != tgID {
			return domain.ErrNotChannelOwner
		}
		ch.IsActive = false
		ch.UpdatedAt = time.Now()
		return c.channels.Save(ctx, tx, ch)
	})
}

func (c *channelUC) RefreshInfo(ctx context.Context, channelID string) (*model.Channel, error) {
	defer logging.TraceDuration(c.log, "ChannelUC.RefreshInfo")()

	ch, err := c.channels.FindByID(ctx, repository.NoTX, channelID)
	if err != nil {
		return nil, err
	}
	info, err := c.bot.ChatInfo(ctx, ch.ChatID)
	if err != nil {
		return nil, err
	}
	ch.Title = info.Title
	ch.Username = info.Username
	ch.Description = info.Description
	ch.InviteLink = info.InviteLink
	ch.MemberCount = info.MemberCount
	now := time.Now()
	ch.LastChecked = &now
	ch.UpdatedAt = now
	if err := c.channels.Save(ctx, repository.NoTX, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func (c *channelUC) ExpireStaleClaims(ctx context.Context) (int64, error) {
	defer logging.TraceDuration(c.log, "ChannelUC.ExpireStaleClaims")()
	return c.channels.ExpirePending(ctx, repository.NoTX, time.Now())
}
