package usecase

import (
	"context"

	"inline-post-bot/internal/domain/model"
	"inline-post-bot/internal/domain/ports/repository"
	"inline-post-bot/internal/infra/logging"
	"inline-post-bot/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// Profile carries the mutable Telegram profile fields we mirror locally.
type Profile struct {
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
	IsPremium    bool
}

// UserUseCase exposes user-related operations used by the bot flows.
type UserUseCase interface {
	// GetOrCreate upserts the sender of an update: fetches the user by
	// Telegram ID, syncs the stored profile snapshot, and creates the row
	// when seen for the first time.
	GetOrCreate(ctx context.Context, tgID int64, p Profile) (*model.User, error)
	ByTelegramID(ctx context.Context, tgID int64) (*model.User, error)
	// SoftDelete flags the user deleted and tears down any active sessions.
	SoftDelete(ctx context.Context, tgID int64) error
}

type userUC struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, sessions repository.SessionRepository, tm repository.TransactionManager, logger *zerolog.Logger) *userUC {
	return &userUC{
		users:    users,
		sessions: sessions,
		tm:       tm,
		log:      logger,
	}
}

func (u *userUC) GetOrCreate(ctx context.Context, tgID int64, p Profile) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.GetOrCreate")()

	var user *model.User
	// The read (find) and write (save) must act as one atomic operation so
	// two concurrent updates from the same user cannot both insert.
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		usr, err := u.users.FindByTelegramID(ctx, tx, tgID)
		if err == nil {
			changed := usr.SyncProfile(p.Username, p.FirstName, p.LastName, p.LanguageCode, p.IsPremium)
			usr.Touch()
			if err = u.users.Save(ctx, tx, usr); err != nil {
				u.log.Error().Err(err).Int64("tg_id", tgID).Bool("profile_changed", changed).Msg("failed to update user")
				return err
			}
			user = usr
			return nil
		}
		if !isNotFound(err) {
			return err
		}

		nu, err := model.NewUser("", tgID, p.Username, p.FirstName, p.LastName)
		if err != nil {
			return err
		}
		nu.LanguageCode = p.LanguageCode
		nu.IsPremium = p.IsPremium
		if err := u.users.Save(ctx, tx, nu); err != nil {
			return err
		}
		metrics.IncUsersRegistered()
		user = nu
		return nil
	})

	return user, err
}

func (u *userUC) ByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.ByTelegramID")()
	return u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
}

func (u *userUC) SoftDelete(ctx context.Context, tgID int64) error {
	defer logging.TraceDuration(u.log, "UserUC.SoftDelete")()

	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	return u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		if err := u.users.SoftDelete(ctx, tx, tgID); err != nil {
			return err
		}
		return u.sessions.Deactivate(ctx, tx, tgID, "")
	})
}
