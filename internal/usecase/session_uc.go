package usecase

import (
	"context"
	"encoding/json"
	"time"

	"inline-post-bot/internal/domain"
	"inline-post-bot/internal/domain/model"
	"inline-post-bot/internal/domain/ports/repository"
	"inline-post-bot/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ SessionUseCase = (*sessionUC)(nil)

// SessionUseCase manages the single active conversation session per user.
// Sessions are soft state: losing one degrades a flow, never data.
type SessionUseCase interface {
	// Create opens a fresh session in the given state, deactivating any
	// session the user already had. A nil payload stores no data.
	Create(ctx context.Context, tgID int64, state string, payload any) (*model.UserSession, error)
	// Active returns the user's current session, lazily deactivating it
	// when its TTL has passed. Returns domain.ErrNoActiveSession when the
	// user has none.
	Active(ctx context.Context, tgID int64) (*model.UserSession, error)
	// Data unmarshals the payload of the active session in `state` into
	// out. Reports false when there is no live session in that state or
	// the payload cannot be decoded.
	Data(ctx context.Context, tgID int64, state string, out any) bool
	// UpdateData replaces the payload of the active session in `state`.
	// A missing session is logged and ignored; the conversation recovers
	// on the next command.
	UpdateData(ctx context.Context, tgID int64, state string, payload any) error
	// Transition moves the active session to a new state, optionally
	// replacing the payload (nil keeps the existing one).
	Transition(ctx context.Context, tgID int64, newState string, payload any) error
	// Clear deactivates the user's active sessions. A non-empty state
	// scopes the clear to sessions in that state; empty clears them all.
	Clear(ctx context.Context, tgID int64, state string) error
	// ClearExpired sweeps sessions past their TTL. Used by the scheduler.
	ClearExpired(ctx context.Context) (int64, error)
	Has(ctx context.Context, tgID int64, state string) bool
}

type sessionUC struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	tm       repository.TransactionManager
	ttl      time.Duration
	log      *zerolog.Logger
}

func NewSessionUseCase(sessions repository.SessionRepository, users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *sessionUC {
	return &sessionUC{
		sessions: sessions,
		users:    users,
		tm:       tm,
		ttl:      model.DefaultSessionTTL,
		log:      logger,
	}
}

func (s *sessionUC) Create(ctx context.Context, tgID int64, state string, payload any) (*model.UserSession, error) {
	defer logging.TraceDuration(s.log, "SessionUC.Create")()

	data, err := encodePayload(payload)
	if err != nil {
		return nil, err
	}

	var sess *model.UserSession
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err = s.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		usr, err := s.users.FindByTelegramID(ctx, tx, tgID)
		if err != nil {
			return err
		}
		// One live session per user: retire the old one before inserting.
		if err := s.sessions.Deactivate(ctx, tx, tgID, ""); err != nil {
			return err
		}
		ns, err := model.NewUserSession(usr.ID, tgID, state, data, s.ttl)
		if err != nil {
			return err
		}
		if err := s.sessions.Insert(ctx, tx, ns); err != nil {
			return err
		}
		sess = ns
		return nil
	})
	return sess, err
}

func (s *sessionUC) Active(ctx context.Context, tgID int64) (*model.UserSession, error) {
	defer logging.TraceDuration(s.log, "SessionUC.Active")()
	return s.active(ctx, tgID, "")
}

// active fetches the newest active session, filtering TTL on read. Expired
// rows are deactivated in place so the sweep has less to do.
func (s *sessionUC) active(ctx context.Context, tgID int64, state string) (*model.UserSession, error) {
	sess, err := s.sessions.FindActive(ctx, repository.NoTX, tgID, state)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNoActiveSession
		}
		return nil, err
	}
	if sess.ExpiredAt(time.Now()) {
		if derr := s.sessions.Deactivate(ctx, repository.NoTX, tgID, sess.State); derr != nil {
			s.log.Warn().Err(derr).Int64("tg_id", tgID).Msg("failed to deactivate expired session")
		}
		return nil, domain.ErrNoActiveSession
	}
	return sess, nil
}

func (s *sessionUC) Data(ctx context.Context, tgID int64, state string, out any) bool {
	sess, err := s.active(ctx, tgID, state)
	if err != nil {
		return false
	}
	if sess.Data == nil {
		return false
	}
	if err := json.Unmarshal([]byte(*sess.Data), out); err != nil {
		s.log.Warn().Err(err).Int64("tg_id", tgID).Str("state", state).Msg("session payload decode failed")
		return false
	}
	return true
}

func (s *sessionUC) UpdateData(ctx context.Context, tgID int64, state string, payload any) error {
	defer logging.TraceDuration(s.log, "SessionUC.UpdateData")()

	sess, err := s.active(ctx, tgID, state)
	if err != nil {
		if err == domain.ErrNoActiveSession {
			s.log.Warn().Int64("tg_id", tgID).Str("state", state).Msg("update on missing session ignored")
			return nil
		}
		return err
	}
	data, err := encodePayload(payload)
	if err != nil {
		return err
	}
	sess.Data = data
	sess.UpdatedAt = time.Now()
	return s.sessions.Update(ctx, repository.NoTX, sess)
}

func (s *sessionUC) Transition(ctx context.Context, tgID int64, newState string, payload any) error {
	defer logging.TraceDuration(s.log, "SessionUC.Transition")()

	sess, err := s.active(ctx, tgID, "")
	if err != nil {
		return err
	}
	if payload != nil {
		data, err := encodePayload(payload)
		if err != nil {
			return err
		}
		sess.Data = data
	}
	sess.State = newState
	sess.UpdatedAt = time.Now()
	return s.sessions.Update(ctx, repository.NoTX, sess)
}

func (s *sessionUC) Clear(ctx context.Context, tgID int64, state string) error {
	defer logging.TraceDuration(s.log, "SessionUC.Clear")()
	return s.sessions.Deactivate(ctx, repository.NoTX, tgID, state)
}

func (s *sessionUC) ClearExpired(ctx context.Context) (int64, error) {
	defer logging.TraceDuration(s.log, "SessionUC.ClearExpired")()
	return s.sessions.DeactivateExpired(ctx, repository.NoTX, time.Now())
}

func (s *sessionUC) Has(ctx context.Context, tgID int64, state string) bool {
	_, err := s.active(ctx, tgID, state)
	return err == nil
}

func encodePayload(payload any) (*string, error) {
	if payload == nil {
		return nil, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	str := string(b)
	return &str, nil
}
