//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"inline-post-bot/internal/domain"
	"inline-post-bot/internal/domain/model"
	"inline-post-bot/internal/domain/ports/adapter"
	"inline-post-bot/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// =============================
// Repositories
// =============================

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu      sync.RWMutex
	store   map[int64]*model.User // keyed by TelegramID
	SaveErr error                 // simulate save failures
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{store: make(map[int64]*model.User)}
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	if cp.ID == "" {
		cp.ID = uuid.NewString()
		u.ID = cp.ID
	}
	m.store[u.TelegramID] = &cp
	return nil
}

func (m *MockUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[tgID]
	if !ok || u.IsDeleted {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.ID == id && !u.IsDeleted {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Username == username && !u.IsDeleted {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) SoftDelete(ctx context.Context, tx repository.Tx, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[tgID]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsDeleted = true
	return nil
}

// ---- Mock ChannelRepository ----

type MockChannelRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Channel // keyed by ID
	SaveErr error
}

func NewMockChannelRepo() *MockChannelRepo {
	return &MockChannelRepo{store: make(map[string]*model.Channel)}
}

var _ repository.ChannelRepository = (*MockChannelRepo)(nil)

func (m *MockChannelRepo) Save(ctx context.Context, tx repository.Tx, c *model.Channel) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	if cp.ID == "" {
		cp.ID = uuid.NewString()
		c.ID = cp.ID
	}
	m.store[cp.ID] = &cp
	return nil
}

func (m *MockChannelRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok || c.IsDeleted {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockChannelRepo) FindByChatID(ctx context.Context, tx repository.Tx, chatID int64) (*model.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.store {
		if c.ChatID == chatID && !c.IsDeleted {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockChannelRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.store {
		if c.Username == username && !c.IsDeleted {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockChannelRepo) FindActiveByOwner(ctx context.Context, tx repository.Tx, ownerTgID int64) ([]*model.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Channel
	for _, c := range m.store {
		if c.OwnerID != nil && *c.OwnerID == ownerTgID && c.IsActive && !c.IsDeleted {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockChannelRepo) FindPendingByTitle(ctx context.Context, tx repository.Tx, title string) ([]*model.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Channel
	for _, c := range m.store {
		if c.Title == title && c.ClaimStatus == model.ClaimPending && !c.IsDeleted {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockChannelRepo) ExpirePending(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.store {
		if c.ClaimStatus == model.ClaimPending && c.ClaimExpiresAt != nil && c.ClaimExpiresAt.Before(now) {
			c.ClaimStatus = model.ClaimExpired
			n++
		}
	}
	return n, nil
}

// ---- Mock SessionRepository ----

type MockSessionRepo struct {
	mu    sync.RWMutex
	store map[string]*model.UserSession // keyed by ID
}

func NewMockSessionRepo() *MockSessionRepo {
	return &MockSessionRepo{store: make(map[string]*model.UserSession)}
}

var _ repository.SessionRepository = (*MockSessionRepo)(nil)

func (m *MockSessionRepo) Insert(ctx context.Context, tx repository.Tx, s *model.UserSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	if cp.ID == "" {
		cp.ID = uuid.NewString()
		s.ID = cp.ID
	}
	m.store[cp.ID] = &cp
	return nil
}

func (m *MockSessionRepo) Update(ctx context.Context, tx repository.Tx, s *model.UserSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[s.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *MockSessionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UserSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSessionRepo) FindActive(ctx context.Context, tx repository.Tx, tgID int64, state string) (*model.UserSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *model.UserSession
	for _, s := range m.store {
		if s.TelegramID != tgID || !s.IsActive {
			continue
		}
		if state != "" && s.State != state {
			continue
		}
		if best == nil || s.CreatedAt.After(best.CreatedAt) {
			best = s
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *MockSessionRepo) Deactivate(ctx context.Context, tx repository.Tx, tgID int64, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.store {
		if s.TelegramID != tgID || !s.IsActive {
			continue
		}
		if state != "" && s.State != state {
			continue
		}
		s.IsActive = false
	}
	return nil
}

func (m *MockSessionRepo) DeactivateExpired(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.store {
		if s.IsActive && !s.ExpiresAt.After(now) {
			s.IsActive = false
			n++
		}
	}
	return n, nil
}

// ActiveCount reports live sessions for assertions.
func (m *MockSessionRepo) ActiveCount(tgID int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.store {
		if s.TelegramID == tgID && s.IsActive {
			n++
		}
	}
	return n
}

// =============================
// Transaction manager
// =============================

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs the function immediately without a real transaction. Assign a
// custom WithTxFunc to exercise transactional behavior in a specific test.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// =============================
// Telegram adapter
// =============================

type sentMessage struct {
	ChatID int64
	Text   string
	Rows   [][]adapter.InlineButton
}

type MockTelegramBot struct {
	mu   sync.Mutex
	Sent []sentMessage

	// configurable behavior
	MemberStatusFunc func(ctx context.Context, chatID, userID int64) (string, error)
	ChatInfoFunc     func(ctx context.Context, chatID int64) (adapter.ChatInfo, error)

	Answered []string // callback IDs acked
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) BotID() int64 { return 99999 }

func (m *MockTelegramBot) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentMessage{ChatID: chatID, Text: text})
	return len(m.Sent), nil
}

func (m *MockTelegramBot) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentMessage{ChatID: chatID, Text: text, Rows: rows})
	return len(m.Sent), nil
}

func (m *MockTelegramBot) EditMessage(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentMessage{ChatID: chatID, Text: text, Rows: rows})
	return nil
}

func (m *MockTelegramBot) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return nil
}

func (m *MockTelegramBot) AnswerCallback(ctx context.Context, callbackID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Answered = append(m.Answered, callbackID)
	return nil
}

func (m *MockTelegramBot) MemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	if m.MemberStatusFunc != nil {
		return m.MemberStatusFunc(ctx, chatID, userID)
	}
	return "administrator", nil
}

func (m *MockTelegramBot) ChatInfo(ctx context.Context, chatID int64) (adapter.ChatInfo, error) {
	if m.ChatInfoFunc != nil {
		return m.ChatInfoFunc(ctx, chatID)
	}
	return adapter.ChatInfo{ID: chatID, Title: "Test Channel", Username: "testchan", MemberCount: 10}, nil
}

func (m *MockTelegramBot) SetWebhook(ctx context.Context, url, secretToken string, allowedUpdates []string) error {
	return nil
}

func (m *MockTelegramBot) DeleteWebhook(ctx context.Context, dropPending bool) error { return nil }

func (m *MockTelegramBot) WebhookInfo(ctx context.Context) (adapter.WebhookStatus, error) {
	return adapter.WebhookStatus{}, nil
}

// LastSent returns the most recent outgoing message, if any.
func (m *MockTelegramBot) LastSent() *sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	cp := m.Sent[len(m.Sent)-1]
	return &cp
}
