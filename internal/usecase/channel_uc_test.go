//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"inline-post-bot/internal/domain"
	"inline-post-bot/internal/domain/model"
	"inline-post-bot/internal/domain/ports/adapter"
	"inline-post-bot/internal/usecase"
)

func TestChannelUseCase_RegisterFromChannelPost(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()
	mockTxManager := NewMockTxManager()

	t.Run("should create a pending channel with a claim window", func(t *testing.T) {
		// --- Arrange ---
		mockChannelRepo := NewMockChannelRepo()
		mockBot := &MockTelegramBot{}
		uc := usecase.NewChannelUseCase(mockChannelRepo, mockTxManager, mockBot, testLogger)

		// --- Act ---
		ch, created, err := uc.RegisterFromChannelPost(ctx, -1001234)

		// --- Assert ---
		if err != nil {
			t.Fatalf("RegisterFromChannelPost failed: %v", err)
		}
		if !created {
			t.Error("expected a first registration to report a new channel")
		}
		if ch.ClaimStatus != model.ClaimPending {
			t.Errorf("expected pending status, got %s", ch.ClaimStatus)
		}
		if ch.ClaimExpiresAt == nil {
			t.Fatal("expected a claim deadline")
		}
		window := time.Until(*ch.ClaimExpiresAt)
		if window < 23*time.Hour || window > 25*time.Hour {
			t.Errorf("expected roughly 24h claim window, got %v", window)
		}
		if ch.Title != "Test Channel" {
			t.Errorf("expected metadata from chat info, got title %q", ch.Title)
		}
	})

	t.Run("should refresh metadata on re-register", func(t *testing.T) {
		// --- Arrange ---
		mockChannelRepo := NewMockChannelRepo()
		mockBot := &MockTelegramBot{}
		uc := usecase.NewChannelUseCase(mockChannelRepo, mockTxManager, mockBot, testLogger)
		first, _, err := uc.RegisterFromChannelPost(ctx, -1005678)
		if err != nil {
			t.Fatalf("initial register failed: %v", err)
		}

		// --- Act ---
		mockBot.ChatInfoFunc = func(ctx context.Context, chatID int64) (adapter.ChatInfo, error) {
			return adapter.ChatInfo{ID: chatID, Title: "Renamed", MemberCount: 55}, nil
		}
		second, created, err := uc.RegisterFromChannelPost(ctx, -1005678)

		// --- Assert ---
		if err != nil {
			t.Fatalf("re-register failed: %v", err)
		}
		if created {
			t.Error("expected a re-register to report an existing channel")
		}
		if second.ID != first.ID {
			t.Error("expected the same channel row, not a duplicate")
		}
		if second.Title != "Renamed" || second.MemberCount != 55 {
			t.Errorf("expected refreshed metadata, got %+v", second)
		}
	})
}

func TestChannelUseCase_ClaimByTitle(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()
	mockTxManager := NewMockTxManager()

	t.Run("should bind the channel to a verified admin", func(t *testing.T) {
		// --- Arrange ---
		mockChannelRepo := NewMockChannelRepo()
		mockBot := &MockTelegramBot{}
		uc := usecase.NewChannelUseCase(mockChannelRepo, mockTxManager, mockBot, testLogger)
		if _, _, err := uc.RegisterFromChannelPost(ctx, -100111); err != nil {
			t.Fatalf("register: %v", err)
		}

		// --- Act ---
		ch, err := uc.ClaimByTitle(ctx, 42, "Test Channel")

		// --- Assert ---
		if err != nil {
			t.Fatalf("ClaimByTitle failed: %v", err)
		}
		if ch.ClaimStatus != model.ClaimClaimed {
			t.Errorf("expected claimed status, got %s", ch.ClaimStatus)
		}
		if ch.OwnerID == nil || *ch.OwnerID != 42 {
			t.Errorf("expected owner 42, got %v", ch.OwnerID)
		}
		if ch.ClaimExpiresAt != nil {
			t.Error("expected the claim deadline to be cleared")
		}
	})

	t.Run("should refuse a claimer who is not a channel admin", func(t *testing.T) {
		// --- Arrange ---
		mockChannelRepo := NewMockChannelRepo()
		mockBot := &MockTelegramBot{
			MemberStatusFunc: func(ctx context.Context, chatID, userID int64) (string, error) {
				return "member", nil
			},
		}
		uc := usecase.NewChannelUseCase(mockChannelRepo, mockTxManager, mockBot, testLogger)
		if _, _, err := uc.RegisterFromChannelPost(ctx, -100222); err != nil {
			t.Fatalf("register: %v", err)
		}

		// --- Act ---
		_, err := uc.ClaimByTitle(ctx, 42, "Test Channel")

		// --- Assert ---
		if !errors.Is(err, domain.ErrNotChannelOwner) {
			t.Fatalf("expected ErrNotChannelOwner, got %v", err)
		}
	})

	t.Run("should pick the oldest pending match on ambiguous titles", func(t *testing.T) {
		// --- Arrange ---
		mockChannelRepo := NewMockChannelRepo()
		mockBot := &MockTelegramBot{}
		uc := usecase.NewChannelUseCase(mockChannelRepo, mockTxManager, mockBot, testLogger)

		older, _ := model.NewPendingChannel(-100333, "News", "", "")
		older.CreatedAt = time.Now().Add(-2 * time.Hour)
		mockChannelRepo.Save(ctx, nil, older)
		newer, _ := model.NewPendingChannel(-100444, "News", "", "")
		mockChannelRepo.Save(ctx, nil, newer)

		// --- Act ---
		ch, err := uc.ClaimByTitle(ctx, 7, "News")

		// --- Assert ---
		if err != nil {
			t.Fatalf("ClaimByTitle failed: %v", err)
		}
		if ch.ChatID != -100333 {
			t.Errorf("expected the oldest pending channel, got chat %d", ch.ChatID)
		}
	})

	t.Run("should not find an expired claim window", func(t *testing.T) {
		// --- Arrange ---
		mockChannelRepo := NewMockChannelRepo()
		mockBot := &MockTelegramBot{}
		uc := usecase.NewChannelUseCase(mockChannelRepo, mockTxManager, mockBot, testLogger)

		ch, _ := model.NewPendingChannel(-100555, "Stale", "", "")
		past := time.Now().Add(-time.Hour)
		ch.ClaimExpiresAt = &past
		mockChannelRepo.Save(ctx, nil, ch)

		// --- Act ---
		_, err := uc.ClaimByTitle(ctx, 7, "Stale")

		// --- Assert ---
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for expired window, got %v", err)
		}
	})
}

func TestChannelUseCase_CanSendTo(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()
	mockTxManager := NewMockTxManager()

	setup := func(mockBot *MockTelegramBot) (*MockChannelRepo, usecase.ChannelUseCase, *model.Channel) {
		mockChannelRepo := NewMockChannelRepo()
		uc := usecase.NewChannelUseCase(mockChannelRepo, mockTxManager, mockBot, testLogger)
		ch, _ := model.NewPendingChannel(-100666, "Owned", "", "")
		ch.Claim(42)
		mockChannelRepo.Save(ctx, nil, ch)
		return mockChannelRepo, uc, ch
	}

	t.Run("owner with live admin rights can send", func(t *testing.T) {
		_, uc, ch := setup(&MockTelegramBot{})
		ok, err := uc.CanSendTo(ctx, 42, ch.ID)
		if err != nil {
			t.Fatalf("CanSendTo failed: %v", err)
		}
		if !ok {
			t.Error("expected owner to be allowed")
		}
	})

	t.Run("non-owner is refused without a Telegram call", func(t *testing.T) {
		called := false
		bot := &MockTelegramBot{MemberStatusFunc: func(ctx context.Context, chatID, userID int64) (string, error) {
			called = true
			return "administrator", nil
		}}
		_, uc, ch := setup(bot)
		ok, err := uc.CanSendTo(ctx, 43, ch.ID)
		if err != nil {
			t.Fatalf("CanSendTo failed: %v", err)
		}
		if ok {
			t.Error("expected non-owner to be refused")
		}
		if called {
			t.Error("ownership should be checked before hitting Telegram")
		}
	})

	t.Run("bot demoted in the channel blocks sending", func(t *testing.T) {
		bot := &MockTelegramBot{}
		bot.MemberStatusFunc = func(ctx context.Context, chatID, userID int64) (string, error) {
			if userID == bot.BotID() {
				return "member", nil
			}
			return "administrator", nil
		}
		_, uc, ch := setup(bot)
		ok, err := uc.CanSendTo(ctx, 42, ch.ID)
		if err != nil {
			t.Fatalf("CanSendTo failed: %v", err)
		}
		if ok {
			t.Error("expected sending to be refused while the bot is not an admin")
		}
	})

	t.Run("owner demoted on Telegram loses access", func(t *testing.T) {
		bot := &MockTelegramBot{MemberStatusFunc: func(ctx context.Context, chatID, userID int64) (string, error) {
			return "member", nil
		}}
		_, uc, ch := setup(bot)
		ok, err := uc.CanSendTo(ctx, 42, ch.ID)
		if err != nil {
			t.Fatalf("CanSendTo failed: %v", err)
		}
		if ok {
			t.Error("expected demoted owner to be refused")
		}
	})
}

func TestChannelUseCase_ExpireStaleClaims(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()
	mockTxManager := NewMockTxManager()

	t.Run("should expire only windows that passed", func(t *testing.T) {
		// --- Arrange ---
		mockChannelRepo := NewMockChannelRepo()
		mockBot := &MockTelegramBot{}
		uc := usecase.NewChannelUseCase(mockChannelRepo, mockTxManager, mockBot, testLogger)

		stale, _ := model.NewPendingChannel(-100777, "A", "", "")
		past := time.Now().Add(-time.Minute)
		stale.ClaimExpiresAt = &past
		mockChannelRepo.Save(ctx, nil, stale)
		fresh, _ := model.NewPendingChannel(-100888, "B", "", "")
		mockChannelRepo.Save(ctx, nil, fresh)

		// --- Act ---
		n, err := uc.ExpireStaleClaims(ctx)

		// --- Assert ---
		if err != nil {
			t.Fatalf("ExpireStaleClaims failed: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 expired claim, got %d", n)
		}
	})
}
