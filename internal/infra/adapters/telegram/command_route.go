package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"inline-post-bot/internal/domain/model"
	"inline-post-bot/internal/infra/metrics"
)

const helpText = `What I can do:

/newpost - compose a post with inline URL buttons
/mychannels - list and manage your channels
/claim - claim a channel you registered
/register - how to register a channel
/done - finish adding buttons
/cancel - abandon the current flow
/delete_me - remove your account and data

To publish somewhere, first post /register inside your channel, then /claim it here.`

func (r *Router) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"/start": func(ctx context.Context, msg *tgbotapi.Message, _ []string) error {
			// A fresh /start always abandons whatever flow was running.
			_ = r.sessionUC.Clear(ctx, msg.From.ID, "")
			name := strings.TrimSpace(msg.From.FirstName)
			greeting := "Welcome"
			if name != "" {
				greeting = "Welcome, " + name
			}
			return r.sendButtons(ctx, msg.Chat.ID,
				greeting+"! I post messages with inline URL buttons to your channels.",
				mainMenuKeyboard())
		},

		"/help": func(ctx context.Context, msg *tgbotapi.Message, _ []string) error {
			return r.send(ctx, msg.Chat.ID, helpText)
		},

		"/cancel": func(ctx context.Context, msg *tgbotapi.Message, _ []string) error {
			_ = r.sessionUC.Clear(ctx, msg.From.ID, "")
			return r.sendButtons(ctx, msg.Chat.ID, "Cancelled.", mainMenuKeyboard())
		},

		"/newpost": func(ctx context.Context, msg *tgbotapi.Message, _ []string) error {
			return r.startNewPost(ctx, msg.Chat.ID, msg.From.ID)
		},

		"/done": func(ctx context.Context, msg *tgbotapi.Message, _ []string) error {
			if !r.sessionUC.Has(ctx, msg.From.ID, stateAddingButtons) {
				return r.send(ctx, msg.Chat.ID, "Nothing to finish right now. Use /newpost to compose a post.")
			}
			return r.finishButtons(ctx, msg.Chat.ID, msg.From.ID)
		},

		"/mychannels": func(ctx context.Context, msg *tgbotapi.Message, _ []string) error {
			return r.sendChannelList(ctx, msg.Chat.ID, msg.From.ID, 0)
		},

		"/claim": func(ctx context.Context, msg *tgbotapi.Message, _ []string) error {
			return r.startClaim(ctx, msg.Chat.ID, msg.From.ID)
		},

		"/register": func(ctx context.Context, msg *tgbotapi.Message, _ []string) error {
			return r.send(ctx, msg.Chat.ID,
				"To register a channel:\n"+
					"1. Add me to the channel as an administrator with permission to post.\n"+
					"2. Post /register inside the channel.\n"+
					"3. Come back here, send /claim, and reply with the exact channel title within 24 hours.")
		},

		"/delete_me": func(ctx context.Context, msg *tgbotapi.Message, _ []string) error {
			rows := confirmKeyboard("delete")
			return r.sendButtons(ctx, msg.Chat.ID,
				"This removes your account and detaches your channels. Are you sure?", rows)
		},
	}
}

// startNewPost opens the post composition flow.
func (r *Router) startNewPost(ctx context.Context, chatID, tgID int64) error {
	if _, err := r.sessionUC.Create(ctx, tgID, stateCreatingPost, model.PostDraft{Layout: model.LayoutSingleColumn}); err != nil {
		r.log.Error().Err(err).Int64("tg_id", tgID).Msg("failed to open post session")
		return r.send(ctx, chatID, "Could not start a new post. Please try again.")
	}
	metrics.IncSessionOpened(stateCreatingPost)
	return r.send(ctx, chatID, "Send me the post text (up to 4096 characters).")
}

// startClaim opens the channel claim flow.
func (r *Router) startClaim(ctx context.Context, chatID, tgID int64) error {
	if _, err := r.sessionUC.Create(ctx, tgID, stateClaimingChannel, nil); err != nil {
		r.log.Error().Err(err).Int64("tg_id", tgID).Msg("failed to open claim session")
		return r.send(ctx, chatID, "Could not start the claim flow. Please try again.")
	}
	metrics.IncSessionOpened(stateClaimingChannel)
	return r.send(ctx, chatID, "Send me the exact title of the channel you registered.")
}
