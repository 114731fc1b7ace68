package telegram

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"inline-post-bot/internal/domain"
	"inline-post-bot/internal/domain/model"
	"inline-post-bot/internal/domain/ports/adapter"
	"inline-post-bot/internal/infra/metrics"
	red "inline-post-bot/internal/infra/redis"
	"inline-post-bot/internal/usecase"
)

type commandHandler func(ctx context.Context, msg *tgbotapi.Message, args []string) error
type callbackHandler func(ctx context.Context, chatID, tgID int64, params []string) error
type textHandler func(ctx context.Context, msg *tgbotapi.Message, sess *model.UserSession) error

// Router turns decoded webhook updates into conversation steps. The three
// dispatch tables (commands, callbacks, state handlers) are resolved once at
// construction; an unknown key falls through to a generic reply.
type Router struct {
	bot       adapter.TelegramBotAdapter
	userUC    usecase.UserUseCase
	sessionUC usecase.SessionUseCase
	channelUC usecase.ChannelUseCase
	limiter   *red.RateLimiter
	cmdLimit  int
	log       *zerolog.Logger

	commands   map[string]commandHandler
	callbacks  map[string]callbackHandler
	cbPrefixes []struct {
		Command string
		Fn      callbackHandler
	}
	states map[string]textHandler
}

func NewRouter(
	bot adapter.TelegramBotAdapter,
	userUC usecase.UserUseCase,
	sessionUC usecase.SessionUseCase,
	channelUC usecase.ChannelUseCase,
	limiter *red.RateLimiter,
	commandsPerMinute int,
	logger *zerolog.Logger,
) *Router {
	if commandsPerMinute <= 0 {
		commandsPerMinute = 20
	}
	r := &Router{
		bot:       bot,
		userUC:    userUC,
		sessionUC: sessionUC,
		channelUC: channelUC,
		limiter:   limiter,
		cmdLimit:  commandsPerMinute,
		log:       logger,
	}
	r.commands = r.commandRoutes()
	r.callbacks = r.cbRoutes()
	r.cbPrefixes = r.cbPrefixRoutes()
	r.states = r.stateRoutes()
	return r
}

// HandleUpdate is the single entry point fed by the webhook handler. It
// never returns transport-level errors upward; failures are logged and the
// update is considered consumed, so Telegram does not redeliver.
func (r *Router) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		metrics.IncTelegramUpdate("callback_query")
		if err := r.handleCallback(ctx, update.CallbackQuery); err != nil {
			r.log.Error().Err(err).Msg("callback handling failed")
		}

	case update.Message != nil:
		metrics.IncTelegramUpdate("message")
		if err := r.handleMessage(ctx, update.Message); err != nil {
			r.log.Error().Err(err).Msg("message handling failed")
		}

	case update.EditedMessage != nil:
		// An edited message re-enters the flow as if sent fresh.
		metrics.IncTelegramUpdate("edited_message")
		if err := r.handleMessage(ctx, update.EditedMessage); err != nil {
			r.log.Error().Err(err).Msg("edited message handling failed")
		}

	case update.ChannelPost != nil:
		metrics.IncTelegramUpdate("channel_post")
		if err := r.handleChannelPost(ctx, update.ChannelPost); err != nil {
			r.log.Error().Err(err).Msg("channel post handling failed")
		}

	default:
		metrics.IncTelegramUpdate("other")
	}
}

func (r *Router) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	from := msg.From
	if from == nil || from.IsBot || from.ID == r.bot.BotID() {
		return nil
	}
	tgID := from.ID

	fields := strings.Fields(msg.Text)
	command := "message"
	if len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
		// strip a /cmd@BotName suffix
		command = strings.SplitN(fields[0], "@", 2)[0]
	}

	if !r.allow(ctx, tgID, command) {
		_, err := r.bot.SendMessage(ctx, msg.Chat.ID, "Rate limit exceeded. Please try again later.")
		return err
	}

	if _, err := r.userUC.GetOrCreate(ctx, tgID, usecase.Profile{
		Username:     from.UserName,
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		LanguageCode: from.LanguageCode,
	}); err != nil {
		r.log.Error().Err(err).Int64("tg_id", tgID).Msg("user upsert failed")
		_, serr := r.bot.SendMessage(ctx, msg.Chat.ID, "Something went wrong. Please try again.")
		return serr
	}

	if command != "message" {
		metrics.IncTelegramCommand(command)
		if fn, ok := r.commands[command]; ok {
			return fn(ctx, msg, fields[1:])
		}
		_, err := r.bot.SendMessage(ctx, msg.Chat.ID, "Unknown command. See /help.")
		return err
	}

	return r.handleText(ctx, msg)
}

// handleText routes plain text by the active session's state.
func (r *Router) handleText(ctx context.Context, msg *tgbotapi.Message) error {
	sess, err := r.sessionUC.Active(ctx, msg.From.ID)
	if err != nil {
		if err == domain.ErrNoActiveSession {
			_, serr := r.bot.SendMessage(ctx, msg.Chat.ID, "I wasn't expecting that. Use /newpost to compose a post, or /help for the full list of commands.")
			return serr
		}
		return err
	}
	if fn, ok := r.states[sess.State]; ok {
		return fn(ctx, msg, sess)
	}
	r.log.Warn().Str("state", sess.State).Int64("tg_id", msg.From.ID).Msg("no handler for session state")
	_ = r.sessionUC.Clear(ctx, msg.From.ID, "")
	_, serr := r.bot.SendMessage(ctx, msg.Chat.ID, "That conversation got out of sync, so I reset it. Use /newpost to start over.")
	return serr
}

func (r *Router) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query.From == nil || query.From.IsBot {
		return nil
	}
	// Stop the Telegram spinner when we return.
	defer func() { _ = r.bot.AnswerCallback(context.WithoutCancel(ctx), query.ID, "") }()

	tgID := query.From.ID
	chatID := tgID
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	}

	data := strings.TrimSpace(query.Data)
	command, params := DecodeCallback(data)
	metrics.IncTelegramCallback(command)

	if !r.allow(ctx, tgID, "cb:"+command) {
		_, err := r.bot.SendMessage(ctx, chatID, "Rate limit exceeded. Please try again later.")
		return err
	}

	// Exact matches win over decoded commands: menu buttons carry fixed
	// data strings that the codec would otherwise split.
	if fn, ok := r.callbacks[data]; ok {
		return fn(ctx, chatID, tgID, nil)
	}
	for _, pr := range r.cbPrefixes {
		if pr.Command == command {
			return pr.Fn(ctx, chatID, tgID, params)
		}
	}
	r.log.Warn().Str("data", data).Int64("tg_id", tgID).Msg("unknown callback data")
	return nil
}

// handleChannelPost only reacts to /register posts; everything else the bot
// observes in channels is ignored.
func (r *Router) handleChannelPost(ctx context.Context, post *tgbotapi.Message) error {
	text := strings.TrimSpace(post.Text)
	cmd := strings.SplitN(strings.SplitN(text, " ", 2)[0], "@", 2)[0]
	if cmd != "/register" {
		return nil
	}

	ch, created, err := r.channelUC.RegisterFromChannelPost(ctx, post.Chat.ID)
	if err != nil {
		r.log.Error().Err(err).Int64("chat_id", post.Chat.ID).Msg("channel registration failed")
		return err
	}
	if created {
		metrics.IncChannelRegistered()
	}

	// Tidy up the command post when we can; not all setups grant delete rights.
	if err := r.bot.DeleteMessage(ctx, post.Chat.ID, post.MessageID); err != nil {
		r.log.Debug().Err(err).Int64("chat_id", post.Chat.ID).Msg("could not delete /register post")
	}

	reply := "This channel was already registered as \"" + ch.Title + "\"; I refreshed its details.\n" +
		"If nobody claimed it yet, open a private chat with me and send /claim."
	if created {
		reply = "This channel is registered as \"" + ch.Title + "\".\n" +
			"To finish, open a private chat with me, send /claim, and reply with this exact channel title within 24 hours."
	}
	_, err = r.bot.SendMessage(ctx, post.Chat.ID, reply)
	return err
}

func (r *Router) allow(ctx context.Context, tgID int64, key string) bool {
	if r.limiter == nil {
		return true
	}
	allowed, err := r.limiter.Allow(ctx, red.UserCommandKey(tgID, key), r.cmdLimit, time.Minute)
	if err != nil {
		r.log.Warn().Err(err).Msg("rate limit check failed")
		return true
	}
	if !allowed {
		metrics.IncRateLimitTriggered()
	}
	return allowed
}

// send wraps SendMessage with error metrics; handlers use it when the reply
// is the last step.
func (r *Router) send(ctx context.Context, chatID int64, text string) error {
	if _, err := r.bot.SendMessage(ctx, chatID, text); err != nil {
		metrics.IncTelegramSendError()
		return err
	}
	return nil
}

func (r *Router) sendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	if _, err := r.bot.SendButtons(ctx, chatID, text, rows); err != nil {
		metrics.IncTelegramSendError()
		return err
	}
	return nil
}
