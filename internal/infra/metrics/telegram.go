package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		usersRegisteredTotal,
		telegramUpdatesTotal,
		telegramCommandsReceivedTotal,
		telegramCallbacksReceivedTotal,
		telegramRateLimitTriggeredTotal,
		telegramSendErrorsTotal,
		postsPublishedTotal,
		webhookRejectedTotal,
	)
}

var (
	usersRegisteredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "users_registered_total",
			Help: "Total number of new users registered.",
		},
	)

	telegramUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_total",
			Help: "Incoming webhook updates by kind.",
		},
		[]string{"kind"}, // 'message', 'edited_message', 'channel_post', 'callback_query', 'other'
	)

	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming commands from users.",
		},
		[]string{"command"},
	)

	telegramCallbacksReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_callbacks_received_total",
			Help: "Counts inline button callbacks by decoded command.",
		},
		[]string{"command"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times users have been rate-limited.",
		},
	)

	telegramSendErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_send_errors_total",
			Help: "Outbound Bot API calls that failed.",
		},
	)

	postsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_published_total",
			Help: "Posts published to channels, labeled by outcome.",
		},
		[]string{"status"}, // 'ok', 'denied', 'failed'
	)

	webhookRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_rejected_total",
			Help: "Webhook requests dropped after secret token mismatch.",
		},
	)
)

func IncUsersRegistered() { usersRegisteredTotal.Inc() }

func IncTelegramUpdate(kind string) { telegramUpdatesTotal.WithLabelValues(norm(kind)).Inc() }

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncTelegramCallback(command string) {
	telegramCallbacksReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncRateLimitTriggered() { telegramRateLimitTriggeredTotal.Inc() }

func IncTelegramSendError() { telegramSendErrorsTotal.Inc() }

func IncPostPublished(status string) { postsPublishedTotal.WithLabelValues(norm(status)).Inc() }

func IncWebhookRejected() { webhookRejectedTotal.Inc() }
