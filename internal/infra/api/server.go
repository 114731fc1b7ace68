// File: internal/infra/api/server.go
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"inline-post-bot/internal/config"
	"inline-post-bot/internal/domain/ports/adapter"
	"inline-post-bot/internal/infra/metrics"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// UpdateHandler consumes decoded Telegram updates. Satisfied by the router.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// Server is the public-facing webhook receiver. Telegram retries any
// non-2xx response, so the webhook endpoint always acks with 200 and
// drops updates that fail validation.
type Server struct {
	cfg     *config.BotConfig
	updates UpdateHandler
	log     *zerolog.Logger
	srv     *http.Server
}

func NewServer(cfg *config.BotConfig, updates UpdateHandler, logger *zerolog.Logger) *Server {
	srvLog := logger.With().Str("component", "WebhookServer").Logger()
	return &Server{cfg: cfg, updates: updates, log: &srvLog}
}

// Handler builds the route tree. Exposed separately from Start for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(s.log))
	r.Use(TraceID())
	r.Use(RequestLog(s.log))
	r.Use(Timeout(30 * time.Second))

	r.Post("/api/webhook", s.handleWebhook)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return r
}

func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.Port).Msg("webhook server listening")
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.cfg.SecretToken != "" {
		got := r.Header.Get(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.SecretToken)) != 1 {
			metrics.IncWebhookRejected()
			s.log.Warn().Str("remote", r.RemoteAddr).Msg("webhook secret token mismatch")
			w.WriteHeader(http.StatusOK)
			return
		}
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		metrics.IncWebhookRejected()
		s.log.Warn().Err(err).Msg("malformed webhook payload")
		w.WriteHeader(http.StatusOK)
		return
	}

	s.updates.HandleUpdate(r.Context(), update)
	w.WriteHeader(http.StatusOK)
}

// AdminServer exposes operational endpoints on a separate port: webhook
// management against the Bot API, health and Prometheus metrics. It must
// not be reachable from the public internet.
type AdminServer struct {
	port int
	cfg  *config.BotConfig
	bot  adapter.TelegramBotAdapter
	log  *zerolog.Logger
	srv  *http.Server
}

func NewAdminServer(port int, cfg *config.BotConfig, bot adapter.TelegramBotAdapter, logger *zerolog.Logger) *AdminServer {
	admLog := logger.With().Str("component", "AdminServer").Logger()
	return &AdminServer{port: port, cfg: cfg, bot: bot, log: &admLog}
}

func (s *AdminServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(s.log))
	r.Use(TraceID())
	r.Use(RequestLog(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/webhook/set", s.handleSetWebhook)
	r.Post("/api/webhook/delete", s.handleDeleteWebhook)
	r.Get("/api/webhook/status", s.handleWebhookStatus)
	return r
}

func (s *AdminServer) Start() error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", s.port).Msg("admin server listening")
	return s.srv.ListenAndServe()
}

func (s *AdminServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *AdminServer) handleSetWebhook(w http.ResponseWriter, r *http.Request) {
	if s.cfg.WebhookURL == "" {
		writeError(w, http.StatusBadRequest, "bot.webhook_url is not configured")
		return
	}
	url := s.cfg.WebhookURL + "/api/webhook"
	if err := s.bot.SetWebhook(r.Context(), url, s.cfg.SecretToken, s.cfg.AllowedUpdates); err != nil {
		s.log.Error().Err(err).Msg("setWebhook failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "url": url})
}

func (s *AdminServer) handleDeleteWebhook(w http.ResponseWriter, r *http.Request) {
	dropPending := r.URL.Query().Get("drop_pending") == "true"
	if err := s.bot.DeleteWebhook(r.Context(), dropPending); err != nil {
		s.log.Error().Err(err).Msg("deleteWebhook failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "drop_pending": dropPending})
}

func (s *AdminServer) handleWebhookStatus(w http.ResponseWriter, r *http.Request) {
	info, err := s.bot.WebhookInfo(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("getWebhookInfo failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"url":                    info.URL,
		"has_custom_certificate": info.HasCustomCertificate,
		"pending_update_count":   info.PendingUpdateCount,
		"last_error_date":        info.LastErrorDate,
		"last_error_message":     info.LastErrorMessage,
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"ok": false, "error": msg})
}
