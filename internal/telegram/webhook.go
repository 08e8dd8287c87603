package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-telegram/bot"
)

// WebhookServer serves Telegram webhook updates over HTTP when a public
// base URL is configured. Updates are posted to /<token> (the token acts
// as the shared secret in the path) and a plain health probe answers on /.
type WebhookServer struct {
	bot    *bot.Bot
	logger *slog.Logger
	server *http.Server
	url    string
}

// NewWebhookServer builds the webhook HTTP server. baseURL is the
// externally reachable address, listenAddr the local bind address.
func NewWebhookServer(b *bot.Bot, baseURL, listenAddr, token string, logger *slog.Logger) *WebhookServer {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "webhook_server")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("POST /"+token, b.WebhookHandler())

	return &WebhookServer{
		bot:    b,
		logger: log,
		url:    strings.TrimRight(baseURL, "/") + "/" + token,
		server: &http.Server{
			Addr:              listenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run registers the webhook with Telegram, serves HTTP, and processes
// queued updates until ctx is cancelled. The webhook registration is
// removed on the way out.
func (s *WebhookServer) Run(ctx context.Context) error {
	if _, err := s.bot.SetWebhook(ctx, &bot.SetWebhookParams{URL: s.url}); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	s.logger.Info("Webhook registered", "listen_addr", s.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Blocks until ctx is done, consuming updates queued by the handler.
	go s.bot.StartWebhook(ctx)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		s.logger.Error("Webhook server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := s.bot.DeleteWebhook(shutdownCtx, &bot.DeleteWebhookParams{}); err != nil {
		s.logger.Warn("Failed to delete webhook during shutdown", "error", err)
	}
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error", "error", err)
	}

	return runErr
}
