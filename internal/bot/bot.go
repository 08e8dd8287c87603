// Package bot implements the core bot functionality: the daily delivery
// scheduler and the lifecycle orchestration of the Telegram listener,
// the optional webhook server, and the scheduler.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/Senerol1/raven-daily-tasks-bot/internal/config"
	"github.com/Senerol1/raven-daily-tasks-bot/internal/telegram"
)

// Bot manages the components' lifecycle: it runs the update listener
// (long polling or webhook), arms the scheduler, and tears everything
// down on context cancellation.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	tgBot     *tgbot.Bot
	webhook   *telegram.WebhookServer // nil means long polling
	scheduler *Scheduler
}

// NewBot creates the orchestrator. webhook may be nil, in which case the
// bot long-polls for updates.
func NewBot(logger *slog.Logger, cfg *config.Config, tgBot *tgbot.Bot, webhook *telegram.WebhookServer, scheduler *Scheduler) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		tgBot:     tgBot,
		webhook:   webhook,
		scheduler: scheduler,
	}
}

// Run starts all components and blocks until the context is cancelled or
// a component fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if b.webhook != nil {
			b.logger.Info("Starting webhook listener...", "listen_addr", b.cfg.ListenAddr)
			if err := b.webhook.Run(gCtx); err != nil {
				return fmt.Errorf("webhook listener failed: %w", err)
			}
			b.logger.Info("Webhook listener stopped.")
			return nil
		}

		b.logger.Info("Starting long-polling listener...")
		b.tgBot.Start(gCtx)
		b.logger.Info("Long-polling listener stopped.")

		if gCtx.Err() == nil {
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		b.logger.Info("Arming scheduler from persisted state...")
		if err := b.scheduler.Rearm(gCtx); err != nil {
			return fmt.Errorf("failed to arm scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := b.scheduler.Shutdown(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
