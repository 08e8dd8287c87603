// Package main contains the entrypoint for the daily tasks bot.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"

	"github.com/Senerol1/raven-daily-tasks-bot/internal/bot"
	"github.com/Senerol1/raven-daily-tasks-bot/internal/bot/handlers"
	"github.com/Senerol1/raven-daily-tasks-bot/internal/config"
	"github.com/Senerol1/raven-daily-tasks-bot/internal/journal"
	"github.com/Senerol1/raven-daily-tasks-bot/internal/logger"
	"github.com/Senerol1/raven-daily-tasks-bot/internal/state"
	"github.com/Senerol1/raven-daily-tasks-bot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger,
// state store, journal, telegram bot, scheduler), handles graceful
// shutdown, and returns an exit code.
func run(ctx context.Context) int {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.New(cfg.LogLevel, cfg.LogJSON)
	log.Info("Logger initialized", "level", cfg.LogLevel, "json", cfg.LogJSON)

	stateStore := state.NewStore(cfg.StatePath, cfg.DefaultSendTime, cfg.DefaultTimezone, log)

	db, err := journal.NewDB(cfg.DBPath)
	if err != nil {
		log.Error("Failed to open journal database", "path", cfg.DBPath, "error", err)
		return 1
	}
	defer journal.CloseDB(db)
	jstore := journal.NewStore(db, log)

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
	}
	tg, err := telegram.NewBot(cfg.TelegramToken, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.BotInfo.ID, "bot_username", cfg.BotInfo.Username)

	gateway := telegram.NewGateway(tg, log)
	sched := bot.NewScheduler(log, stateStore, jstore, gateway, cfg.DefaultTimezone, func() string {
		if cfg.BotInfo != nil {
			return cfg.BotInfo.Username
		}
		return ""
	})

	hDeps := handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Store:     stateStore,
		Journal:   jstore,
		Gateway:   gateway,
		Scheduler: sched,
	}

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	if err := publishCommandMenu(ctx, tg); err != nil {
		log.Warn("Failed to publish command menu", "error", err)
	}

	var webhook *telegram.WebhookServer
	if cfg.BaseURL != "" {
		webhook = telegram.NewWebhookServer(tg, cfg.BaseURL, cfg.ListenAddr, cfg.TelegramToken, log)
	}

	app := bot.NewBot(log, cfg, tg, webhook, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}

func publishCommandMenu(ctx context.Context, tg *tgbot.Bot) error {
	_, err := tg.SetMyCommands(ctx, &tgbot.SetMyCommandsParams{
		Commands: []models.BotCommand{
			{Command: "bind", Description: "Bind this chat as the delivery destination"},
			{Command: "whereami", Description: "Show chat/thread ids and next delivery"},
			{Command: "addtask", Description: "Append a task"},
			{Command: "deltask", Description: "Remove a task by number"},
			{Command: "listtasks", Description: "Show the task list"},
			{Command: "cleartasks", Description: "Remove all tasks"},
			{Command: "settime", Description: "Set the daily delivery time (HH:MM)"},
			{Command: "settz", Description: "Set the timezone (IANA name)"},
			{Command: "settemplate", Description: "Set the empty-list message template"},
			{Command: "preview", Description: "Render today's message here"},
			{Command: "postnow", Description: "Deliver the list now as text"},
			{Command: "pollnow", Description: "Deliver the list now as a poll"},
			{Command: "history", Description: "Show recent delivery outcomes"},
		},
	})
	return err
}
