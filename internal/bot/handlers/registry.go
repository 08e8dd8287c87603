package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its middleware.
// It encapsulates all information needed to register a command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all bot commands.
// Mutating commands carry their owner gate inside Store.Mutate; the
// delivery commands postnow and pollnow are gated by the OwnerOnly
// middleware instead since they mutate nothing themselves.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	command := func(pattern string, handler tgbot.HandlerFunc, mw ...tgbot.Middleware) RegisteredHandler {
		return RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     pattern,
			Handler:     handler,
			Middleware:  mw,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		}
	}

	ownerGate := OwnerOnly(deps)

	handlers := map[string]RegisteredHandler{
		"/start":       command("start", NewStartHandler(deps)),
		"/help":        command("help", NewStartHandler(deps)),
		"/bind":        command("bind", NewBindHandler(deps)),
		"/whereami":    command("whereami", NewWhereAmIHandler(deps)),
		"/addtask":     command("addtask", NewAddTaskHandler(deps)),
		"/deltask":     command("deltask", NewDelTaskHandler(deps)),
		"/listtasks":   command("listtasks", NewListTasksHandler(deps)),
		"/cleartasks":  command("cleartasks", NewClearTasksHandler(deps)),
		"/settime":     command("settime", NewSetTimeHandler(deps)),
		"/settz":       command("settz", NewSetTZHandler(deps)),
		"/settemplate": command("settemplate", NewSetTemplateHandler(deps)),
		"/preview":     command("preview", NewPreviewHandler(deps)),
		"/postnow":     command("postnow", NewPostNowHandler(deps), ownerGate),
		"/pollnow":     command("pollnow", NewPollNowHandler(deps), ownerGate),
		"/history":     command("history", NewHistoryHandler(deps)),
	}

	deps.Logger.Info("Initialized command handlers", "count", len(handlers))
	return handlers
}
