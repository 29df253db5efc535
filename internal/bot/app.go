// Package bot wires the onboarding flow and the menu dispatcher into
// the Telegram runtime.
package bot

import (
	"context"
	"fmt"
	"sync"

	tele "gopkg.in/telebot.v4"

	"leadbot/core/logger"
	coretelegram "leadbot/core/telegram"
	"leadbot/core/telegram/commands"
	"leadbot/core/telegram/middleware"
	"leadbot/core/telegram/router"
	"leadbot/core/telegram/ui"
	"leadbot/internal/config"
	"leadbot/internal/leads"
	"leadbot/internal/membership"
	"leadbot/internal/menu"
	"leadbot/internal/onboarding"
	"leadbot/internal/session"

	"log/slog"
)

const (
	cbConsentAck = "consent_ack"
	cbJoinCheck  = "join_check"
)

// App assembles the bot. The flow and dispatcher are bound once the bot
// connection exists, in the OnStart hook.
type App struct {
	cfg   *config.Config
	store session.Store
	repo  *leads.Repository

	mu         sync.RWMutex
	bot        *tele.Bot
	flow       *onboarding.Flow
	dispatcher *menu.Dispatcher

	closers []namedCloser
}

type namedCloser struct {
	name string
	fn   func() error
}

var _ router.FSM = (*App)(nil)
var _ ui.FallbackProvider = (*App)(nil)

// New builds the application. repo may be nil when lead persistence is
// disabled.
func New(cfg *config.Config, store session.Store, repo *leads.Repository) *App {
	return &App{cfg: cfg, store: store, repo: repo}
}

// AddCloser registers a resource to close on shutdown, in registration
// order.
func (a *App) AddCloser(name string, fn func() error) {
	if fn == nil {
		return
	}
	a.closers = append(a.closers, namedCloser{name: name, fn: fn})
}

// TelegramRunOptions satisfies the runner contract: registry, routes,
// middleware chain, and the start hook that binds bot-dependent pieces.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Start onboarding from the beginning",
	})
	reg.RegisterCommand("/menu", commands.Command{
		Handler:     a.handleMenuCommand,
		Description: "Show the menu",
	})
	reg.RegisterCommand("/leads", commands.Command{
		Handler:     a.handleRecentLeads,
		Description: "Show recent leads",
		AdminOnly:   true,
		Hidden:      true,
	})

	if err := reg.RegisterCallback(cbConsentAck, a.handleConsentAck); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterCallback(cbJoinCheck, a.handleJoinCheck); err != nil {
		return coretelegram.RunOptions{}, err
	}
	for _, entry := range a.cfg.Content.Menu {
		token := entry.Token
		if err := reg.RegisterCallback(token, func(c tele.Context) error {
			return a.handleMenuToken(c, token)
		}); err != nil {
			return coretelegram.RunOptions{}, err
		}
	}
	reg.SetCallbackNotFound(a.UnknownCallback())
	reg.SetTextFallback(a.UnknownText())

	routes := []coretelegram.Route{
		router.CallbackRoute(reg, router.CallbackOptions{}),
	}
	routes = append(routes, router.TextRoutes(a, reg, router.TextOptions{
		UnknownText:     a.UnknownText(),
		UnknownDocument: a.UnknownDocument(),
	})...)
	routes = append(routes, coretelegram.Route{
		Endpoint: tele.OnContact,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(a.handleContact)),
	})
	routes = append(routes, router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})...)

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			return a.bind(ctx, rt.Bot)
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			for _, c := range a.closers {
				if err := c.fn(); err != nil {
					logger.Error(ctx, "tg.wire", "app.close",
						slog.String("resource", c.name),
						slog.String("err", err.Error()),
					)
				}
			}
			return nil
		},
	}, nil
}

// bind constructs the pieces that need a live bot connection: the
// membership checker, the lead recorder fan-out, and the menu sender.
func (a *App) bind(ctx context.Context, bot *tele.Bot) error {
	if bot == nil {
		return fmt.Errorf("bot: nil bot in start hook")
	}

	var recorders []leads.Recorder
	if a.repo != nil {
		recorders = append(recorders, a.repo)
	}
	if chatID := a.cfg.AdminChatID(); chatID != 0 {
		recorders = append(recorders, &operatorNotifier{bot: bot, chatID: chatID})
	}
	var recorder leads.Recorder
	if len(recorders) > 0 {
		recorder = leads.Multi(recorders...)
	}

	checker := membership.NewChecker(bot, a.cfg.Onboarding.Channel)

	a.mu.Lock()
	a.bot = bot
	a.flow = onboarding.NewFlow(a.store, checker, recorder)
	a.dispatcher = menu.NewDispatcher(a.cfg.Content, &telegramSender{bot: bot})
	a.mu.Unlock()

	logger.Info(ctx, "tg.wire", "app.bind",
		slog.String("channel", a.cfg.Onboarding.Channel),
		slog.Int("menu_entries", len(a.cfg.Content.Menu)),
		slog.Bool("persistence", a.repo != nil),
	)
	return nil
}

func (a *App) getFlow() *onboarding.Flow {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.flow
}

func (a *App) getDispatcher() *menu.Dispatcher {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dispatcher
}

// InProgress reports whether the user's input still belongs to the
// onboarding flow. Users without a session are onboarding too.
func (a *App) InProgress(ctx context.Context, userID int64) bool {
	flow := a.getFlow()
	if flow == nil {
		return false
	}
	unlocked, err := flow.Unlocked(ctx, userID)
	if err != nil {
		logger.Warn(ctx, "tg", "fsm.lookup",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return true
	}
	return !unlocked
}
