package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/supportbot/core/buildinfo"
	coreconfig "github.com/m3rciful/supportbot/core/config"
	"github.com/m3rciful/supportbot/core/logger"
	tg "github.com/m3rciful/supportbot/core/telegram"
	"github.com/m3rciful/supportbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/supportbot/core/telegram/helpers"
	"github.com/m3rciful/supportbot/core/telegram/router"
	"github.com/m3rciful/supportbot/core/telegram/sender"
	"github.com/m3rciful/supportbot/core/telegram/state"
	"github.com/m3rciful/supportbot/internal/httpapi"
	"github.com/m3rciful/supportbot/internal/storage/postgres"
	"github.com/m3rciful/supportbot/internal/ticket"

	tele "gopkg.in/telebot.v4"
)

// Options wires an App. DB is optional and enables the ticket archive.
type Options struct {
	Config *Config
	Bot    *tele.Bot
	DB     *sqlx.DB
}

// App is the supportbot Telegram application.
type App struct {
	cfg      *Config
	bot      *tele.Bot
	db       *sqlx.DB
	store    *state.Memory[ticket.Conversation]
	engine   *ticket.Engine
	registry *tg.Registry
	http     *httpapi.Server
}

var _ router.FSM = (*App)(nil)

// New builds the conversation engine, its store and the HTTP surface, and
// registers the bot commands.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("bot: nil config")
	}
	if opts.Bot == nil {
		return nil, errors.New("bot: nil telebot instance")
	}
	cfg := opts.Config
	destination := cfg.Ticket.Destination()
	if destination == nil {
		return nil, errors.New("bot: target chat not resolved; call Config.Normalize first")
	}

	store := state.NewMemory[ticket.Conversation](cfg.Ticket.StateOptions())
	messenger := NewMessenger(opts.Bot, sender.New(sender.Options{MaxRetries: 3}))

	var archive ticket.Archive
	if opts.DB != nil {
		archive = postgres.NewArchive(opts.DB)
	}
	engine, err := ticket.NewEngine(ticket.Options{
		Store:      store,
		Messenger:  messenger,
		Dispatcher: ticket.NewDispatcher(messenger, destination),
		Archive:    archive,
		Version:    buildinfo.String(),
	})
	if err != nil {
		return nil, err
	}

	var processor httpapi.UpdateProcessor
	if cfg.Telegram.RunMode == coreconfig.RunModeWebhook {
		processor = opts.Bot
	}
	handler := httpapi.NewRouter(httpapi.Options{
		Token:       cfg.Telegram.Token,
		SecretToken: cfg.Webhook.SecretToken,
		Processor:   processor,
	})

	a := &App{
		cfg:      cfg,
		bot:      opts.Bot,
		db:       opts.DB,
		store:    store,
		engine:   engine,
		registry: tg.NewRegistry(),
		http:     httpapi.NewServer(cfg.HTTP.ListenAddr(), handler),
	}
	if err := a.register(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) register() error {
	cmd := func(command ticket.Command) tele.HandlerFunc {
		return func(c tele.Context) error {
			return a.handle(c, commandEvent(c, command))
		}
	}
	a.registry.RegisterCommand("/start", commands.Command{
		Handler:     cmd(ticket.CommandStart),
		Description: "Start the bot",
	})
	a.registry.RegisterCommand("/help", commands.Command{
		Handler:     cmd(ticket.CommandHelp),
		Description: "Show help",
	})
	a.registry.RegisterCommand("/newticket", commands.Command{
		Handler:     cmd(ticket.CommandNewTicket),
		Description: "Create a new support ticket",
	})
	a.registry.RegisterCommand("/cancel", commands.Command{
		Handler:     cmd(ticket.CommandCancel),
		Description: "Cancel ticket creation",
	})
	a.registry.RegisterCommand("/stats", commands.Command{
		Handler:     cmd(ticket.CommandStats),
		Description: "Show bot statistics",
		AdminOnly:   true,
		Hidden:      true,
	})

	return a.registry.RegisterCallback(cancelCallback, func(c tele.Context) error {
		// Stop the button spinner before the cancel reply goes out.
		_ = c.Respond()
		return a.handle(c, commandEvent(c, ticket.CommandCancel))
	})
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{AdminID: a.cfg.Telegram.AdminID})
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))
	routes = append(routes, router.MessageRoutes(a)...)

	return tg.RunOptions{
		Config:      &a.cfg.Config,
		Bot:         a.bot,
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(&a.cfg.Config, nil),
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

// InProgress implements router.FSM.
func (a *App) InProgress(userID int64) bool {
	return a.engine.InProgress(userID)
}

// HandleText implements router.FSM.
func (a *App) HandleText(c tele.Context) error {
	return a.handle(c, textEvent(c))
}

// HandleMedia implements router.FSM.
func (a *App) HandleMedia(c tele.Context) error {
	ev, ok := mediaEvent(c)
	if !ok {
		return nil
	}
	return a.handle(c, ev)
}

func (a *App) handle(c tele.Context, ev ticket.Event) error {
	return a.engine.Handle(tghelpers.BuildContext(c), ev)
}

func (a *App) onStart(ctx context.Context, _ tg.Runtime) error {
	if err := a.store.Start(); err != nil {
		return fmt.Errorf("bot: start sweeper: %w", err)
	}
	if err := a.http.Start(); err != nil {
		a.store.Stop()
		return err
	}
	logger.Info(ctx, logger.ComponentApp, "supportbot.start",
		slog.String("mode", a.cfg.Telegram.RunMode),
		slog.String("listen", a.http.Addr()),
		slog.Bool("archive", a.db != nil),
	)
	return nil
}

func (a *App) onStop(ctx context.Context, _ tg.Runtime) error {
	var errs []error
	if err := a.http.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	a.store.Stop()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("bot: close database: %w", err))
		}
	}
	logger.Info(ctx, logger.ComponentApp, "supportbot.stop",
		slog.Int("active", a.store.Len()),
		slog.Duration("shutdown_timeout", httpapi.ShutdownTimeout),
	)
	return errors.Join(errs...)
}
