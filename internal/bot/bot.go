package bot

import (
	"context"
	"fmt"
	"time"

	"personality-bot/internal/bot/handlers"
	"personality-bot/internal/bot/middleware"
	"personality-bot/internal/config"
	"personality-bot/internal/storage/postgres"
	"personality-bot/internal/storage/redis"
	"personality-bot/internal/workspace"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Bot represents Telegram bot
type Bot struct {
	bot       *tele.Bot
	workspace *workspace.Service
	store     *postgres.Store
	cache     *redis.Cache
	config    *config.Config
	logger    *zap.Logger
}

func New(
	cfg *config.Config,
	ws *workspace.Service,
	store *postgres.Store,
	cache *redis.Cache,
	logger *zap.Logger,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.TelegramToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			logger.Error("telebot error", zap.Error(err))
		},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	bot := &Bot{
		bot:       b,
		workspace: ws,
		store:     store,
		cache:     cache,
		config:    cfg,
		logger:    logger,
	}

	bot.setupMiddleware()

	if err := bot.setCommands(); err != nil {
		logger.Warn("failed to set bot commands", zap.Error(err))
	}

	bot.registerHandlers()

	logger.Info("bot initialized successfully", zap.String("username", b.Me.Username))

	return bot, nil
}

func (b *Bot) setupMiddleware() {
	b.bot.Use(middleware.Recovery(b.logger))

	b.bot.Use(middleware.Logger(b.logger))

	b.bot.Use(middleware.RateLimit(b.cache, b.logger))
}

func (b *Bot) setCommands() error {
	return b.bot.SetCommands([]tele.Command{
		{Text: "start", Description: "Начать"},
		{Text: "upload", Description: "Отправить анкету"},
		{Text: "results", Description: "Результаты анкеты"},
		{Text: "board", Description: "Кабинет HR"},
		{Text: "filters", Description: "Фильтры кандидатов"},
		{Text: "export", Description: "Выгрузка в Excel"},
		{Text: "login", Description: "Войти"},
		{Text: "register", Description: "Регистрация"},
		{Text: "logout", Description: "Выйти"},
		{Text: "whoami", Description: "Текущий аккаунт"},
		{Text: "settings", Description: "Уведомления"},
		{Text: "status", Description: "Состояние сервиса"},
		{Text: "help", Description: "Справка"},
		{Text: "cancel", Description: "Отменить действие"},
	})
}

func (b *Bot) registerHandlers() {
	ctx := &handlers.Context{
		Workspace: b.workspace,
		Store:     b.store,
		Cache:     b.cache,
		Config:    b.config,
		Logger:    b.logger,
	}

	b.bot.Handle("/start", handlers.HandleStart(ctx))
	b.bot.Handle("/help", handlers.HandleHelp(ctx))
	b.bot.Handle("/cancel", handlers.HandleCancel(ctx))
	b.bot.Handle("/status", handlers.HandleStatus(ctx))

	b.bot.Handle("/upload", handlers.HandleUpload(ctx))
	b.bot.Handle("/results", handlers.HandleResults(ctx))

	b.bot.Handle("/login", handlers.HandleLogin(ctx))
	b.bot.Handle("/register", handlers.HandleRegister(ctx))
	b.bot.Handle("/logout", handlers.HandleLogout(ctx))
	b.bot.Handle("/whoami", handlers.HandleWhoami(ctx))

	b.bot.Handle("/board", handlers.HandleBoard(ctx))
	b.bot.Handle("/filters", handlers.HandleFilters(ctx))
	b.bot.Handle("/export", handlers.HandleExport(ctx))

	b.bot.Handle("/settings", handlers.HandleSettings(ctx))

	b.bot.Handle(tele.OnText, handlers.HandleText(ctx))
	b.bot.Handle(tele.OnDocument, handlers.HandleDocument(ctx))
	b.bot.Handle(tele.OnVideo, handlers.HandleVideo(ctx))

	b.bot.Handle(tele.OnCallback, handlers.HandleCallback(ctx))

	b.logger.Info("handlers registered")
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting bot...")

	go b.bot.Start()

	<-ctx.Done()

	b.logger.Info("stopping bot...")
	b.bot.Stop()

	return nil
}

func (b *Bot) GetBot() *tele.Bot {
	return b.bot
}
