package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/iamvkosarev/lunaris-ai/config"
	"github.com/iamvkosarev/lunaris-ai/internal/provider"
	in_memory "github.com/iamvkosarev/lunaris-ai/internal/storage/in-memory"
	key_value "github.com/iamvkosarev/lunaris-ai/internal/storage/key-value"
	httptransport "github.com/iamvkosarev/lunaris-ai/internal/transport/http"
	"github.com/iamvkosarev/lunaris-ai/internal/usecase"
)

var ErrNothingToRun = errors.New("nothing to run")

type storages struct {
	users     usecase.UserStorage
	chats     usecase.AiChatStorage
	knowledge usecase.KnowledgeStorage
	close     func() error
}

// App holds the wired usecases. Telegram and HTTP front-ends are started on demand.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	store  storages

	ChatStream   *usecase.ChatStreamUsecase
	User         *usecase.UserUsecase
	AIChat       *usecase.AiChatUsecase
	Knowledge    *usecase.KnowledgeUsecase
	Assist       *usecase.AssistUsecase
	Conversation *usecase.ConversationUsecase
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := newStorages(ctx, cfg)
	if err != nil {
		return nil, err
	}

	gemini := provider.NewGeminiClient(cfg.Gemini, logger)
	var geminiAdapter, groqAdapter provider.StreamAdapter
	if cfg.Gemini.APIKey != "" {
		geminiAdapter = gemini
	} else {
		logger.Warn("gemini api key is not set, gemini identities will fall back to the proxy")
	}
	if cfg.Groq.APIKey != "" {
		groqAdapter = provider.NewGroqClient(cfg.Groq, logger)
	} else {
		logger.Warn("groq api key is not set, Luna-X will fall back to the proxy")
	}

	chatStream := usecase.NewChatStreamUsecase(
		usecase.ChatStreamUsecaseDeps{
			Gemini: geminiAdapter,
			Groq:   groqAdapter,
			Proxy:  provider.NewProxyClient(cfg.Proxy, logger),
			Logger: logger,
		}, usecase.NewModelsConfig(cfg),
	)

	userUsecase := usecase.NewUserUsecase(
		usecase.UserUsecaseDeps{
			UserStorage: store.users,
		},
		cfg.Telegram,
	)

	aiChatUsecase := usecase.NewAiChatUsecase(
		usecase.AiChatUsecaseDeps{
			AiChatStorage: store.chats,
			User:          userUsecase,
		}, cfg.AIChat,
	)

	knowledgeUsecase := usecase.NewKnowledgeUsecase(
		usecase.KnowledgeUsecaseDeps{
			KnowledgeStorage: store.knowledge,
		},
	)

	assistUsecase := usecase.NewAssistUsecase(
		usecase.AssistUsecaseDeps{
			Generator: gemini,
			Logger:    logger,
		},
	)

	conversationUsecase := usecase.NewConversationUsecase(
		usecase.ConversationUsecaseDeps{
			AIChat:    aiChatUsecase,
			User:      userUsecase,
			Knowledge: knowledgeUsecase,
			Assist:    assistUsecase,
			Streamer:  chatStream,
			Logger:    logger,
		},
	)

	return &App{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		ChatStream:   chatStream,
		User:         userUsecase,
		AIChat:       aiChatUsecase,
		Knowledge:    knowledgeUsecase,
		Assist:       assistUsecase,
		Conversation: conversationUsecase,
	}, nil
}

func newStorages(ctx context.Context, cfg *config.Config) (storages, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverRedis:
		rdb := redis.NewClient(
			&redis.Options{
				Addr:     cfg.Redis.Endpoint,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			},
		)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return storages{}, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return storages{
			users:     key_value.NewUserStorage(rdb),
			chats:     key_value.NewAIChatStorage(rdb),
			knowledge: key_value.NewKnowledgeStorage(rdb),
			close:     rdb.Close,
		}, nil
	case config.StorageDriverMemory:
		return storages{
			users:     in_memory.NewUserStorage(),
			chats:     in_memory.NewAIChatStorage(),
			knowledge: in_memory.NewKnowledgeStorage(),
			close:     func() error { return nil },
		}, nil
	default:
		return storages{}, fmt.Errorf("%w: %q", config.ErrUnknownStorageDriver, cfg.Storage.Driver)
	}
}

// Run starts the requested front-ends and blocks until ctx is done or one of them fails.
func (a *App) Run(ctx context.Context, withBot, withHTTP bool) error {
	if !withBot && !withHTTP {
		return ErrNothingToRun
	}
	g, gCtx := errgroup.WithContext(ctx)
	if withBot {
		telegramUsecase, err := a.newTelegram()
		if err != nil {
			return err
		}
		g.Go(
			func() error {
				return telegramUsecase.Run(gCtx)
			},
		)
	}
	if withHTTP {
		server := httptransport.NewServer(
			a.cfg.HTTP, httptransport.NewHandler(a.ChatStream, a.logger), a.logger,
		)
		g.Go(
			func() error {
				return server.Run(gCtx)
			},
		)
	}
	return g.Wait()
}

func (a *App) newTelegram() (*usecase.TelegramUsecase, error) {
	bot, err := api.NewBotAPI(a.cfg.Telegram.TelegramAPIToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create new bot: %w", err)
	}
	a.logger.Info("authorized on telegram", "account", bot.Self.UserName)

	telegramUsecase, err := usecase.NewTelegramUsecase(
		a.cfg.Telegram, usecase.TelegramUsecaseDeps{
			User:         a.User,
			AIChat:       a.AIChat,
			Knowledge:    a.Knowledge,
			Assist:       a.Assist,
			Conversation: a.Conversation,
			Bot:          bot,
			Logger:       a.logger,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram usecase: %w", err)
	}
	return telegramUsecase, nil
}

func (a *App) Close() error {
	return a.store.close()
}
