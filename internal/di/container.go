// Package di wires the application graph: repositories over the chosen
// storage, services, conversation flows and handlers.
package di

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hwoarang89/solomon-church-bot/internal/ai"
	"github.com/hwoarang89/solomon-church-bot/internal/chat"
	"github.com/hwoarang89/solomon-church-bot/internal/conversation"
	"github.com/hwoarang89/solomon-church-bot/internal/handler"
	"github.com/hwoarang89/solomon-church-bot/internal/repository"
	"github.com/hwoarang89/solomon-church-bot/internal/service"
	"github.com/hwoarang89/solomon-church-bot/internal/sheets"
	"github.com/hwoarang89/solomon-church-bot/internal/transport"
	"github.com/hwoarang89/solomon-church-bot/pkg/config"
	"github.com/hwoarang89/solomon-church-bot/pkg/database"
	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

// Container holds all dependencies for the bot
type Container struct {
	// Infrastructure
	DB        *database.PostgresDB
	Redis     *redis.Client
	Messenger chat.Messenger

	// Repositories
	UserRepo         repository.UserRepository
	EventRepo        repository.EventRepository
	RegistrationRepo repository.RegistrationRepository
	InfoRepo         repository.InfoRepository
	RequestRepo      repository.RequestRepository

	// Services
	AuthService         service.AuthService
	EventService        service.EventService
	RegistrationService service.RegistrationService
	InfoService         service.InfoService
	BroadcastService    service.BroadcastService
	Notifier            service.Notifier
	ApprovalService     service.ApprovalService
	ExportService       service.ExportService

	// Bot core
	Assistant ai.Assistant
	Engine    *conversation.Engine
	Router    *transport.Router

	// Handlers
	UpdateHandler *handler.UpdateHandler
	HealthHandler *handler.HealthHandler
}

// NewContainer builds the full graph from configuration. The database is
// required; Redis is optional and falls back to in-process conversation state.
func NewContainer(cfg *config.Config, db *database.PostgresDB, log *logger.Logger) (*Container, error) {
	c := &Container{DB: db}
	pool := db.Pool()

	c.UserRepo = repository.NewPostgresUserRepository(pool)
	c.EventRepo = repository.NewPostgresEventRepository(pool)
	c.RegistrationRepo = repository.NewPostgresRegistrationRepository(pool)
	c.InfoRepo = repository.NewPostgresInfoRepository(pool)
	c.RequestRepo = repository.NewPostgresRequestRepository(pool)

	c.Messenger = chat.NewHTTPMessenger(cfg.Chat.SinkURL, cfg.Chat.SendTimeout)

	c.AuthService = service.NewAuthService(c.UserRepo, log)
	c.EventService = service.NewEventService(c.EventRepo, log)
	c.RegistrationService = service.NewRegistrationService(c.EventRepo, c.RegistrationRepo, log)
	c.InfoService = service.NewInfoService(c.InfoRepo, c.EventRepo, log)
	c.BroadcastService = service.NewBroadcastService(c.UserRepo, c.Messenger, log)
	c.Notifier = service.NewNotifier(c.UserRepo, c.Messenger, log)
	c.ApprovalService = service.NewApprovalService(
		c.RequestRepo, c.UserRepo, c.EventRepo, c.BroadcastService, c.Notifier, log)

	sheetWriter, err := sheets.NewClient(sheets.Config{
		SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		CredentialsJSON: cfg.Sheets.CredentialsJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build sheet writer: %w", err)
	}
	c.ExportService = service.NewExportService(
		c.UserRepo, c.EventRepo, c.RegistrationRepo, c.InfoRepo, sheetWriter, log)

	c.Assistant = ai.NewClient(ai.ClientConfig{
		APIKey:    cfg.Claude.APIKey,
		BaseURL:   cfg.Claude.BaseURL,
		Model:     cfg.Claude.Model,
		MaxTokens: cfg.Claude.MaxTokens,
		Timeout:   cfg.Claude.Timeout,
	}, log)

	var store conversation.Store
	if cfg.Redis.Enabled {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		store = conversation.NewRedisStore(c.Redis)
	} else {
		store = conversation.NewMemoryStore()
	}

	c.Engine = conversation.NewEngine(store, log)
	c.Engine.Register(conversation.NewRegistrationFlow(c.RegistrationService))
	c.Engine.Register(conversation.NewEventCreationFlow(c.EventService, c.ApprovalService))
	c.Engine.Register(conversation.NewInfoCreationFlow(c.InfoService))
	c.Engine.Register(conversation.NewAICommandFlow(c.Assistant, c.UserRepo, c.EventService, c.InfoService))
	c.Engine.Register(conversation.NewBroadcastFlow(c.BroadcastService, c.ApprovalService))

	c.Router = transport.NewRouter(
		c.AuthService,
		c.EventService,
		c.RegistrationService,
		c.InfoService,
		c.ApprovalService,
		c.ExportService,
		c.Assistant,
		c.Engine,
		cfg.App.SuperAdminUsername,
		log,
	)

	c.UpdateHandler = handler.NewUpdateHandler(c.Router, log)
	c.HealthHandler = handler.NewHealthHandler(db)

	return c, nil
}

// Close releases the container's infrastructure handles.
func (c *Container) Close() error {
	if c.Redis != nil {
		return c.Redis.Close()
	}
	return nil
}
