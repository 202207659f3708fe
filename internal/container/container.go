package container

import (
	"database/sql"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/aalfraarauscher/loan-app-admin/internal/config"
	"github.com/aalfraarauscher/loan-app-admin/internal/database"
	"github.com/aalfraarauscher/loan-app-admin/internal/handlers"
	"github.com/aalfraarauscher/loan-app-admin/internal/logger"
	"github.com/aalfraarauscher/loan-app-admin/internal/models"
	"github.com/aalfraarauscher/loan-app-admin/internal/repositories"
	"github.com/aalfraarauscher/loan-app-admin/internal/server"
	"github.com/aalfraarauscher/loan-app-admin/internal/services"
)

// Module provides dependency injection configuration
var Module = fx.Options(
	// Configuration
	fx.Provide(config.LoadConfig),

	// Logging
	fx.Provide(logger.NewLogger),

	// Database
	fx.Provide(database.NewConnection),
	fx.Provide(func(conn *database.Connection) *gorm.DB {
		return conn.DB
	}),
	fx.Provide(func(conn *database.Connection) (*sql.DB, error) {
		return conn.DB.DB()
	}),
	fx.Provide(database.NewMigrator),
	fx.Provide(database.NewRedisClient),

	// Repositories
	fx.Provide(repositories.NewOrganisationRepository),
	fx.Provide(repositories.NewIntegrationRepository),
	fx.Provide(repositories.NewFieldMappingRepository),
	fx.Provide(repositories.NewExecutionLogRepository),
	fx.Provide(repositories.NewApplicationRecordRepository),

	// Core pipeline
	fx.Provide(services.NewFieldResolver),
	fx.Provide(func(cfg *config.Config) *services.TransformerCatalog {
		return services.NewTransformerCatalog(cfg.Dispatcher.SampleEmailDomain)
	}),
	fx.Provide(services.NewPayloadCompiler),

	// Delivery
	fx.Provide(services.NewDispatcherService),
	fx.Provide(func(redisClient *redis.Client, log *logger.Logger, cfg *config.Config) *services.DeliveryQueue {
		return services.NewDeliveryQueue(redisClient, log, cfg.Dispatcher)
	}),
	fx.Provide(func(queue *services.DeliveryQueue) services.RetryScheduler {
		return queue
	}),
	fx.Provide(services.NewDeliveryService),
	fx.Provide(func(svc *services.DeliveryService) services.AttemptExecutor {
		return svc
	}),

	// Registry
	fx.Provide(services.NewIntegrationService),

	// Handlers
	fx.Provide(handlers.NewAdminAPIHandler),
	fx.Provide(handlers.NewHealthHandler),

	// Server
	fx.Provide(server.NewServer),

	// Models (for validation and serialization)
	fx.Provide(models.NewValidationService),

	// Invoke migrations on startup
	fx.Invoke(func(migrator *database.Migrator) error {
		return migrator.Up()
	}),

	// The queue and the delivery service reference each other; close the
	// loop after both are constructed
	fx.Invoke(func(queue *services.DeliveryQueue, executor services.AttemptExecutor) {
		queue.SetExecutor(executor)
	}),
)
