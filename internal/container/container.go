package container

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/BusinessThatWorks/Salasar/internal/config"
	"github.com/BusinessThatWorks/Salasar/internal/database"
	"github.com/BusinessThatWorks/Salasar/internal/handlers"
	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/middleware"
	"github.com/BusinessThatWorks/Salasar/internal/models"
	"github.com/BusinessThatWorks/Salasar/internal/repositories"
	"github.com/BusinessThatWorks/Salasar/internal/server"
	"github.com/BusinessThatWorks/Salasar/internal/services"
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
	fx.Provide(database.NewMigrator),
	fx.Provide(database.NewRedisClient),

	// Repositories
	fx.Provide(repositories.NewUserRepository),
	fx.Provide(repositories.NewSettingsRepository),
	fx.Provide(repositories.NewValidationRuleRepository),
	fx.Provide(repositories.NewPolicyDocumentRepository),
	fx.Provide(repositories.NewMotorPolicyRepository),
	fx.Provide(repositories.NewHealthPolicyRepository),
	fx.Provide(repositories.NewAuditLogRepository),

	// Services
	fx.Provide(services.NewCacheService),
	fx.Provide(services.NewErrorHandler),
	fx.Provide(services.NewValueConverter),
	fx.Provide(func(settingsRepo repositories.SettingsRepository, cache *services.CacheService, log *logger.Logger, cfg *config.Config) services.AliasRegistryService {
		ttl := time.Duration(cfg.Cache.AliasMapTTL) * time.Second
		return services.NewAliasRegistryService(settingsRepo, cache, log, ttl)
	}),
	fx.Provide(services.NewFieldMappingService),
	fx.Provide(func(registry services.AliasRegistryService, log *logger.Logger, cfg *config.Config) services.PromptBuilderService {
		return services.NewPromptBuilderService(registry, log, cfg.Extraction.TextLimit)
	}),
	fx.Provide(services.NewClaudeExtractionService),
	fx.Provide(func(redis *redis.Client, cfg *config.Config) *services.JobProcessor {
		return services.NewJobProcessor(redis, cfg, cfg.JobProcessor.Workers)
	}),
	fx.Provide(func(jp *services.JobProcessor) services.JobQueue {
		return jp
	}),
	fx.Provide(services.NewDocumentProcessingService),
	fx.Provide(services.NewPolicyService),
	fx.Provide(services.NewSaibaClientService),
	fx.Provide(services.NewSaibaSyncService),
	fx.Provide(services.NewSaibaValidationService),
	fx.Provide(services.NewSettingsService),
	fx.Provide(services.NewAuthenticationService),
	fx.Provide(services.NewMonitoringService),
	fx.Provide(services.NewGracefulShutdownService),

	// Job handlers
	fx.Provide(services.NewDocumentExtractionHandler),
	fx.Provide(services.NewSaibaSyncHandler),

	// Handlers
	fx.Provide(handlers.NewAuthHandler),
	fx.Provide(handlers.NewDocumentHandler),
	fx.Provide(handlers.NewPolicyHandler),
	fx.Provide(handlers.NewSyncHandler),
	fx.Provide(handlers.NewValidationHandler),
	fx.Provide(handlers.NewAliasHandler),
	fx.Provide(handlers.NewSettingsHandler),
	fx.Provide(handlers.NewHealthHandler),

	// Middleware
	fx.Provide(middleware.NewAuthenticationMiddleware),

	// Server
	fx.Provide(server.NewServer),

	// Models (for validation and serialization)
	fx.Provide(models.NewValidationService),

	// Invoke migrations on startup
	fx.Invoke(func(migrator *database.Migrator) error {
		return migrator.Up()
	}),

	// Seed the default validation rule sets
	fx.Invoke(func(validationSvc services.SaibaValidationService, log *logger.Logger) error {
		ctx := context.Background()
		for _, policyType := range []string{models.PolicyTypeMotor, models.PolicyTypeHealth} {
			if _, err := validationSvc.SeedDefaultRules(ctx, policyType); err != nil {
				log.WithError(err).WithField("policy_type", policyType).Error("Failed to seed validation rules")
				return err
			}
		}
		return nil
	}),

	// Register component health checks
	fx.Invoke(func(monitoring services.MonitoringService, conn *database.Connection, redisClient *redis.Client) {
		monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
			sqlDB, err := conn.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
		monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}),

	// Wire background job processing
	fx.Invoke(func(lc fx.Lifecycle, jp *services.JobProcessor, extraction *services.DocumentExtractionHandler, sync *services.SaibaSyncHandler, cfg *config.Config, log *logger.Logger) {
		jp.RegisterHandler(services.JobTypeDocumentExtraction, extraction)
		jp.RegisterHandler(services.JobTypeSaibaSync, sync)

		if !cfg.JobProcessor.Enabled {
			log.Info("Job processor disabled by configuration")
			return
		}

		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				jp.Start()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				jp.Stop()
				return nil
			},
		})
	}),

	// Requeue or fail documents stuck in Processing
	fx.Invoke(func(lc fx.Lifecycle, documentSvc services.DocumentProcessingService, cfg *config.Config, log *logger.Logger) {
		interval := time.Duration(cfg.Extraction.MonitorInterval) * time.Second
		if interval <= 0 {
			return
		}

		monitorCtx, cancel := context.WithCancel(context.Background())
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					ticker := time.NewTicker(interval)
					defer ticker.Stop()
					for {
						select {
						case <-monitorCtx.Done():
							return
						case <-ticker.C:
							requeued, failed, err := documentSvc.RequeueStuck(monitorCtx)
							if err != nil {
								log.WithError(err).Warn("Stuck document sweep failed")
								continue
							}
							if requeued > 0 || failed > 0 {
								log.WithFields(map[string]interface{}{
									"requeued": requeued,
									"failed":   failed,
								}).Info("Stuck document sweep completed")
							}
						}
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				cancel()
				return nil
			},
		})
	}),
)
