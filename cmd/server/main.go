package main

import (
	"context"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"

	"github.com/BusinessThatWorks/Salasar/internal/config"
	"github.com/BusinessThatWorks/Salasar/internal/container"
	"github.com/BusinessThatWorks/Salasar/internal/database"
	"github.com/BusinessThatWorks/Salasar/internal/server"
	"github.com/BusinessThatWorks/Salasar/internal/services"
)

func main() {
	app := fx.New(
		container.Module,
		fx.Invoke(func(
			lc fx.Lifecycle,
			cfg *config.Config,
			srv *server.Server,
			conn *database.Connection,
			redisClient *redis.Client,
			jobProcessor *services.JobProcessor,
			gracefulShutdown services.GracefulShutdownService,
		) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					log.Printf("Starting Salasar policy reader on port %s", cfg.Server.Port)

					// Register shutdown hooks
					gracefulShutdown.RegisterShutdownHook("server", func(ctx context.Context) error {
						return srv.Stop()
					})
					gracefulShutdown.RegisterShutdownHook("job_processor", services.CreateJobProcessorShutdownHook(jobProcessor))
					gracefulShutdown.RegisterShutdownHook("redis", services.CreateRedisShutdownHook(redisClient))
					gracefulShutdown.RegisterShutdownHook("database", services.CreateDatabaseShutdownHook(conn))

					// Start graceful shutdown service
					if err := gracefulShutdown.Start(ctx); err != nil {
						return fmt.Errorf("failed to start graceful shutdown service: %w", err)
					}

					// Start server in background
					go func() {
						if err := srv.Start(context.Background()); err != nil {
							log.Printf("Server error: %v", err)
						}
					}()

					return nil
				},
				OnStop: func(ctx context.Context) error {
					log.Println("Shutting down Salasar policy reader")
					return gracefulShutdown.Shutdown(ctx)
				},
			})
		}),
	)

	app.Run()
}
