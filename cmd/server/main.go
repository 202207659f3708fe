package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"github.com/aalfraarauscher/loan-app-admin/internal/config"
	"github.com/aalfraarauscher/loan-app-admin/internal/container"
	"github.com/aalfraarauscher/loan-app-admin/internal/server"
	"github.com/aalfraarauscher/loan-app-admin/internal/services"
)

func main() {
	app := fx.New(
		container.Module,
		fx.Invoke(func(
			lc fx.Lifecycle,
			cfg *config.Config,
			srv *server.Server,
			queue *services.DeliveryQueue,
		) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					log.Printf("Starting loan admin platform on port %s", cfg.Server.Port)

					queue.Start()

					// Start server in background
					go func() {
						if err := srv.Start(context.Background()); err != nil {
							log.Printf("Server error: %v", err)
						}
					}()

					return nil
				},
				OnStop: func(ctx context.Context) error {
					log.Println("Shutting down loan admin platform")
					queue.Stop()
					return srv.Stop()
				},
			})
		}),
	)

	app.Run()
}
