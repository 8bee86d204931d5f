package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Intervyou-site/intervyou/internal/api"
	"github.com/Intervyou-site/intervyou/internal/app"
	"github.com/Intervyou-site/intervyou/internal/jobs"
	"github.com/Intervyou-site/intervyou/internal/websocket"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			repo, err := a.JobRepository(ctx)
			if err != nil {
				return err
			}
			tokens, err := a.TokenIssuer()
			if err != nil {
				return err
			}

			manager := jobs.NewManager(a.Analyzer, repo, cfg.Jobs, logger)
			manager.Start()
			defer manager.Stop()

			cleanup := jobs.NewCleanupService(repo, cfg.Jobs.ResultTTL, cfg.Jobs.CleanupInterval, logger)
			cleanup.Start()
			defer cleanup.Stop()

			hubCtx, stopHub := context.WithCancel(context.Background())
			defer stopHub()
			hub := websocket.NewHub(a.NewRealtimeSession, logger)
			go hub.Run(hubCtx)

			// Create Echo instance
			e := echo.New()
			e.HideBanner = true

			// Middleware
			e.Use(middleware.Logger())
			e.Use(middleware.Recover())
			e.Use(middleware.CORS())

			api.InitRoutes(e, api.NewHandler(a.Analyzer, manager, hub, tokens, logger))

			// Graceful shutdown
			go func() {
				if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
					logger.Error("shutting down the server", zap.Error(err))
					stop()
				}
			}()

			logger.Info("Server started",
				zap.String("port", cfg.Server.Port),
				zap.Bool("auth", tokens != nil))

			<-ctx.Done()
			logger.Info("Server is shutting down...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownPeriod)
			defer cancel()

			stopHub()
			if err := e.Shutdown(shutdownCtx); err != nil {
				logger.Error("Server forced to shutdown", zap.Error(err))
				return err
			}

			logger.Info("Server exited")
			return nil
		},
	}
}
