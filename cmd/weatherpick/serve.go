package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weatherpick/internal/api/http"
	"github.com/i474232898/weatherpick/internal/scheduler"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local view server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts.api)
			if err != nil {
				return err
			}
			defer a.logger.Sync() //nolint:errcheck
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	// Scheduler that periodically re-issues the last query.
	sched := scheduler.New(a.orchestrator, a.cfg.RefreshInterval, a.logger)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	srv := fiber.New(fiber.Config{
		AppName:               "weatherpick",
		DisableStartupMessage: true,
		Immutable:             true,
		ReadTimeout:           10 * time.Second,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	srv.Use(logger.New())
	srv.Use(recover.New())

	srv.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weatherpick",
			"refresh": sched.BreakerState().String(),
		})
	})

	httpapi.RegisterRoutes(srv, httpapi.Deps{
		Orchestrator: a.orchestrator,
		Transformer:  a.transformer,
		History:      a.history,
		Notices:      a.notices,
	})

	go func() {
		a.logger.Info("view server listening", zap.String("port", a.cfg.Port))
		if err := srv.Listen(":" + a.cfg.Port); err != nil {
			a.logger.Error("fiber server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.ShutdownWithContext(shutdownCtx)
}
