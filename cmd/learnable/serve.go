package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/learnable-ai/companion/internal/api"
	"github.com/learnable-ai/companion/internal/config"
	"github.com/learnable-ai/companion/internal/logger"
	"github.com/learnable-ai/companion/internal/web"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "start the local web app",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "listen port; overrides the config file",
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	const funcName = "serveAction"

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if p := c.Int("port"); p > 0 {
		cfg.Server.Port = p
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	api.SetDevelopment(cfg.Advanced.LogMode == "dev")

	app, err := newCore(cfg, cfg.Storage.UploadsDirectory)
	if err != nil {
		return err
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handlers := api.NewHandlers(&api.Dependencies{
		Queue:          app.queue,
		Processor:      app.proc,
		Settings:       app.settings,
		Backend:        app.gateway,
		Version:        Version,
		BaseContext:    baseCtx,
		WSMaxMessageKB: cfg.Advanced.WebSocketMaxMessageSize,
	})

	embeddedMode := web.HasEmbeddedFiles()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	api.SetupMiddleware(e, api.MiddlewareConfig{
		RequestLogging: cfg.Advanced.EnableRequestLogging,
		BodyLimit:      cfg.Server.BodyLimit,
		CORS:           cfg.Server.EnableCORS,
		AllowOrigins:   splitOrigins(cfg.Server.AllowOrigins),
	})
	api.RegisterRoutes(e, handlers)

	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			logger.Warn("failed to register static routes",
				zap.String("function", funcName),
				zap.Error(err),
			)
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	printBanner(c.String("config"), cfg, embeddedMode)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.StartServer(s)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down",
			zap.String("function", funcName),
			zap.String("signal", sig.String()),
		)
	}

	// Abort in-flight generations, then wait for their goroutines.
	cancel()
	ctx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	handlers.Hub.Close()
	if err := e.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.String("function", funcName), zap.Error(err))
	}
	handlers.Generate.Wait()
	return nil
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func printBanner(configPath string, cfg *config.AppConfig, embedded bool) {
	mode := "API only"
	if embedded {
		mode = "Embedded UI"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Learnable Study Companion                       ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", mode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Backend:   %-46s║\n", cfg.Backend.BaseURL)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if embedded {
		fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
	}
}
