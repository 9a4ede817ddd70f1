package main

import (
	"fmt"

	"github.com/learnable-ai/companion/internal/config"
	"github.com/learnable-ai/companion/internal/extract"
	"github.com/learnable-ai/companion/internal/gateway"
	"github.com/learnable-ai/companion/internal/logger"
	"github.com/learnable-ai/companion/internal/orchestrator"
	"github.com/learnable-ai/companion/internal/settings"
	"github.com/learnable-ai/companion/internal/storage"
	"github.com/learnable-ai/companion/internal/upload"
	"github.com/learnable-ai/companion/internal/validate"
	"go.uber.org/zap"
)

// core is the client-side stack shared by every command.
type core struct {
	queue    *upload.Queue
	settings *settings.Store
	gateway  *gateway.Client
	proc     *orchestrator.Processor
}

func newCore(cfg *config.AppConfig, uploadDir string) (*core, error) {
	const funcName = "newCore"

	fileStore, err := storage.NewLocalStore(uploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	fileStore = fileStore.WithMaxSize(cfg.MaxFileSize())

	queue := upload.NewQueue(fileStore, validate.New(cfg.MaxFileSize()))

	store := settings.NewStore(cfg.Storage.SettingsFile)
	if err := store.Load(); err != nil {
		return nil, err
	}
	if !store.HasAPIKey() && cfg.Backend.APIKey != "" {
		if err := store.SetAPIKey(cfg.Backend.APIKey); err != nil {
			return nil, err
		}
		logger.Info("API key seeded from configuration", zap.String("function", funcName))
	}

	gw, err := gateway.New(gateway.Options{
		BaseURL:     cfg.Backend.BaseURL,
		Timeout:     cfg.BackendTimeout(),
		Credentials: store,
	})
	if err != nil {
		return nil, err
	}

	proc := orchestrator.New(gw, queue, store,
		orchestrator.WithExtractor(extract.NewFetcher(nil)),
	)

	return &core{
		queue:    queue,
		settings: store,
		gateway:  gw,
		proc:     proc,
	}, nil
}
