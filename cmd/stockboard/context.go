package main

import (
	"strings"
	"sync"

	"github.com/stockboard/backend/config"
	"github.com/stockboard/backend/internal/domain"
	"github.com/stockboard/backend/internal/infrastructure/cache"
	"github.com/stockboard/backend/internal/infrastructure/catalog"
	"github.com/stockboard/backend/internal/infrastructure/logging"
	"github.com/stockboard/backend/internal/infrastructure/ocr"
	"github.com/stockboard/backend/internal/usecase"
	"go.uber.org/zap"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	appOnce sync.Once
	app     *app
	appErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		if path != "" {
			c.config, c.configErr = config.LoadFile(path)
			return
		}
		c.config, c.configErr = config.Load()
	})
	return c.config, c.configErr
}

// ensureApp wires the application once per invocation
func (c *commandContext) ensureApp() (*app, error) {
	c.appOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.appErr = err
			return
		}
		logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			c.appErr = err
			return
		}
		c.app = newApp(cfg, logger)
	})
	return c.app, c.appErr
}

func (c *commandContext) close() error {
	if c.app == nil {
		return nil
	}
	return c.app.Close()
}

// app holds the wired components shared by every command
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	client     *catalog.Client
	cache      *cache.MemoryCache
	collection *usecase.ItemCollection
	ingestion  *usecase.IngestionController
	board      *usecase.BoardController
}

func newApp(cfg *config.Config, logger *zap.Logger) *app {
	client := catalog.NewClient(cfg.Remote.BaseURL, catalog.ClientConfig{
		Timeout:   cfg.Remote.Timeout,
		RateLimit: cfg.Remote.RateLimit,
		Burst:     cfg.Remote.Burst,
	}, logger)

	memoryCache := cache.NewMemoryCache(cfg.Cache.CleanupInterval)
	collection := usecase.NewItemCollection()

	recognizer := ocr.NewTesseract(ocr.TesseractConfig{
		Path:     cfg.Scanner.TesseractPath,
		Language: cfg.Scanner.Language,
		Timeout:  cfg.Scanner.Timeout,
	}, logger)

	resolver := usecase.NewCatalogResolver(memoryCache, client, usecase.CatalogResolverConfig{
		CacheTTL: cfg.Cache.TTL,
	}, logger)

	ingestion := usecase.NewIngestionController(recognizer, resolver, collection.Append, logger)

	board := usecase.NewBoardController(
		client,
		usecase.NewPlacementSynchronizer(client, logger),
		bucketConfig(cfg.Board),
		logger,
	)

	return &app{
		cfg:        cfg,
		logger:     logger,
		client:     client,
		cache:      memoryCache,
		collection: collection,
		ingestion:  ingestion,
		board:      board,
	}
}

func (a *app) Close() error {
	a.logger.Debug("shutting down", zap.Int("cached_lookups", a.cache.Size()))
	_ = a.logger.Sync()
	return a.cache.Close()
}

func bucketConfig(cfg config.BoardConfig) usecase.BucketConfig {
	known := make([]domain.BucketName, 0, len(cfg.KnownBuckets))
	for _, name := range cfg.KnownBuckets {
		known = append(known, domain.BucketName(name))
	}
	return usecase.BucketConfig{
		KnownBuckets:    known,
		FallbackBucket:  domain.BucketName(cfg.FallbackBucket),
		DiscoverBuckets: cfg.DiscoverBuckets,
	}
}
