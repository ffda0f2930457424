package main

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/i474232898/weatherpick/internal/config"
	"github.com/i474232898/weatherpick/internal/device"
	"github.com/i474232898/weatherpick/internal/store"
	"github.com/i474232898/weatherpick/internal/weather"
	"github.com/i474232898/weatherpick/internal/weather/providers"
)

// app holds the wired components shared by every command.
type app struct {
	cfg          *config.AppConfig
	logger       *zap.Logger
	transformer  *weather.Transformer
	orchestrator *weather.Orchestrator
	history      *store.MemoryStore
	notices      *device.NoticeBuffer
}

func newApp(apiOverride string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if apiOverride != "" {
		cfg.APIBaseURL = apiOverride
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	icons, err := weather.NewIconRegistry(weather.DefaultIconAssets())
	if err != nil {
		return nil, err
	}

	// Shared HTTP client for outbound calls. Timeout 0 means none.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	provider := providers.NewWeatherPickProvider(httpClient, cfg.APIBaseURL, logger.Named("provider"))

	locator := device.UnavailableLocator()
	if cfg.Sensor != nil {
		locator = device.NewStaticLocator(*cfg.Sensor)
	}

	memStore := store.NewMemoryStore(cfg.HistoryMax, cfg.HistoryMaxAge)
	notices := device.NewNoticeBuffer(cfg.NoticeMax)
	notifier := device.Fanout{device.NewLogNotifier(os.Stderr, logger.Named("notify")), notices}

	transformer := weather.NewTransformer(weather.SystemClock{}, cfg.Location, icons)
	orch := weather.NewOrchestrator(provider, transformer, logger.Named("orchestrator"),
		weather.WithLocator(locator),
		weather.WithNotifier(notifier),
		weather.WithHistory(memStore),
		weather.WithMaxAccuracy(cfg.MaxAccuracyMeters),
	)

	return &app{
		cfg:          cfg,
		logger:       logger,
		transformer:  transformer,
		orchestrator: orch,
		history:      memStore,
		notices:      notices,
	}, nil
}
