package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/i474232898/weatherpick/internal/weather"
)

type AppConfig struct {
	// APIBaseURL is the weatherpick backend serving /api/weather/now.
	APIBaseURL string `validate:"required,url"`

	// HTTPTimeout bounds each outbound request (0 = no timeout).
	HTTPTimeout time.Duration `validate:"gte=0"`

	// Port of the local view server.
	Port string `validate:"required,numeric"`

	// RefreshInterval re-issues the last query periodically (0 = off).
	RefreshInterval time.Duration `validate:"gte=0"`

	// Timezone used for day and time text.
	Timezone string `validate:"required"`
	Location *time.Location

	// Sensor is the fixed position reported by the locator; nil = unavailable.
	Sensor            *weather.Position
	MaxAccuracyMeters float64 `validate:"gte=0"`

	// Session history retention.
	HistoryMax    int           `validate:"gte=0"` // 0 = unlimited
	HistoryMaxAge time.Duration `validate:"gte=0"` // 0 = unlimited

	NoticeMax int `validate:"gte=0"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json console"`

	dotenvMissing bool
}

var validate = validator.New()

// Load reads configuration from .env and the environment with sensible defaults.
// A missing .env file is not an error.
func Load() (*AppConfig, error) {
	envErr := godotenv.Load()

	cfg := &AppConfig{
		APIBaseURL:        getenvDefault("WEATHERPICK_API_BASE_URL", "http://localhost:8080"),
		Port:              getenvDefault("PORT", "3000"),
		Timezone:          getenvDefault("TIMEZONE", "Asia/Seoul"),
		MaxAccuracyMeters: getenvFloat("MAX_ACCURACY_M", weather.DefaultMaxAccuracyMeters),
		HistoryMax:        getenvInt("HISTORY_MAX", 50),
		NoticeMax:         getenvInt("NOTICE_MAX", 20),
		LogLevel:          getenvDefault("LOG_LEVEL", "info"),
		LogFormat:         getenvDefault("LOG_FORMAT", "console"),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "0s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "0s"); err != nil {
		return nil, err
	}
	if cfg.HistoryMaxAge, err = getenvDuration("HISTORY_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	if cfg.Sensor, err = loadSensor(); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	if envErr != nil {
		// Reported after the logger exists; see NewLogger.
		cfg.dotenvMissing = true
	}
	return cfg, nil
}

// loadSensor reads SENSOR_LON/SENSOR_LAT/SENSOR_ACCURACY_M. Both coordinates
// must be set for the sensor to be available.
func loadSensor() (*weather.Position, error) {
	lonStr, latStr := os.Getenv("SENSOR_LON"), os.Getenv("SENSOR_LAT")
	if lonStr == "" && latStr == "" {
		return nil, nil
	}
	if lonStr == "" || latStr == "" {
		return nil, fmt.Errorf("SENSOR_LON and SENSOR_LAT must be set together")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SENSOR_LON: %w", err)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SENSOR_LAT: %w", err)
	}
	return &weather.Position{
		Lon:            lon,
		Lat:            lat,
		AccuracyMeters: getenvFloat("SENSOR_ACCURACY_M", 0),
	}, nil
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c *AppConfig) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if c.LogFormat == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	if c.dotenvMissing {
		logger.Info("no .env file found; using environment only")
	}
	return logger, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
