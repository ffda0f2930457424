package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/i474232898/weatherpick/internal/weather"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

// WeatherPickProvider implements weather.Provider against the
// /api/weather/now endpoint of the weatherpick backend.
type WeatherPickProvider struct {
	baseURL string
	httpCfg HTTPClientConfig
	logger  *zap.Logger
}

func NewWeatherPickProvider(client *http.Client, baseURL string, logger *zap.Logger) *WeatherPickProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherPickProvider{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/weather/now",
		httpCfg: HTTPClientConfig{Client: client},
		logger:  logger,
	}
}

// nowPayload is the wire envelope. The reading is decoded on its own so a
// malformed reading does not lose the message.
type nowPayload struct {
	Weather json.RawMessage `json:"weather"`
	Message string          `json:"message"`
}

// readingPayload uses pointers to distinguish missing fields from zero values.
// At least one of the place name and the address must be present.
type readingPayload struct {
	ResolvedPlaceName *string  `json:"resolvedPlaceName" validate:"required_without=ResolvedAddress"`
	ResolvedAddress   *string  `json:"resolvedAddress" validate:"required_without=ResolvedPlaceName"`
	TempC             *float64 `json:"tempC" validate:"required"`
	Precipitation1hMm *float64 `json:"precipitation1hMm" validate:"required,min=0"`
	Humidity          *float64 `json:"humidity" validate:"required,min=0,max=100"`
	WindSpeedMs       *float64 `json:"windSpeedMs" validate:"required,min=0"`
	PrecipType        *string  `json:"precipType" validate:"required,oneof=NONE RAIN RAIN_SNOW SNOW DRIZZLE DRIZZLE_SNOW SNOW_FLURRY"`
	SkyType           *string  `json:"skyType" validate:"required,oneof=CLEAR PARTLY_CLOUDY CLOUDY"`
}

func (r *readingPayload) toReading() *weather.Reading {
	return &weather.Reading{
		ResolvedPlaceName: deref(r.ResolvedPlaceName),
		ResolvedAddress:   deref(r.ResolvedAddress),
		TempC:             *r.TempC,
		Precipitation1hMm: *r.Precipitation1hMm,
		Humidity:          *r.Humidity,
		WindSpeedMs:       *r.WindSpeedMs,
		SkyType:           weather.SkyType(*r.SkyType),
		PrecipType:        weather.PrecipType(*r.PrecipType),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// RequestURL builds the outbound URL for q.
func (p *WeatherPickProvider) RequestURL(q weather.Query) (string, error) {
	values := url.Values{}
	switch q.Kind {
	case weather.QueryRegion:
		values.Set("region", q.Text)
	case weather.QueryCoordinates:
		values.Set("lon", strconv.FormatFloat(q.Lon, 'f', -1, 64))
		values.Set("lat", strconv.FormatFloat(q.Lat, 'f', -1, 64))
	default:
		return "", fmt.Errorf("unsupported query kind %q", q.Kind)
	}
	return fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil
}

// Fetch issues one GET for q. Non-2xx and transport failures come back as
// *weather.QueryError; an unusable 2xx body yields a Result with a nil Reading.
func (p *WeatherPickProvider) Fetch(ctx context.Context, q weather.Query) (weather.Result, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		u, err := p.RequestURL(q)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequest(ctx, p.httpCfg, buildRequest)
	if err != nil {
		return weather.Result{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return weather.Result{}, weather.NewNetworkError(fmt.Errorf("read body: %w", err))
	}

	var payload nowPayload
	if err := sonic.Unmarshal(body, &payload); err != nil {
		p.logger.Warn("undecodable weather response", zap.String("query", q.Label()), zap.Error(err))
		return weather.Result{}, nil
	}

	res := weather.Result{Message: payload.Message}
	if len(payload.Weather) == 0 || string(payload.Weather) == "null" {
		p.logger.Warn("weather response has no reading", zap.String("query", q.Label()))
		return res, nil
	}

	var reading readingPayload
	if err := sonic.Unmarshal(payload.Weather, &reading); err != nil {
		p.logger.Warn("undecodable weather reading", zap.String("query", q.Label()), zap.Error(err))
		return res, nil
	}
	if err := validate.Struct(&reading); err != nil {
		p.logger.Warn("weather response reading is malformed", zap.String("query", q.Label()), zap.Error(err))
		return res, nil
	}

	res.Reading = reading.toReading()
	return res, nil
}
