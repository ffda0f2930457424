package providers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/i474232898/weatherpick/internal/weather"
)

// HTTPClientConfig bundles the HTTP client used for outbound calls.
type HTTPClientConfig struct {
	Client *http.Client
}

var errNoHTTPClient = errors.New("http client not configured")

// doRequest executes exactly one attempt and classifies the outcome. A nil
// error means a 2xx response whose body the caller must close.
func doRequest(
	ctx context.Context,
	cfg HTTPClientConfig,
	buildRequest func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}

	req, err := buildRequest(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := cfg.Client.Do(req)
	if err != nil {
		return nil, weather.NewNetworkError(err)
	}

	if qerr := weather.Classify(true, resp.StatusCode); qerr != nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, qerr
	}
	return resp, nil
}
