package device

import (
	"context"

	"github.com/i474232898/weatherpick/internal/weather"
)

// StaticLocator reports a fixed, preconfigured position. It stands in for a
// hardware or browser sensor on hosts that have none.
type StaticLocator struct {
	pos        weather.Position
	configured bool
}

// NewStaticLocator returns a locator that always reports pos.
func NewStaticLocator(pos weather.Position) *StaticLocator {
	return &StaticLocator{pos: pos, configured: true}
}

// UnavailableLocator returns a locator that always fails with PositionUnavailable.
func UnavailableLocator() *StaticLocator {
	return &StaticLocator{}
}

// CurrentPosition invokes exactly one callback, synchronously.
func (l *StaticLocator) CurrentPosition(ctx context.Context, onSuccess func(weather.Position), onError func(weather.SensorError)) {
	if err := ctx.Err(); err != nil {
		onError(weather.SensorError{Code: weather.Timeout, Message: err.Error()})
		return
	}
	if !l.configured {
		onError(weather.SensorError{Code: weather.PositionUnavailable, Message: "no position configured"})
		return
	}
	onSuccess(l.pos)
}
