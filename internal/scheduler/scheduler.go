package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weatherpick/internal/weather"
)

// Refresher is the part of the orchestrator the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) (weather.State, bool)
}

// errRetryable marks a refresh whose outcome should count against the breaker.
var errRetryable = errors.New("refresh failed")

// Scheduler periodically re-issues the last query.
type Scheduler struct {
	scheduler *gocron.Scheduler
	breaker   *gobreaker.CircuitBreaker
	target    Refresher
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler. An interval <= 0 disables it.
func New(target Refresher, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
		timeout:   30 * time.Second,
		logger:    logger.Named("scheduler"),
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "refresh",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     maxDuration(interval*3, time.Minute),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Info("breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return s
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.runOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("refresh scheduled", zap.Duration("interval", s.interval))
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// BreakerState reports the refresh breaker state.
func (s *Scheduler) BreakerState() gobreaker.State {
	return s.breaker.State()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.breaker.Execute(func() (interface{}, error) {
		state, ok := s.target.Refresh(ctx)
		if !ok {
			s.logger.Debug("nothing to refresh yet")
			return nil, nil
		}
		if state.Err != nil && retryable(state.Err.Kind) {
			return state, errRetryable
		}
		return state, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		s.logger.Warn("refresh skipped; breaker open")
	case err != nil:
		s.logger.Info("refresh failed", zap.Error(err))
	}
}

func retryable(kind weather.ErrorKind) bool {
	switch kind {
	case weather.NetworkError, weather.RateLimited, weather.ServerError:
		return true
	default:
		return false
	}
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
