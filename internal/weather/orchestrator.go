package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validate = validator.New()

// coordinates carries the only validation applied to sensor or user input.
type coordinates struct {
	Lon float64 `validate:"min=-180,max=180"`
	Lat float64 `validate:"min=-90,max=90"`
}

// DefaultMaxAccuracyMeters is the accuracy above which a fix triggers an advisory.
const DefaultMaxAccuracyMeters = 1000

// Orchestrator owns the query lifecycle. It is the sole writer of State;
// transitions are applied in request completion order (last completed wins).
type Orchestrator struct {
	provider    Provider
	transformer *Transformer
	logger      *zap.Logger

	locator     Locator
	notifier    Notifier
	history     History
	maxAccuracy float64

	mu      sync.Mutex
	state   State
	last    Query
	hasLast bool
}

// Option configures optional collaborators of the Orchestrator.
type Option func(*Orchestrator)

// WithLocator sets the geolocation sensor used by SearchByCurrentPosition.
func WithLocator(l Locator) Option { return func(o *Orchestrator) { o.locator = l } }

// WithNotifier sets the notification channel for advisories and sensor errors.
func WithNotifier(n Notifier) Option { return func(o *Orchestrator) { o.notifier = n } }

// WithHistory records every completed request into h.
func WithHistory(h History) Option { return func(o *Orchestrator) { o.history = h } }

// WithMaxAccuracy sets the accuracy threshold in meters.
func WithMaxAccuracy(meters float64) Option {
	return func(o *Orchestrator) { o.maxAccuracy = meters }
}

// NewOrchestrator creates an Orchestrator in the Idle state.
func NewOrchestrator(provider Provider, transformer *Transformer, logger *zap.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		provider:    provider,
		transformer: transformer,
		logger:      logger,
		notifier:    discardNotifier{},
		maxAccuracy: DefaultMaxAccuracyMeters,
		state:       idleState(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CurrentState returns a snapshot of the current state.
func (o *Orchestrator) CurrentState() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// LastQuery returns the most recently issued query.
func (o *Orchestrator) LastQuery() (Query, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last, o.hasLast
}

// SearchByRegion trims rawText and looks it up. Blank input fails with
// EmptyInput without issuing a request. The returned state is the outcome of
// this call, which may already have been overwritten by a later completion.
func (o *Orchestrator) SearchByRegion(ctx context.Context, rawText string) State {
	text := strings.TrimSpace(rawText)
	if text == "" {
		next := failedState(RegionQuery(""), "", &QueryError{Kind: EmptyInput})
		o.set(next)
		o.logger.Debug("empty region input; no request issued")
		return next.clone()
	}
	return o.issue(ctx, RegionQuery(text))
}

// SearchByCoordinates looks up a coordinate pair. Only the numeric range is checked.
func (o *Orchestrator) SearchByCoordinates(ctx context.Context, lon, lat float64) State {
	q := CoordinatesQuery(lon, lat)
	if err := validate.Struct(coordinates{Lon: lon, Lat: lat}); err != nil {
		next := failedState(q, "", &QueryError{Kind: InvalidCoordinates, Cause: err})
		o.set(next)
		o.logger.Debug("coordinates out of range; no request issued",
			zap.Float64("lon", lon), zap.Float64("lat", lat))
		return next.clone()
	}
	return o.issue(ctx, q)
}

// Refresh re-issues the last issued query. It reports false when no query
// has been issued yet.
func (o *Orchestrator) Refresh(ctx context.Context) (State, bool) {
	q, ok := o.LastQuery()
	if !ok {
		return o.CurrentState(), false
	}
	return o.issue(ctx, q), true
}

// SearchByCurrentPosition asks the locator for one fix and searches by it.
// Sensor failures are sent to the notifier, returned as SensorError, and
// leave the state untouched.
func (o *Orchestrator) SearchByCurrentPosition(ctx context.Context) (State, error) {
	pos, err := o.locate(ctx)
	if err != nil {
		var serr SensorError
		if !errors.As(err, &serr) {
			serr = SensorError{Code: Timeout, Message: err.Error()}
		}
		o.logger.Warn("geolocation failed", zap.Int("code", int(serr.Code)), zap.String("message", serr.Message))
		o.notifier.NotifyError(sensorMessage(serr))
		return o.CurrentState(), serr
	}

	if o.maxAccuracy > 0 && pos.AccuracyMeters > o.maxAccuracy {
		o.notifier.Notify(fmt.Sprintf("위치 정확도가 낮습니다. (오차 약 %.0fm)", pos.AccuracyMeters))
	}
	return o.SearchByCoordinates(ctx, pos.Lon, pos.Lat), nil
}

func (o *Orchestrator) locate(ctx context.Context) (Position, error) {
	if o.locator == nil {
		return Position{}, SensorError{Code: PositionUnavailable, Message: "no locator configured"}
	}

	type fix struct {
		pos Position
		err error
	}
	ch := make(chan fix, 1)
	var once sync.Once

	o.locator.CurrentPosition(ctx,
		func(p Position) { once.Do(func() { ch <- fix{pos: p} }) },
		func(e SensorError) { once.Do(func() { ch <- fix{err: e} }) },
	)

	select {
	case f := <-ch:
		return f.pos, f.err
	case <-ctx.Done():
		return Position{}, SensorError{Code: Timeout, Message: ctx.Err().Error()}
	}
}

func sensorMessage(e SensorError) string {
	switch e.Code {
	case PermissionDenied:
		return "위치 권한이 거부되었습니다."
	case PositionUnavailable:
		return "현재 위치를 확인할 수 없습니다."
	case Timeout:
		return "위치 확인 시간이 초과되었습니다."
	default:
		return "위치 정보를 가져오지 못했습니다."
	}
}

// issue moves to Loading, performs exactly one request and applies its outcome.
func (o *Orchestrator) issue(ctx context.Context, q Query) State {
	requestID := uuid.NewString()
	log := o.logger.With(zap.String("request_id", requestID), zap.String("query", q.Label()))

	o.mu.Lock()
	o.state = loadingState(q, requestID)
	o.last, o.hasLast = q, true
	o.mu.Unlock()

	log.Debug("issuing weather request", zap.String("kind", string(q.Kind)))

	res, err := o.provider.Fetch(ctx, q)

	var next State
	if err != nil {
		qerr := toQueryError(err)
		log.Info("weather request failed", zap.String("kind", string(qerr.Kind)), zap.Int("status", qerr.Status), zap.Error(err))
		next = failedState(q, requestID, qerr)
	} else {
		p := o.transformer.Transform(res)
		if p == nil {
			log.Warn("weather response carried no usable reading")
		}
		next = successState(q, requestID, res, p)
		log.Debug("weather request completed")
	}

	o.set(next)
	o.record(next)
	return next.clone()
}

func (o *Orchestrator) set(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) record(s State) {
	if o.history == nil {
		return
	}
	rec := Record{
		ID:          s.RequestID,
		Query:       s.Query,
		Status:      s.Status,
		CompletedAt: time.Now().UTC(),
	}
	if s.Err != nil {
		rec.ErrorKind = s.Err.Kind
		rec.HTTPStatus = s.Err.Status
	}
	if s.Presentation != nil {
		rec.ConditionText = s.Presentation.ConditionText
	}
	o.history.Append(rec)
}

// toQueryError keeps typed errors and treats anything else as a transport failure.
func toQueryError(err error) *QueryError {
	var qerr *QueryError
	if errors.As(err, &qerr) {
		return qerr
	}
	return NewNetworkError(err)
}

type discardNotifier struct{}

func (discardNotifier) Notify(string)      {}
func (discardNotifier) NotifyError(string) {}
