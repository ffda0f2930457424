package weather

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubProvider struct {
	mu      sync.Mutex
	queries []Query
	res     Result
	err     error
}

func (p *stubProvider) Fetch(_ context.Context, q Query) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queries = append(p.queries, q)
	return p.res, p.err
}

func (p *stubProvider) calls() []Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Query(nil), p.queries...)
}

type outcome struct {
	res Result
	err error
}

type pendingCall struct {
	q       Query
	release chan outcome
}

// gatedProvider blocks each Fetch until the test releases it.
type gatedProvider struct {
	calls chan pendingCall
}

func (p *gatedProvider) Fetch(_ context.Context, q Query) (Result, error) {
	c := pendingCall{q: q, release: make(chan outcome)}
	p.calls <- c
	o := <-c.release
	return o.res, o.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (n *recordingNotifier) Notify(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, text)
}

func (n *recordingNotifier) NotifyError(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, text)
}

type funcLocator func(onSuccess func(Position), onError func(SensorError))

func (f funcLocator) CurrentPosition(_ context.Context, onSuccess func(Position), onError func(SensorError)) {
	f(onSuccess, onError)
}

type sliceHistory struct {
	mu   sync.Mutex
	recs []Record
}

func (h *sliceHistory) Append(rec Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recs = append(h.recs, rec)
}

func (h *sliceHistory) Recent(int) ([]Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Record(nil), h.recs...), nil
}

func reading(place string, sky SkyType, precip PrecipType) *Reading {
	return &Reading{
		ResolvedPlaceName: place,
		ResolvedAddress:   "서울 강남구",
		TempC:             -1.5,
		Humidity:          60,
		WindSpeedMs:       2.3,
		SkyType:           sky,
		PrecipType:        precip,
	}
}

func newTestOrchestrator(t *testing.T, p Provider, opts ...Option) *Orchestrator {
	t.Helper()
	at := time.Date(2026, 2, 2, 9, 5, 0, 0, time.UTC)
	tr := NewTransformer(fixedClock(at), time.UTC, MustDefaultIcons())
	return NewOrchestrator(p, tr, zaptest.NewLogger(t), opts...)
}

func TestOrchestrator_StartsIdle(t *testing.T) {
	o := newTestOrchestrator(t, &stubProvider{})
	assert.Equal(t, StatusIdle, o.CurrentState().Status)

	_, ok := o.LastQuery()
	assert.False(t, ok)
}

func TestSearchByRegion_BlankInputIssuesNoRequest(t *testing.T) {
	p := &stubProvider{}
	o := newTestOrchestrator(t, p)

	for _, raw := range []string{"", " ", "\t\n", "　"} {
		st := o.SearchByRegion(context.Background(), raw)

		assert.Equal(t, StatusFailed, st.Status, "%q", raw)
		require.NotNil(t, st.Err)
		assert.Equal(t, EmptyInput, st.Err.Kind)
		assert.Equal(t, RegionQuery(""), st.Query)
		assert.Equal(t, st, o.CurrentState())
	}
	assert.Empty(t, p.calls())

	_, ok := o.LastQuery()
	assert.False(t, ok)
}

func TestSearchByRegion_EndToEnd(t *testing.T) {
	p := &stubProvider{res: Result{
		Reading: reading("강남역", SkyPartlyCloudy, PrecipSnow),
		Message: "- 옷차림 : 패딩\n- 준비물 : 우산",
	}}
	hist := &sliceHistory{}
	o := newTestOrchestrator(t, p, WithHistory(hist))

	st := o.SearchByRegion(context.Background(), "  강남  ")

	require.Equal(t, []Query{RegionQuery("강남")}, p.calls())
	require.Equal(t, StatusSuccess, st.Status)
	require.NotNil(t, st.Presentation)
	assert.Equal(t, "구름 많음 · 눈", st.Presentation.ConditionText)
	assert.Equal(t, "imgs/PARTLY_CLOUDY_SNOW.png", st.Presentation.IconKey)
	assert.Equal(t, "AM 9:05", st.Presentation.TimeText)
	assert.Equal(t, "- 옷차림 : 패딩\n- 준비물 : 우산", st.Result.Message)
	assert.NotEmpty(t, st.RequestID)

	require.Len(t, hist.recs, 1)
	assert.Equal(t, st.RequestID, hist.recs[0].ID)
	assert.Equal(t, "구름 많음 · 눈", hist.recs[0].ConditionText)
}

func TestSearch_FailuresAreClassified(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"rate limited", Classify(true, 429), RateLimited},
		{"server error", Classify(true, 500), ServerError},
		{"unclassified", Classify(true, 503), UnclassifiedError},
		{"untyped transport error", errors.New("dial tcp: refused"), NetworkError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrchestrator(t, &stubProvider{err: tt.err})

			st := o.SearchByCoordinates(context.Background(), 126.97, 37.56)

			assert.Equal(t, StatusFailed, st.Status)
			require.NotNil(t, st.Err)
			assert.Equal(t, tt.want, st.Err.Kind)
			assert.Equal(t, CoordinatesQuery(126.97, 37.56), st.Query)
			assert.NotEmpty(t, st.Err.Message())
		})
	}
}

func TestSearch_MalformedReadingIsSuccessWithoutPresentation(t *testing.T) {
	o := newTestOrchestrator(t, &stubProvider{res: Result{Message: "no data"}})

	st := o.SearchByRegion(context.Background(), "부평")

	assert.Equal(t, StatusSuccess, st.Status)
	assert.Nil(t, st.Presentation)
	assert.Equal(t, "no data", st.Result.Message)
}

func TestSearchByCoordinates_OutOfRange(t *testing.T) {
	p := &stubProvider{}
	o := newTestOrchestrator(t, p)

	for _, c := range [][2]float64{{181, 0}, {0, -91}, {-180.5, 45}} {
		st := o.SearchByCoordinates(context.Background(), c[0], c[1])
		require.NotNil(t, st.Err)
		assert.Equal(t, InvalidCoordinates, st.Err.Kind)
	}
	assert.Empty(t, p.calls())

	st := o.SearchByCoordinates(context.Background(), -180, 90)
	assert.Equal(t, StatusSuccess, st.Status)
	assert.Len(t, p.calls(), 1)
}

func TestOrchestrator_LastCompletedWins(t *testing.T) {
	gp := &gatedProvider{calls: make(chan pendingCall)}
	o := newTestOrchestrator(t, gp)
	ctx := context.Background()

	regionDone := make(chan State, 1)
	go func() { regionDone <- o.SearchByRegion(ctx, "강남") }()
	regionCall := <-gp.calls
	assert.Equal(t, StatusLoading, o.CurrentState().Status)
	assert.Equal(t, RegionQuery("강남"), o.CurrentState().Query)

	coordDone := make(chan State, 1)
	go func() { coordDone <- o.SearchByCoordinates(ctx, 127.03, 37.5) }()
	coordCall := <-gp.calls
	assert.Equal(t, CoordinatesQuery(127.03, 37.5), o.CurrentState().Query)

	// The newer request completes first.
	coordCall.release <- outcome{res: Result{Reading: reading("역삼동", SkyClear, PrecipNone)}}
	<-coordDone
	st := o.CurrentState()
	require.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, CoordinatesQuery(127.03, 37.5), st.Query)
	assert.Equal(t, "맑음", st.Presentation.ConditionText)

	// The stale request completes last and overwrites it.
	regionCall.release <- outcome{res: Result{Reading: reading("강남역", SkyCloudy, PrecipRain)}}
	<-regionDone
	st = o.CurrentState()
	require.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, RegionQuery("강남"), st.Query)
	assert.Equal(t, "흐림 · 비", st.Presentation.ConditionText)
}

func TestCurrentState_ReturnsIsolatedSnapshot(t *testing.T) {
	o := newTestOrchestrator(t, &stubProvider{res: Result{Reading: reading("강남역", SkyClear, PrecipNone)}})
	o.SearchByRegion(context.Background(), "강남")

	snap := o.CurrentState()
	snap.Presentation.ConditionText = "mutated"
	snap.Result.Reading.TempC = 99

	again := o.CurrentState()
	assert.Equal(t, "맑음", again.Presentation.ConditionText)
	assert.Equal(t, -1.5, again.Result.Reading.TempC)
}

func TestRefresh_ReissuesLastQuery(t *testing.T) {
	p := &stubProvider{res: Result{Reading: reading("강남역", SkyClear, PrecipNone)}}
	o := newTestOrchestrator(t, p)

	_, ok := o.Refresh(context.Background())
	assert.False(t, ok)
	assert.Empty(t, p.calls())

	o.SearchByRegion(context.Background(), "강남")
	st, ok := o.Refresh(context.Background())
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, []Query{RegionQuery("강남"), RegionQuery("강남")}, p.calls())
}

func TestSearchByCurrentPosition(t *testing.T) {
	t.Run("accurate fix", func(t *testing.T) {
		p := &stubProvider{res: Result{Reading: reading("", SkyClear, PrecipNone)}}
		n := &recordingNotifier{}
		loc := funcLocator(func(ok func(Position), _ func(SensorError)) {
			ok(Position{Lon: 126.72, Lat: 37.49, AccuracyMeters: 20})
		})
		o := newTestOrchestrator(t, p, WithLocator(loc), WithNotifier(n))

		st, err := o.SearchByCurrentPosition(context.Background())

		require.NoError(t, err)
		assert.Equal(t, StatusSuccess, st.Status)
		assert.Equal(t, []Query{CoordinatesQuery(126.72, 37.49)}, p.calls())
		assert.Empty(t, n.infos)
		assert.Empty(t, n.errors)
	})

	t.Run("inaccurate fix advises and still searches", func(t *testing.T) {
		p := &stubProvider{res: Result{Reading: reading("", SkyClear, PrecipNone)}}
		n := &recordingNotifier{}
		loc := funcLocator(func(ok func(Position), _ func(SensorError)) {
			ok(Position{Lon: 126.72, Lat: 37.49, AccuracyMeters: 5000})
		})
		o := newTestOrchestrator(t, p, WithLocator(loc), WithNotifier(n), WithMaxAccuracy(1000))

		st, err := o.SearchByCurrentPosition(context.Background())

		require.NoError(t, err)
		assert.Equal(t, StatusSuccess, st.Status)
		require.Len(t, n.infos, 1)
		assert.Contains(t, n.infos[0], "5000m")
	})

	t.Run("sensor error is only a notice", func(t *testing.T) {
		p := &stubProvider{}
		n := &recordingNotifier{}
		loc := funcLocator(func(_ func(Position), fail func(SensorError)) {
			fail(SensorError{Code: PermissionDenied, Message: "denied"})
		})
		o := newTestOrchestrator(t, p, WithLocator(loc), WithNotifier(n))

		st, err := o.SearchByCurrentPosition(context.Background())

		var serr SensorError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, PermissionDenied, serr.Code)
		assert.Equal(t, StatusIdle, st.Status)
		assert.Equal(t, StatusIdle, o.CurrentState().Status)
		assert.Empty(t, p.calls())
		assert.Equal(t, []string{"위치 권한이 거부되었습니다."}, n.errors)
	})

	t.Run("no locator", func(t *testing.T) {
		n := &recordingNotifier{}
		o := newTestOrchestrator(t, &stubProvider{}, WithNotifier(n))

		_, err := o.SearchByCurrentPosition(context.Background())

		var serr SensorError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, PositionUnavailable, serr.Code)
		assert.Len(t, n.errors, 1)
	})
}
