package weather

import (
	"fmt"
	"strconv"
)

// SkyType is the categorical sky condition reported by the remote service.
type SkyType string

const (
	SkyClear        SkyType = "CLEAR"
	SkyPartlyCloudy SkyType = "PARTLY_CLOUDY"
	SkyCloudy       SkyType = "CLOUDY"
)

// SkyTypes lists every declared sky category.
var SkyTypes = []SkyType{SkyClear, SkyPartlyCloudy, SkyCloudy}

// Valid reports whether s is one of the declared sky categories.
func (s SkyType) Valid() bool {
	switch s {
	case SkyClear, SkyPartlyCloudy, SkyCloudy:
		return true
	}
	return false
}

// PrecipType is the categorical precipitation form reported by the remote service.
type PrecipType string

const (
	PrecipNone        PrecipType = "NONE"
	PrecipRain        PrecipType = "RAIN"
	PrecipRainSnow    PrecipType = "RAIN_SNOW"
	PrecipSnow        PrecipType = "SNOW"
	PrecipDrizzle     PrecipType = "DRIZZLE"
	PrecipDrizzleSnow PrecipType = "DRIZZLE_SNOW"
	PrecipSnowFlurry  PrecipType = "SNOW_FLURRY"
)

// PrecipTypes lists every declared precipitation category.
var PrecipTypes = []PrecipType{
	PrecipNone, PrecipRain, PrecipRainSnow, PrecipSnow,
	PrecipDrizzle, PrecipDrizzleSnow, PrecipSnowFlurry,
}

// Valid reports whether p is one of the declared precipitation categories.
func (p PrecipType) Valid() bool {
	switch p {
	case PrecipNone, PrecipRain, PrecipRainSnow, PrecipSnow,
		PrecipDrizzle, PrecipDrizzleSnow, PrecipSnowFlurry:
		return true
	}
	return false
}

// QueryKind discriminates the two input modes of a Query.
type QueryKind string

const (
	QueryRegion      QueryKind = "region"
	QueryCoordinates QueryKind = "coordinates"
)

// Query is a single user-issued lookup, by place name or by coordinates.
// Only the fields belonging to Kind are meaningful.
type Query struct {
	Kind QueryKind `json:"kind"`
	Text string    `json:"text,omitempty"`
	Lon  float64   `json:"lon"`
	Lat  float64   `json:"lat"`
}

// RegionQuery builds a region query. text must already be trimmed.
func RegionQuery(text string) Query {
	return Query{Kind: QueryRegion, Text: text}
}

// CoordinatesQuery builds a coordinates query.
func CoordinatesQuery(lon, lat float64) Query {
	return Query{Kind: QueryCoordinates, Lon: lon, Lat: lat}
}

// Label is the human-readable label of the query, used in logs and the view.
func (q Query) Label() string {
	if q.Kind == QueryCoordinates {
		return fmt.Sprintf("%s,%s",
			strconv.FormatFloat(q.Lon, 'f', -1, 64),
			strconv.FormatFloat(q.Lat, 'f', -1, 64))
	}
	return q.Text
}

// Reading is one weather snapshot for a resolved location.
type Reading struct {
	ResolvedPlaceName string     `json:"resolvedPlaceName"`
	ResolvedAddress   string     `json:"resolvedAddress"`
	TempC             float64    `json:"tempC"`
	Precipitation1hMm float64    `json:"precipitation1hMm"`
	Humidity          float64    `json:"humidity"`
	WindSpeedMs       float64    `json:"windSpeedMs"`
	SkyType           SkyType    `json:"skyType"`
	PrecipType        PrecipType `json:"precipType"`
}

// Result is the remote service's answer. Reading is nil when the body carried
// no usable reading; Message is freeform advisory text passed through as-is.
type Result struct {
	Reading *Reading `json:"weather"`
	Message string   `json:"message"`
}

// Presentation holds display-ready fields derived from a Result.
// It is recomputed on every render and never stored on its own.
type Presentation struct {
	ResolvedPlaceName string  `json:"resolvedPlaceName"`
	ResolvedAddress   string  `json:"resolvedAddress"`
	TempC             float64 `json:"tempC"`
	Precipitation1hMm float64 `json:"precipitation1hMm"`
	Humidity          float64 `json:"humidity"`
	WindSpeedMs       float64 `json:"windSpeedMs"`
	DayText           string  `json:"dayText"`
	TimeText          string  `json:"timeText"`
	ConditionText     string  `json:"conditionText"`
	IconKey           string  `json:"iconKey"`
}

// Status is the discriminator of State.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// State is the request lifecycle snapshot owned by the Orchestrator.
//
//	Idle:    no other field set
//	Loading: Query
//	Success: Query, Result, Presentation (nil when the reading was unusable)
//	Failed:  Query, Err
type State struct {
	Status       Status        `json:"status"`
	Query        Query         `json:"query"`
	Result       *Result       `json:"result,omitempty"`
	Presentation *Presentation `json:"presentation,omitempty"`
	Err          *QueryError   `json:"error,omitempty"`
	RequestID    string        `json:"requestId,omitempty"`
}

func idleState() State { return State{Status: StatusIdle} }

func loadingState(q Query, requestID string) State {
	return State{Status: StatusLoading, Query: q, RequestID: requestID}
}

func successState(q Query, requestID string, res Result, p *Presentation) State {
	return State{Status: StatusSuccess, Query: q, RequestID: requestID, Result: &res, Presentation: p}
}

func failedState(q Query, requestID string, err *QueryError) State {
	return State{Status: StatusFailed, Query: q, RequestID: requestID, Err: err}
}

// clone returns a deep copy so callers cannot reach the orchestrator's fields.
func (s State) clone() State {
	out := s
	if s.Result != nil {
		r := *s.Result
		if s.Result.Reading != nil {
			rd := *s.Result.Reading
			r.Reading = &rd
		}
		out.Result = &r
	}
	if s.Presentation != nil {
		p := *s.Presentation
		out.Presentation = &p
	}
	if s.Err != nil {
		e := *s.Err
		out.Err = &e
	}
	return out
}

// Position is a single geolocation fix.
type Position struct {
	Lon            float64
	Lat            float64
	AccuracyMeters float64
}

// SensorErrorCode mirrors the geolocation error codes of browser sensors.
type SensorErrorCode int

const (
	PermissionDenied    SensorErrorCode = 1
	PositionUnavailable SensorErrorCode = 2
	Timeout             SensorErrorCode = 3
)

// SensorError is reported by a Locator when no fix could be obtained.
type SensorError struct {
	Code    SensorErrorCode
	Message string
}

func (e SensorError) Error() string {
	return fmt.Sprintf("geolocation error %d: %s", e.Code, e.Message)
}
