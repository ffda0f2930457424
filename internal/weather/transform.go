package weather

import (
	"fmt"
	"time"
)

// Clock supplies the wall-clock moment used for day and time text.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

var precipLabels = map[PrecipType]string{
	PrecipNone:        "",
	PrecipRain:        "비",
	PrecipRainSnow:    "진눈깨비",
	PrecipSnow:        "눈",
	PrecipDrizzle:     "이슬비",
	PrecipDrizzleSnow: "이슬비 + 눈 날림",
	PrecipSnowFlurry:  "눈 날림",
}

var skyLabels = map[SkyType]string{
	SkyClear:        "맑음",
	SkyPartlyCloudy: "구름 많음",
	SkyCloudy:       "흐림",
}

// Sunday first, indexed by time.Weekday.
var weekdays = [7]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

// ConditionText joins the sky and precipitation labels.
func ConditionText(sky SkyType, precip PrecipType) string {
	skyLabel := skyLabels[sky]
	if precipLabel := precipLabels[precip]; precipLabel != "" {
		return skyLabel + " · " + precipLabel
	}
	return skyLabel
}

// TimeText formats t as a 12-hour clock with a leading meridiem, e.g. "PM 1:05".
func TimeText(t time.Time) string {
	h := t.Hour()
	meridiem := "AM"
	if h >= 12 {
		meridiem = "PM"
	}
	displayHour := ((h + 11) % 12) + 1
	return fmt.Sprintf("%s %d:%02d", meridiem, displayHour, t.Minute())
}

// DayText is the parenthesized weekday name of t, e.g. "(월요일)".
func DayText(t time.Time) string {
	return "(" + weekdays[t.Weekday()] + ")"
}

// Transformer derives Presentation values from results.
type Transformer struct {
	clock    Clock
	location *time.Location
	icons    *IconRegistry
}

// NewTransformer creates a Transformer. A nil location means time.Local and
// nil icons means the bundled registry.
func NewTransformer(clock Clock, location *time.Location, icons *IconRegistry) *Transformer {
	if icons == nil {
		icons = MustDefaultIcons()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if location == nil {
		location = time.Local
	}
	return &Transformer{clock: clock, location: location, icons: icons}
}

// Transform returns nil when the result carries no usable reading.
func (t *Transformer) Transform(res Result) *Presentation {
	r := res.Reading
	if r == nil || !r.SkyType.Valid() || !r.PrecipType.Valid() {
		return nil
	}

	now := t.clock.Now().In(t.location)

	return &Presentation{
		ResolvedPlaceName: r.ResolvedPlaceName,
		ResolvedAddress:   r.ResolvedAddress,
		TempC:             r.TempC,
		Precipitation1hMm: r.Precipitation1hMm,
		Humidity:          r.Humidity,
		WindSpeedMs:       r.WindSpeedMs,
		DayText:           DayText(now),
		TimeText:          TimeText(now),
		ConditionText:     ConditionText(r.SkyType, r.PrecipType),
		IconKey:           t.icons.Resolve(r.SkyType, r.PrecipType),
	}
}
