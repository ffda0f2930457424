package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/i474232898/weatherpick/internal/common"
	"github.com/i474232898/weatherpick/internal/weather"
)

// View is what a screen shows for one orchestrator state.
type View struct {
	Status       weather.Status        `json:"status"`
	Query        string                `json:"query,omitempty"`
	Title        string                `json:"title,omitempty"`
	Presentation *weather.Presentation `json:"presentation,omitempty"`
	Message      string                `json:"message,omitempty"`
	ErrorKind    weather.ErrorKind     `json:"errorKind,omitempty"`
	ErrorMessage string                `json:"errorMessage,omitempty"`
	RequestID    string                `json:"requestId,omitempty"`
}

// Build renders s. The presentation is recomputed from the stored result so
// day and time text reflect the moment of rendering.
func Build(s weather.State, t *weather.Transformer) View {
	v := View{Status: s.Status, RequestID: s.RequestID}
	if s.Status != weather.StatusIdle {
		v.Query = s.Query.Label()
	}

	switch s.Status {
	case weather.StatusSuccess:
		if s.Result != nil {
			v.Message = s.Result.Message
			v.Presentation = t.Transform(*s.Result)
		}
		if v.Presentation != nil {
			v.Title = common.FirstNonEmpty(v.Presentation.ResolvedPlaceName, v.Presentation.ResolvedAddress, v.Query)
		} else {
			v.Title = v.Query
		}
	case weather.StatusFailed:
		if s.Err != nil {
			v.ErrorKind = s.Err.Kind
			v.ErrorMessage = s.Err.Message()
		}
	}
	return v
}

// WriteCard prints v as a plain-text weather card.
func WriteCard(w io.Writer, v View) error {
	var b strings.Builder

	switch v.Status {
	case weather.StatusIdle:
		b.WriteString("조회된 날씨가 없습니다.\n")
	case weather.StatusLoading:
		fmt.Fprintf(&b, "%s 조회 중...\n", v.Query)
	case weather.StatusFailed:
		fmt.Fprintf(&b, "⚠ %s\n", v.ErrorMessage)
	case weather.StatusSuccess:
		p := v.Presentation
		if p == nil {
			fmt.Fprintf(&b, "%s\n날씨 정보를 표시할 수 없습니다.\n", v.Title)
			break
		}
		fmt.Fprintf(&b, "📍 %s\n", v.Title)
		if p.ResolvedPlaceName != "" && p.ResolvedAddress != "" {
			fmt.Fprintf(&b, "   %s\n", p.ResolvedAddress)
		}
		fmt.Fprintf(&b, "%s %s\n", p.DayText, p.TimeText)
		fmt.Fprintf(&b, "%s [%s]\n", p.ConditionText, p.IconKey)
		fmt.Fprintf(&b, "🌡  기온      %.1f°C\n", p.TempC)
		fmt.Fprintf(&b, "☔ 1시간 강수 %.1fmm\n", p.Precipitation1hMm)
		fmt.Fprintf(&b, "💧 습도      %.0f%%\n", p.Humidity)
		fmt.Fprintf(&b, "💨 풍속      %.1fm/s\n", p.WindSpeedMs)
	}
	if v.Message != "" {
		b.WriteString("\n")
		b.WriteString(v.Message)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
