package weather

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies why a query failed.
type ErrorKind string

const (
	EmptyInput         ErrorKind = "empty_input"
	InvalidCoordinates ErrorKind = "invalid_coordinates"
	NetworkError       ErrorKind = "network_error"
	RateLimited        ErrorKind = "rate_limited"
	ServerError        ErrorKind = "server_error"
	UnclassifiedError  ErrorKind = "unclassified_error"
)

// QueryError is the typed failure carried by a Failed state.
// Status is only set for UnclassifiedError, RateLimited and ServerError.
type QueryError struct {
	Kind   ErrorKind `json:"kind"`
	Status int       `json:"status,omitempty"`
	Cause  error     `json:"-"`
}

func (e *QueryError) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Kind, e.Status)
	default:
		return string(e.Kind)
	}
}

func (e *QueryError) Unwrap() error { return e.Cause }

// Message is the user-facing text for this error.
func (e *QueryError) Message() string {
	return Message(e.Kind, e.Status)
}

// NewNetworkError wraps a transport failure where no response was received.
func NewNetworkError(cause error) *QueryError {
	return &QueryError{Kind: NetworkError, Cause: cause}
}

// Classify maps a transport outcome to a QueryError. received is false when
// no response arrived at all. A 2xx status is not an error and yields nil.
func Classify(received bool, status int) *QueryError {
	if !received {
		return &QueryError{Kind: NetworkError}
	}
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return &QueryError{Kind: RateLimited, Status: status}
	case status == http.StatusInternalServerError:
		return &QueryError{Kind: ServerError, Status: status}
	default:
		return &QueryError{Kind: UnclassifiedError, Status: status}
	}
}

var messages = map[ErrorKind]string{
	EmptyInput:         "지역을 입력해 주세요.",
	InvalidCoordinates: "위치 좌표가 올바르지 않습니다.",
	NetworkError:       "네트워크 연결을 확인해 주세요.",
	RateLimited:        "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요.",
	ServerError:        "서버에 문제가 발생했습니다. 잠시 후 다시 시도해 주세요.",
}

// Message returns the user-facing text for kind. Kinds without a dedicated
// entry fall back to a generic failure text that names the status code.
func Message(kind ErrorKind, status int) string {
	if m, ok := messages[kind]; ok {
		return m
	}
	if status != 0 {
		return fmt.Sprintf("날씨 조회에 실패했습니다. (HTTP %d)", status)
	}
	return "날씨 조회에 실패했습니다."
}
