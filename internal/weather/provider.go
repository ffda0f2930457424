package weather

import (
	"context"
	"time"
)

// Provider performs the single outbound lookup for a query.
// Failures are returned as *QueryError.
type Provider interface {
	Fetch(ctx context.Context, q Query) (Result, error)
}

// Locator is the geolocation sensor. Each call invokes exactly one of the
// callbacks exactly once.
type Locator interface {
	CurrentPosition(ctx context.Context, onSuccess func(Position), onError func(SensorError))
}

// Notifier is the transient notification channel for advisories and
// sensor errors. It never influences the query state.
type Notifier interface {
	Notify(text string)
	NotifyError(text string)
}

// Record summarizes one completed request for the session history.
type Record struct {
	ID            string    `json:"id"`
	Query         Query     `json:"query"`
	Status        Status    `json:"status"`
	ErrorKind     ErrorKind `json:"errorKind,omitempty"`
	HTTPStatus    int       `json:"httpStatus,omitempty"`
	ConditionText string    `json:"conditionText,omitempty"`
	CompletedAt   time.Time `json:"completedAt"`
}

// History is the contract the in-memory session history must satisfy.
type History interface {
	Append(rec Record)
	Recent(limit int) ([]Record, error)
}
