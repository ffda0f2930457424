package weather

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		received bool
		status   int
		want     ErrorKind
	}{
		{"no response", false, 0, NetworkError},
		{"rate limited", true, http.StatusTooManyRequests, RateLimited},
		{"server error", true, http.StatusInternalServerError, ServerError},
		{"unavailable", true, http.StatusServiceUnavailable, UnclassifiedError},
		{"not found", true, http.StatusNotFound, UnclassifiedError},
		{"redirect", true, http.StatusFound, UnclassifiedError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.received, tt.status)
			require.NotNil(t, err)
			assert.Equal(t, tt.want, err.Kind)
			assert.NotEmpty(t, err.Message())
		})
	}
}

func TestClassify_SuccessIsNotAnError(t *testing.T) {
	for _, status := range []int{200, 201, 204, 299} {
		assert.Nil(t, Classify(true, status), "status %d", status)
	}
}

func TestClassify_UnclassifiedKeepsStatus(t *testing.T) {
	err := Classify(true, http.StatusServiceUnavailable)
	assert.Equal(t, 503, err.Status)
	assert.Equal(t, "날씨 조회에 실패했습니다. (HTTP 503)", err.Message())
}

func TestMessage_EveryKindHasText(t *testing.T) {
	kinds := []ErrorKind{EmptyInput, InvalidCoordinates, NetworkError, RateLimited, ServerError, UnclassifiedError}
	for _, k := range kinds {
		assert.NotEmpty(t, Message(k, 0), k)
	}
	assert.Equal(t, "지역을 입력해 주세요.", Message(EmptyInput, 0))
}

func TestQueryError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("fetch: %w", NewNetworkError(cause))

	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, NetworkError, qerr.Kind)
	assert.ErrorIs(t, err, cause)
}
