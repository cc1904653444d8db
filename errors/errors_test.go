package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommonAppError_ConvertToHTTPError(t *testing.T) {
	tests := []struct {
		name      string
		errorType ErrorType
		want      int
	}{
		{name: "not found", errorType: ErrorTypeNotFound, want: http.StatusNotFound},
		{name: "no data", errorType: ErrorTypeNoData, want: http.StatusNotFound},
		{name: "bad request", errorType: ErrorTypeBadRequest, want: http.StatusBadRequest},
		{name: "info", errorType: ErrorTypeInfo, want: http.StatusOK},
		{name: "input", errorType: ErrorTypeInput, want: http.StatusUnprocessableEntity},
		{name: "config", errorType: ErrorTypeConfig, want: http.StatusInternalServerError},
		{name: "server error", errorType: ErrorTypeServerError, want: http.StatusInternalServerError},
		{name: "unmapped", errorType: ErrorType("Other"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := NewAppError(tt.errorType, "error message").ConvertToHTTPError()

			assert.Equal(t, tt.want, httpErr.Code)
			assert.Equal(t, "error message", httpErr.Message)
		})
	}
}

func TestNewAppError(t *testing.T) {
	err := NewAppError(ErrorTypeNoData, "nothing here")

	assert.Equal(t, CommonAppError{errorType: ErrorTypeNoData, message: "nothing here"}, err)
	assert.Equal(t, "nothing here", err.Error())
	assert.Equal(t, "nothing here", err.Message())
	assert.Equal(t, ErrorTypeNoData, err.ErrorType())
	assert.True(t, err.IsErrorType(ErrorTypeNoData))
	assert.False(t, err.IsErrorType(ErrorTypeNotFound))
}
