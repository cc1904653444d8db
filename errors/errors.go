package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type ErrorType string

const (
	ErrorTypeNotFound    ErrorType = "NotFound"
	ErrorTypeServerError ErrorType = "ServerError"
	ErrorTypeBadRequest  ErrorType = "BadRequest"
	ErrorTypeConfig      ErrorType = "ConfigurationError"
	ErrorTypeInput       ErrorType = "InputError"
	ErrorTypeNoData      ErrorType = "NoData"
	ErrorTypeInfo        ErrorType = "Info"
	ErrorTypeUnknown     ErrorType = "Unknown"
)

// AppError is an error carrying a category that maps onto an HTTP status.
type AppError interface {
	ErrorType() ErrorType
	Message() string
	IsErrorType(errorType ErrorType) bool
	Error() string
	ConvertToHTTPError() *echo.HTTPError
}

type CommonAppError struct {
	errorType ErrorType
	message   string
}

func (e CommonAppError) ErrorType() ErrorType {
	return e.errorType
}

func (e CommonAppError) Message() string {
	return e.message
}

func (e CommonAppError) Error() string {
	return e.message
}

func (e CommonAppError) IsErrorType(errorType ErrorType) bool {
	return errorType == e.errorType
}

func (e CommonAppError) ConvertToHTTPError() *echo.HTTPError {
	return echo.NewHTTPError(errorTypeToCode(e.ErrorType()), e.Message())
}

func NewAppError(errorType ErrorType, message string) CommonAppError {
	return CommonAppError{errorType, message}
}

func errorTypeToCode(status ErrorType) int {
	switch status {
	case ErrorTypeNotFound, ErrorTypeNoData:
		return http.StatusNotFound
	case ErrorTypeBadRequest:
		return http.StatusBadRequest
	case ErrorTypeInfo:
		return http.StatusOK
	case ErrorTypeInput:
		return http.StatusUnprocessableEntity
	case ErrorTypeServerError, ErrorTypeConfig, ErrorTypeUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
