package errorx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// CodeError carries an HTTP status alongside a user-facing message.
type CodeError struct {
	Code    int
	Message string
}

func (e *CodeError) Error() string {
	return e.Message
}

func New(code int, format string, args ...any) *CodeError {
	return &CodeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) *CodeError {
	return New(http.StatusBadRequest, format, args...)
}

func NotFound(format string, args ...any) *CodeError {
	return New(http.StatusNotFound, format, args...)
}

func Internal(format string, args ...any) *CodeError {
	return New(http.StatusInternalServerError, format, args...)
}

// ErrorBody is the JSON shape returned for every error response.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// Handler maps errors to HTTP responses. Wire it with
// httpx.SetErrorHandlerCtx at startup.
func Handler(_ context.Context, err error) (int, any) {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code, ErrorBody{Detail: ce.Message}
	}
	return http.StatusInternalServerError, ErrorBody{Detail: err.Error()}
}
