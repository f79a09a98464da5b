package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"runtime/debug"
	"strings"
)

const (
	StatusFail  = "fail"
	StatusError = "error"
)

// Sink receives errors raised outside of a handler's return path.
type Sink func(error)

// Error is an HTTP facing application error. Errors built by New are
// operational: expected failures caused by the client. Everything else that
// reaches the renderer is treated as an unexpected fault.
type Error struct {
	statusCode  int
	status      string
	message     string
	operational bool
	stack       string
	cause       error
}

func New(message string, statusCode int) *Error {
	return &Error{
		statusCode:  statusCode,
		status:      Classify(statusCode),
		message:     message,
		operational: true,
		stack:       callers(message, 3),
	}
}

// Raise builds an operational error and hands it to sink.
func Raise(sink Sink, message string, statusCode int) {
	sink(New(message, statusCode))
}

// FromError returns the *Error carried by err, or wraps err as a
// non-operational error with no status code and no classification.
func FromError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	return &Error{
		message: err.Error(),
		stack:   callers(err.Error(), 3),
		cause:   err,
	}
}

// FromPanic converts a recovered panic value into a non-operational error.
func FromPanic(p any) *Error {
	err, ok := p.(error)
	if !ok {
		err = fmt.Errorf("%v", p)
	}

	return &Error{
		message: err.Error(),
		stack:   string(debug.Stack()),
		cause:   err,
	}
}

// Classify maps a status code to "fail" for 4xx codes and "error" otherwise.
func Classify(statusCode int) string {
	if statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError {
		return StatusFail
	}

	return StatusError
}

func (e *Error) Error() string     { return e.message }
func (e *Error) Unwrap() error     { return e.cause }
func (e *Error) StatusCode() int   { return e.statusCode }
func (e *Error) Status() string    { return e.status }
func (e *Error) Operational() bool { return e.operational }
func (e *Error) Stack() string     { return e.stack }

func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		StatusCode    int    `json:"statusCode"`
		Status        string `json:"status"`
		Message       string `json:"message"`
		IsOperational bool   `json:"isOperational"`
		Success       bool   `json:"success"`
	}{
		StatusCode:    e.statusCode,
		Status:        e.status,
		Message:       e.message,
		IsOperational: e.operational,
	})
}

// withDefaults returns a copy with an unset code set to 500 and an unset
// classification set to "error".
func (e *Error) withDefaults() *Error {
	res := *e
	if res.statusCode == 0 {
		res.statusCode = http.StatusInternalServerError
	}

	if res.status == "" {
		res.status = StatusError
	}

	return &res
}

func callers(message string, skip int) string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return message
	}

	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder

	b.WriteString(message)

	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "\n    at %s (%s:%d)", f.Function, f.File, f.Line)

		if !more {
			break
		}
	}

	return b.String()
}
