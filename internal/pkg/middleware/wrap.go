package middleware

import (
	"net/http"

	"github.com/kateshostak/taskman/internal/pkg/apperror"
)

// HandlerFunc is an http handler that reports failure by returning an error
// instead of writing the response itself.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ErrorHandler turns an error into a response.
type ErrorHandler interface {
	HandleError(w http.ResponseWriter, r *http.Request, err error)
}

// Wrap forwards every error returned by handler, and every panic raised by
// it, to errs.
func Wrap(errs ErrorHandler, handler HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}

				errs.HandleError(w, r, apperror.FromPanic(p))
			}
		}()

		if err := handler(w, r); err != nil {
			errs.HandleError(w, r, err)
		}
	})
}
