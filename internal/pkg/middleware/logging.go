package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kateshostak/taskman/internal/pkg/logging"
)

const RequestIDHeader = "X-Request-ID"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytesSent  int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytesSent += n

	return n, err
}

// Logging logs every request at DEBUG and its response at a level derived
// from the status code.
func Logging(next http.Handler, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.DebugContext(r.Context(), "request", logging.Group("http",
			"method", r.Method,
			"uri", r.RequestURI,
		))

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		level := logging.LevelInfo

		switch {
		case rw.statusCode >= http.StatusInternalServerError:
			level = logging.LevelError
		case rw.statusCode >= http.StatusBadRequest:
			level = logging.LevelWarn
		}

		log.Log(r.Context(), level, "response", logging.Group("http",
			"method", r.Method,
			"uri", r.RequestURI,
			"status", rw.statusCode,
			"bytes_sent", rw.bytesSent,
		))
	})
}

// Tracing puts the request id into the request context, taking it from the
// X-Request-ID header or generating a new one. The id is echoed back.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}
