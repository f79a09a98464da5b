package apperror

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kateshostak/taskman/internal/pkg/logging"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	GenericMessage = "Something went wrong! Please try again later."
)

// Mode selects how much of an error is disclosed to the client.
type Mode int

const (
	ModeProduction Mode = iota
	ModeDiagnostic
)

// ParseMode maps an environment name to a render mode. Unknown and empty
// names render in production mode.
func ParseMode(env string) Mode {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case EnvDevelopment, EnvTest:
		return ModeDiagnostic
	default:
		return ModeProduction
	}
}

func (m Mode) String() string {
	if m == ModeDiagnostic {
		return "diagnostic"
	}

	return "production"
}

type Response struct {
	StatusCode int
	Body       any
}

type diagnosticBody struct {
	Status     int    `json:"status"`
	Message    string `json:"message"`
	StackTrace string `json:"stackTrace"`
	Error      *Error `json:"error"`
}

type productionBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func Render(err error, mode Mode) Response {
	e := FromError(err).withDefaults()

	if mode == ModeDiagnostic {
		return Response{
			StatusCode: e.statusCode,
			Body: diagnosticBody{
				Status:     e.statusCode,
				Message:    e.message,
				StackTrace: e.stack,
				Error:      e,
			},
		}
	}

	if !e.operational {
		return Response{
			StatusCode: http.StatusInternalServerError,
			Body: productionBody{
				Status:  http.StatusInternalServerError,
				Message: GenericMessage,
			},
		}
	}

	return Response{
		StatusCode: e.statusCode,
		Body: productionBody{
			Status:  e.statusCode,
			Message: e.message,
		},
	}
}

// Renderer is the single place where errors become HTTP responses.
type Renderer struct {
	mode Mode
	log  logging.Logger
}

func NewRenderer(mode Mode) *Renderer {
	return &Renderer{
		mode: mode,
		log:  logging.GetLogger("apperror.renderer"),
	}
}

func (rr *Renderer) Mode() Mode {
	return rr.mode
}

func (rr *Renderer) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	e := FromError(err)
	resp := Render(e, rr.mode)

	log := rr.log.With(logging.Group("http", "method", r.Method, "uri", r.RequestURI))
	if e.operational {
		log.WarnContext(r.Context(), "request failed", "status", resp.StatusCode, "error", e.message)
	} else {
		log.ErrorContext(r.Context(), "request error", "status", resp.StatusCode, "error", err, "stack", e.stack)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)

	if err := json.NewEncoder(w).Encode(resp.Body); err != nil {
		log.ErrorContext(r.Context(), "write error response", "error", err)
	}
}

// Sink binds the renderer to a single request.
func (rr *Renderer) Sink(w http.ResponseWriter, r *http.Request) Sink {
	return func(err error) {
		rr.HandleError(w, r, err)
	}
}
