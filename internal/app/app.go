package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kateshostak/taskman/internal/pkg/apperror"
	"github.com/kateshostak/taskman/internal/pkg/logging"
	"github.com/kateshostak/taskman/internal/pkg/middleware"
	tasksrepo "github.com/kateshostak/taskman/internal/pkg/tasks"
	usersrepo "github.com/kateshostak/taskman/internal/pkg/users"
)

type Taskman struct {
	users   usersrepo.Userer
	tasks   tasksrepo.Tasker
	errors  *apperror.Renderer
	log     logging.Logger
	handler http.Handler
}

func (t *Taskman) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.handler.ServeHTTP(w, r)
}

func NewTaskman(users usersrepo.Userer, tasks tasksrepo.Tasker, mode apperror.Mode) *Taskman {
	log := logging.GetLogger("app")
	router := mux.NewRouter()

	t := &Taskman{
		users:  users,
		tasks:  tasks,
		errors: apperror.NewRenderer(mode),
		log:    log,
	}

	router.HandleFunc("/api/users", t.wrap(t.ListUsers)).Methods("GET")
	router.HandleFunc("/api/users", t.wrap(t.CreateUser)).Methods("POST")
	router.HandleFunc("/api/users/{id}", t.wrap(t.GetUser)).Methods("GET")
	router.HandleFunc("/api/users/{id}", t.wrap(t.UpdateUser)).Methods("PUT")
	router.HandleFunc("/api/users/{id}", t.wrap(t.DeleteUser)).Methods("DELETE")

	router.HandleFunc("/api/users/{user_id}/tasks", t.wrap(t.ListTasks)).Methods("GET")
	router.HandleFunc("/api/users/{user_id}/tasks", t.wrap(t.CreateTask)).Methods("POST")
	router.HandleFunc("/api/users/{user_id}/tasks/{task_id}", t.wrap(t.GetTask)).Methods("GET")
	router.HandleFunc("/api/users/{user_id}/tasks/{task_id}", t.wrap(t.UpdateTask)).Methods("PUT")
	router.HandleFunc("/api/users/{user_id}/tasks/{task_id}", t.wrap(t.DeleteTask)).Methods("DELETE")

	router.NotFoundHandler = http.HandlerFunc(t.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(t.NotFound)

	t.handler = middleware.Tracing(middleware.Logging(middleware.TrimSlash(router), log.With("component", "http")))

	return t
}

func (t *Taskman) wrap(handler middleware.HandlerFunc) http.HandlerFunc {
	return middleware.Wrap(t.errors, handler)
}

// NotFound reports the URI as the client sent it.
func (t *Taskman) NotFound(w http.ResponseWriter, r *http.Request) {
	uri := r.RequestURI
	if uri == "" {
		uri = r.URL.RequestURI()
	}

	apperror.Raise(t.errors.Sink(w, r), fmt.Sprintf("Cannot find %v on the server!", uri), http.StatusNotFound)
}

type dataJSON struct {
	Data    any  `json:"data"`
	Success bool `json:"success"`
}

func (t *Taskman) writeData(w http.ResponseWriter, r *http.Request, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(dataJSON{Data: data, Success: true}); err != nil {
		t.log.ErrorContext(r.Context(), "cant write response", "error", err)
	}

	return nil
}

// decodeBody reads a JSON object into dst. An empty body decodes as {}.
func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperror.New("Invalid request body", http.StatusBadRequest)
	}

	return nil
}

func provided(s *string) bool {
	return s != nil && *s != ""
}
