package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kateshostak/taskman/internal/pkg/apperror"
	tasksrepo "github.com/kateshostak/taskman/internal/pkg/tasks"
)

type taskJSON struct {
	Name                *string `json:"name"`
	Description         *string `json:"description"`
	DateTime            *string `json:"date_time"`
	NextExecuteDateTime *string `json:"next_execute_date_time"`
	Status              *string `json:"status"`
}

func taskNotFound(id string) error {
	return apperror.New(fmt.Sprintf("Task with id: %v does not exist!", id), http.StatusNotFound)
}

func parseDateTime(s, field string) (time.Time, error) {
	dt, err := tasksrepo.ParseDateTime(s, time.Local)
	if err != nil {
		return time.Time{}, apperror.New(fmt.Sprintf("Task %v is invalid", field), http.StatusBadRequest)
	}

	return dt, nil
}

func (t *Taskman) ListTasks(w http.ResponseWriter, r *http.Request) error {
	userID := mux.Vars(r)["user_id"]

	tasks, err := t.tasks.GetAllTasks(r.Context(), userID)
	if err != nil {
		return fmt.Errorf("cant get tasks of user %v: %w", userID, err)
	}

	return t.writeData(w, r, tasks)
}

func (t *Taskman) GetTask(w http.ResponseWriter, r *http.Request) error {
	vars := mux.Vars(r)

	task, err := t.tasks.GetTaskByID(r.Context(), vars["user_id"], vars["task_id"])
	if err != nil {
		if errors.Is(err, tasksrepo.ErrNoTask) {
			return taskNotFound(vars["task_id"])
		}
		return fmt.Errorf("cant get task %v: %w", vars["task_id"], err)
	}

	return t.writeData(w, r, task)
}

func (t *Taskman) CreateTask(w http.ResponseWriter, r *http.Request) error {
	userID := mux.Vars(r)["user_id"]

	var req taskJSON
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	switch {
	case !provided(req.Name):
		return apperror.New("Task name required, but it is not provided!", http.StatusBadRequest)
	case !provided(req.Description):
		return apperror.New("Task description required, but it is not provided!", http.StatusBadRequest)
	case !provided(req.DateTime):
		return apperror.New("Task date time required, but it is not provided!", http.StatusBadRequest)
	case !provided(req.NextExecuteDateTime):
		return apperror.New("Task next execute date time required, but it is not provided!", http.StatusBadRequest)
	}

	dateTime, err := parseDateTime(*req.DateTime, "date time")
	if err != nil {
		return err
	}

	nextExecute, err := parseDateTime(*req.NextExecuteDateTime, "next execute date time")
	if err != nil {
		return err
	}

	_, err = t.tasks.GetTaskByName(r.Context(), userID, *req.Name)
	if err == nil {
		return apperror.New(fmt.Sprintf("Task with name: %v, already exist", *req.Name), http.StatusBadRequest)
	}
	if !errors.Is(err, tasksrepo.ErrNoTask) {
		return fmt.Errorf("cant get task by name %v: %w", *req.Name, err)
	}

	status := tasksrepo.StatusPending
	if req.Status != nil {
		status = tasksrepo.ParseStatus(*req.Status)
	}

	task, err := t.tasks.CreateTask(r.Context(), &tasksrepo.Task{
		Name:                *req.Name,
		Description:         *req.Description,
		DateTime:            dateTime,
		NextExecuteDateTime: nextExecute,
		Status:              status,
		UserID:              userID,
	})
	if err != nil {
		return fmt.Errorf("cant create task: %w", err)
	}

	return t.writeData(w, r, task)
}

func (t *Taskman) UpdateTask(w http.ResponseWriter, r *http.Request) error {
	vars := mux.Vars(r)
	userID, taskID := vars["user_id"], vars["task_id"]

	var req taskJSON
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	if _, err := t.tasks.GetTaskByID(r.Context(), userID, taskID); err != nil {
		if errors.Is(err, tasksrepo.ErrNoTask) {
			return taskNotFound(taskID)
		}
		return fmt.Errorf("cant get task %v: %w", taskID, err)
	}

	var update tasksrepo.Update

	if provided(req.Name) {
		update.Name = req.Name
	}

	if provided(req.Description) {
		update.Description = req.Description
	}

	if provided(req.DateTime) {
		dt, err := parseDateTime(*req.DateTime, "date time")
		if err != nil {
			return err
		}
		update.DateTime = &dt
	}

	if provided(req.NextExecuteDateTime) {
		dt, err := parseDateTime(*req.NextExecuteDateTime, "next execute date time")
		if err != nil {
			return err
		}
		update.NextExecuteDateTime = &dt
	}

	if provided(req.Status) {
		status := tasksrepo.ParseStatus(*req.Status)
		update.Status = &status
	}

	task, err := t.tasks.UpdateTask(r.Context(), userID, taskID, update)
	if err != nil {
		return fmt.Errorf("cant update task %v: %w", taskID, err)
	}

	return t.writeData(w, r, task)
}

func (t *Taskman) DeleteTask(w http.ResponseWriter, r *http.Request) error {
	vars := mux.Vars(r)
	userID, taskID := vars["user_id"], vars["task_id"]

	if _, err := t.tasks.GetTaskByID(r.Context(), userID, taskID); err != nil {
		if errors.Is(err, tasksrepo.ErrNoTask) {
			return taskNotFound(taskID)
		}
		return fmt.Errorf("cant get task %v: %w", taskID, err)
	}

	task, err := t.tasks.DeleteTask(r.Context(), userID, taskID)
	if err != nil {
		return fmt.Errorf("cant delete task %v: %w", taskID, err)
	}

	return t.writeData(w, r, task)
}
