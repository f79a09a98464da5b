package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kateshostak/taskman/internal/pkg/store"
	tasksrepo "github.com/kateshostak/taskman/internal/pkg/tasks"
)

const taskColumns = "id, name, description, date_time, next_execute_date_time, status, user_id"

type TasksRepo struct {
	tasks *store.DB
}

var _ tasksrepo.Tasker = (*TasksRepo)(nil)

func NewTasker(db *store.DB) *TasksRepo {
	return &TasksRepo{
		tasks: db,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*tasksrepo.Task, error) {
	var task tasksrepo.Task
	if err := row.Scan(
		&task.ID,
		&task.Name,
		&task.Description,
		store.ScanTime(&task.DateTime),
		store.ScanTime(&task.NextExecuteDateTime),
		&task.Status,
		&task.UserID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tasksrepo.ErrNoTask
		}

		return nil, err
	}

	return &task, nil
}

func (t *TasksRepo) queryTasks(ctx context.Context, query string, args ...any) ([]*tasksrepo.Task, error) {
	rows, err := t.tasks.QueryContext(ctx, t.tasks.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]*tasksrepo.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, task)
	}

	return res, rows.Err()
}

func (t *TasksRepo) queryTask(ctx context.Context, query string, args ...any) (*tasksrepo.Task, error) {
	return scanTask(t.tasks.QueryRowContext(ctx, t.tasks.Rebind(query), args...))
}

func (t *TasksRepo) GetAllTasks(ctx context.Context, userID string) ([]*tasksrepo.Task, error) {
	res, err := t.queryTasks(ctx, "SELECT "+taskColumns+" FROM tasks WHERE user_id = ? ORDER BY next_execute_date_time, name", userID)
	if err != nil {
		return nil, fmt.Errorf("cant get tasks of user %v: %w", userID, err)
	}

	return res, nil
}

func (t *TasksRepo) GetTaskByID(ctx context.Context, userID, taskID string) (*tasksrepo.Task, error) {
	task, err := t.queryTask(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ? AND user_id = ?", taskID, userID)
	if err != nil && !errors.Is(err, tasksrepo.ErrNoTask) {
		return nil, fmt.Errorf("cant get task %v: %w", taskID, err)
	}

	return task, err
}

func (t *TasksRepo) GetTaskByName(ctx context.Context, userID, name string) (*tasksrepo.Task, error) {
	task, err := t.queryTask(ctx, "SELECT "+taskColumns+" FROM tasks WHERE name = ? AND user_id = ?", name, userID)
	if err != nil && !errors.Is(err, tasksrepo.ErrNoTask) {
		return nil, fmt.Errorf("cant get task by name %v: %w", name, err)
	}

	return task, err
}

func (t *TasksRepo) CreateTask(ctx context.Context, task *tasksrepo.Task) (*tasksrepo.Task, error) {
	status := task.Status
	if status == "" {
		status = tasksrepo.StatusPending
	}

	created, err := t.queryTask(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING "+taskColumns,
		uuid.NewString(),
		task.Name,
		task.Description,
		t.tasks.Time(task.DateTime),
		t.tasks.Time(task.NextExecuteDateTime),
		string(status),
		task.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("cant insert task: %w", err)
	}

	return created, nil
}

func (t *TasksRepo) UpdateTask(ctx context.Context, userID, taskID string, update tasksrepo.Update) (*tasksrepo.Task, error) {
	if update.Empty() {
		return t.GetTaskByID(ctx, userID, taskID)
	}

	var (
		sets []string
		args []any
	)

	if update.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}

	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *update.Description)
	}

	if update.DateTime != nil {
		sets = append(sets, "date_time = ?")
		args = append(args, t.tasks.Time(*update.DateTime))
	}

	if update.NextExecuteDateTime != nil {
		sets = append(sets, "next_execute_date_time = ?")
		args = append(args, t.tasks.Time(*update.NextExecuteDateTime))
	}

	if update.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*update.Status))
	}

	task, err := t.queryTask(ctx,
		"UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ? RETURNING "+taskColumns,
		append(args, taskID, userID)...,
	)
	if err != nil && !errors.Is(err, tasksrepo.ErrNoTask) {
		return nil, fmt.Errorf("cant update task %v: %w", taskID, err)
	}

	return task, err
}

func (t *TasksRepo) DeleteTask(ctx context.Context, userID, taskID string) (*tasksrepo.Task, error) {
	task, err := t.queryTask(ctx, "DELETE FROM tasks WHERE id = ? AND user_id = ? RETURNING "+taskColumns, taskID, userID)
	if err != nil && !errors.Is(err, tasksrepo.ErrNoTask) {
		return nil, fmt.Errorf("cant delete task %v: %w", taskID, err)
	}

	return task, err
}

func (t *TasksRepo) GetOverdueTasks(ctx context.Context, now time.Time) ([]*tasksrepo.Task, error) {
	res, err := t.queryTasks(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE next_execute_date_time < ? AND status = ? ORDER BY next_execute_date_time",
		now.UTC(), string(tasksrepo.StatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("cant get overdue tasks: %w", err)
	}

	return res, nil
}

func (t *TasksRepo) MarkOverdueDone(ctx context.Context, now time.Time) (int64, error) {
	res, err := t.tasks.ExecContext(ctx,
		t.tasks.Rebind("UPDATE tasks SET status = ? WHERE next_execute_date_time < ? AND status = ?"),
		string(tasksrepo.StatusDone), now.UTC(), string(tasksrepo.StatusPending),
	)
	if err != nil {
		return 0, fmt.Errorf("cant update overdue tasks: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cant count updated tasks: %w", err)
	}

	return n, nil
}
