package tasks

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNoTask          = errors.New("no task with given params found")
	ErrInvalidDateTime = errors.New("invalid date time")
)

type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

// ParseStatus maps "done" to StatusDone and anything else to StatusPending.
func ParseStatus(s string) Status {
	if Status(strings.ToLower(strings.TrimSpace(s))) == StatusDone {
		return StatusDone
	}

	return StatusPending
}

type Task struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	DateTime            time.Time `json:"date_time"`
	NextExecuteDateTime time.Time `json:"next_execute_date_time"`
	Status              Status    `json:"status"`
	UserID              string    `json:"user_id"`
}

// Update holds the fields of a partial update. Nil fields are left untouched.
type Update struct {
	Name                *string
	Description         *string
	DateTime            *time.Time
	NextExecuteDateTime *time.Time
	Status              *Status
}

func (u Update) Empty() bool {
	return u.Name == nil && u.Description == nil && u.DateTime == nil &&
		u.NextExecuteDateTime == nil && u.Status == nil
}

type Tasker interface {
	GetAllTasks(ctx context.Context, userID string) ([]*Task, error)
	GetTaskByID(ctx context.Context, userID, taskID string) (*Task, error)
	GetTaskByName(ctx context.Context, userID, name string) (*Task, error)
	CreateTask(context.Context, *Task) (*Task, error)
	UpdateTask(ctx context.Context, userID, taskID string, update Update) (*Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) (*Task, error)

	// GetOverdueTasks returns pending tasks whose next execution is before now.
	GetOverdueTasks(ctx context.Context, now time.Time) ([]*Task, error)
	// MarkOverdueDone sets every task matched by GetOverdueTasks to done.
	MarkOverdueDone(ctx context.Context, now time.Time) (int64, error)
}

var dateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDateTime accepts RFC 3339 timestamps and the zone-less forms
// "2006-01-02 15:04:05", "2006-01-02T15:04:05" and "2006-01-02". Zone-less
// values are read in loc.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrInvalidDateTime
}
