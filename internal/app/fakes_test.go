package app

import (
	"context"
	"sort"
	"strconv"
	"time"

	tasksrepo "github.com/kateshostak/taskman/internal/pkg/tasks"
	usersrepo "github.com/kateshostak/taskman/internal/pkg/users"
)

type memUsers struct {
	users map[string]*usersrepo.User
	seq   int
	err   error

	creates, updates, deletes int
}

func newMemUsers(users ...*usersrepo.User) *memUsers {
	m := &memUsers{users: make(map[string]*usersrepo.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) GetAllUsers(context.Context) ([]*usersrepo.User, error) {
	if m.err != nil {
		return nil, m.err
	}

	res := make([]*usersrepo.User, 0, len(m.users))
	for _, u := range m.users {
		res = append(res, u)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Username < res[j].Username })

	return res, nil
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (*usersrepo.User, error) {
	if m.err != nil {
		return nil, m.err
	}

	u, ok := m.users[id]
	if !ok {
		return nil, usersrepo.ErrNoUser
	}
	return u, nil
}

func (m *memUsers) GetUserByUsername(_ context.Context, username string) (*usersrepo.User, error) {
	if m.err != nil {
		return nil, m.err
	}

	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, usersrepo.ErrNoUser
}

func (m *memUsers) CreateUser(_ context.Context, user *usersrepo.User) (*usersrepo.User, error) {
	m.creates++
	m.seq++

	created := *user
	created.ID = "u" + strconv.Itoa(m.seq)
	m.users[created.ID] = &created

	return &created, nil
}

func (m *memUsers) UpdateUser(_ context.Context, id string, update usersrepo.Update) (*usersrepo.User, error) {
	m.updates++

	u, ok := m.users[id]
	if !ok {
		return nil, usersrepo.ErrNoUser
	}

	if update.Username != nil {
		u.Username = *update.Username
	}
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}

	return u, nil
}

func (m *memUsers) DeleteUser(_ context.Context, id string) (*usersrepo.User, error) {
	m.deletes++

	u, ok := m.users[id]
	if !ok {
		return nil, usersrepo.ErrNoUser
	}
	delete(m.users, id)

	return u, nil
}

type memTasks struct {
	tasks map[string]*tasksrepo.Task
	seq   int

	creates, updates, deletes int
}

func newMemTasks(tasks ...*tasksrepo.Task) *memTasks {
	m := &memTasks{tasks: make(map[string]*tasksrepo.Task)}
	for _, t := range tasks {
		m.tasks[t.ID] = t
	}
	return m
}

func (m *memTasks) GetAllTasks(_ context.Context, userID string) ([]*tasksrepo.Task, error) {
	res := make([]*tasksrepo.Task, 0)
	for _, t := range m.tasks {
		if t.UserID == userID {
			res = append(res, t)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })

	return res, nil
}

func (m *memTasks) GetTaskByID(_ context.Context, userID, taskID string) (*tasksrepo.Task, error) {
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, tasksrepo.ErrNoTask
	}
	return t, nil
}

func (m *memTasks) GetTaskByName(_ context.Context, userID, name string) (*tasksrepo.Task, error) {
	for _, t := range m.tasks {
		if t.UserID == userID && t.Name == name {
			return t, nil
		}
	}
	return nil, tasksrepo.ErrNoTask
}

func (m *memTasks) CreateTask(_ context.Context, task *tasksrepo.Task) (*tasksrepo.Task, error) {
	m.creates++
	m.seq++

	created := *task
	created.ID = "t" + strconv.Itoa(m.seq)
	m.tasks[created.ID] = &created

	return &created, nil
}

func (m *memTasks) UpdateTask(ctx context.Context, userID, taskID string, update tasksrepo.Update) (*tasksrepo.Task, error) {
	m.updates++

	t, err := m.GetTaskByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		t.Name = *update.Name
	}
	if update.Description != nil {
		t.Description = *update.Description
	}
	if update.DateTime != nil {
		t.DateTime = *update.DateTime
	}
	if update.NextExecuteDateTime != nil {
		t.NextExecuteDateTime = *update.NextExecuteDateTime
	}
	if update.Status != nil {
		t.Status = *update.Status
	}

	return t, nil
}

func (m *memTasks) DeleteTask(ctx context.Context, userID, taskID string) (*tasksrepo.Task, error) {
	m.deletes++

	t, err := m.GetTaskByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	delete(m.tasks, taskID)

	return t, nil
}

func (m *memTasks) GetOverdueTasks(_ context.Context, now time.Time) ([]*tasksrepo.Task, error) {
	res := make([]*tasksrepo.Task, 0)
	for _, t := range m.tasks {
		if t.Status == tasksrepo.StatusPending && t.NextExecuteDateTime.Before(now) {
			res = append(res, t)
		}
	}
	return res, nil
}

func (m *memTasks) MarkOverdueDone(ctx context.Context, now time.Time) (int64, error) {
	overdue, _ := m.GetOverdueTasks(ctx, now)
	for _, t := range overdue {
		t.Status = tasksrepo.StatusDone
	}
	return int64(len(overdue)), nil
}
