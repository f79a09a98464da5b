package status

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kateshostak/taskman/internal/pkg/lease"
	"github.com/kateshostak/taskman/internal/pkg/store/storetest"
	"github.com/kateshostak/taskman/internal/pkg/tasks"
	tasksdb "github.com/kateshostak/taskman/internal/pkg/tasks/db"
	"github.com/kateshostak/taskman/internal/pkg/users"
	usersdb "github.com/kateshostak/taskman/internal/pkg/users/db"
)

// fakeLease grants each key once, like SET NX on a shared store.
type fakeLease struct {
	held  map[string]bool
	err   error
	calls int
}

func newFakeLease() *fakeLease {
	return &fakeLease{held: make(map[string]bool)}
}

func (l *fakeLease) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.calls++
	if l.err != nil {
		return false, l.err
	}

	if l.held[key] {
		return false, nil
	}

	l.held[key] = true

	return true, nil
}

func (l *fakeLease) Close() error { return nil }

type failingTasker struct {
	tasks.Tasker
	overdueErr error
	markErr    error
	marked     int
}

func (f *failingTasker) GetOverdueTasks(context.Context, time.Time) ([]*tasks.Task, error) {
	return nil, f.overdueErr
}

func (f *failingTasker) MarkOverdueDone(context.Context, time.Time) (int64, error) {
	f.marked++
	return 0, f.markErr
}

func seed(t *testing.T, now time.Time) (*tasksdb.TasksRepo, string, map[string]*tasks.Task) {
	t.Helper()

	ctx := context.Background()
	db := storetest.Open(t)

	user, err := usersdb.NewUserer(db).CreateUser(ctx, &users.User{Username: "john", FirstName: "John", LastName: "Doe"})
	require.NoError(t, err)

	repo := tasksdb.NewTasker(db)
	created := make(map[string]*tasks.Task)

	for name, tc := range map[string]struct {
		offset time.Duration
		status tasks.Status
	}{
		"overdue-1":    {-time.Hour, tasks.StatusPending},
		"overdue-2":    {-48 * time.Hour, tasks.StatusPending},
		"future":       {time.Hour, tasks.StatusPending},
		"already-done": {-time.Hour, tasks.StatusDone},
	} {
		task, err := repo.CreateTask(ctx, &tasks.Task{
			Name:                name,
			Description:         name,
			DateTime:            now,
			NextExecuteDateTime: now.Add(tc.offset),
			Status:              tc.status,
			UserID:              user.ID,
		})
		require.NoError(t, err)

		created[name] = task
	}

	return repo, user.ID, created
}

func TestUpdaterRun(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	repo, userID, created := seed(t, now)

	updater := NewUpdater(repo, WithClock(func() time.Time { return now }))

	n, err := updater.Run(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	want := map[string]tasks.Status{
		"overdue-1":    tasks.StatusDone,
		"overdue-2":    tasks.StatusDone,
		"future":       tasks.StatusPending,
		"already-done": tasks.StatusDone,
	}

	for name, status := range want {
		task, err := repo.GetTaskByID(ctx, userID, created[name].ID)
		require.NoError(t, err)
		assert.Equal(t, status, task.Status, name)
	}

	t.Run("second firing is a no-op", func(t *testing.T) {
		n, err := updater.Run(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestUpdaterLease(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)

	clock := func(at time.Time) Option {
		return WithClock(func() time.Time { return at })
	}

	t.Run("one instance runs a tick", func(t *testing.T) {
		repo, _, _ := seed(t, now)
		l := newFakeLease()

		first := NewUpdater(repo, WithLease(l, time.Hour), clock(now.Add(20*time.Millisecond)))
		second := NewUpdater(repo, WithLease(l, time.Hour), clock(now.Add(300*time.Millisecond)))

		n, err := second.Run(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		n, err = first.Run(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, 2, l.calls)
	})

	t.Run("lost lease leaves tasks untouched", func(t *testing.T) {
		repo, _, _ := seed(t, now)
		l := newFakeLease()
		l.held[leaseKey(now)] = true

		n, err := NewUpdater(repo, WithLease(l, time.Hour), clock(now)).Run(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		overdue, err := repo.GetOverdueTasks(ctx, now)
		require.NoError(t, err)
		assert.Len(t, overdue, 2)
	})

	t.Run("every tick of a single instance runs", func(t *testing.T) {
		repo, userID, _ := seed(t, now)
		l := newFakeLease()
		tick := now

		updater := NewUpdater(repo, WithLease(l, time.Hour), WithClock(func() time.Time { return tick }))

		n, err := updater.Run(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		_, err = repo.CreateTask(ctx, &tasks.Task{
			Name:                "due-next-minute",
			Description:         "due-next-minute",
			DateTime:            now,
			NextExecuteDateTime: now.Add(30 * time.Second),
			UserID:              userID,
		})
		require.NoError(t, err)

		tick = now.Add(time.Minute)

		n, err = updater.Run(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("lease error is returned", func(t *testing.T) {
		tasker := &failingTasker{}
		leaseErr := errors.New("redis down")

		_, err := NewUpdater(tasker, WithLease(&fakeLease{err: leaseErr}, time.Minute)).Run(ctx)
		assert.ErrorIs(t, err, leaseErr)
		assert.Zero(t, tasker.marked)
	})
}

func TestUpdaterRedisLease(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	repo, _, _ := seed(t, now)

	srv := miniredis.RunT(t)

	l, err := lease.Connect(ctx, lease.Config{Addr: srv.Addr()})
	require.NoError(t, err)
	defer l.Close()

	tick := now
	updater := NewUpdater(repo, WithLease(l, 5*time.Minute), WithClock(func() time.Time { return tick }))

	for range 3 {
		_, err := updater.Run(ctx)
		require.NoError(t, err)

		assert.True(t, srv.Exists(leaseKey(tick)), "tick %v took its lease", tick)
		tick = tick.Add(time.Minute)
	}
}

func TestUpdaterErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("read failure skips the update", func(t *testing.T) {
		tasker := &failingTasker{overdueErr: errors.New("timeout")}

		_, err := NewUpdater(tasker).Run(ctx)
		assert.Error(t, err)
		assert.Zero(t, tasker.marked)
	})

	t.Run("update failure is returned", func(t *testing.T) {
		markErr := errors.New("deadlock")
		tasker := &failingTasker{markErr: markErr}

		_, err := NewUpdater(tasker).Run(ctx)
		assert.ErrorIs(t, err, markErr)
		assert.Equal(t, 1, tasker.marked)
	})
}

func TestNewScheduler(t *testing.T) {
	updater := NewUpdater(&failingTasker{})

	s, err := NewScheduler(SchedulerConfig{Spec: "0 * * * *"}, updater)
	require.NoError(t, err)

	s.Start()
	<-s.Stop().Done()

	_, err = NewScheduler(SchedulerConfig{Spec: "every hour"}, updater)
	assert.Error(t, err)
}

func TestSchedulerFireSwallowsErrors(t *testing.T) {
	tasker := &failingTasker{markErr: errors.New("db down")}

	s, err := NewScheduler(SchedulerConfig{Spec: "@hourly"}, NewUpdater(tasker))
	require.NoError(t, err)

	assert.NotPanics(t, s.fire)
	assert.Equal(t, 1, tasker.marked)
}
