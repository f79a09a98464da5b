// Package status moves overdue tasks from pending to done.
package status

import (
	"context"
	"fmt"
	"time"

	"github.com/kateshostak/taskman/internal/pkg/lease"
	"github.com/kateshostak/taskman/internal/pkg/logging"
	"github.com/kateshostak/taskman/internal/pkg/tasks"
)

const leasePrefix = "taskman:status-updater"

// leaseKey names the lease of the tick fired at now. Cron fires on whole
// seconds, so every instance firing the same tick derives the same key and
// a later tick always gets a fresh one.
func leaseKey(now time.Time) string {
	return leasePrefix + ":" + now.UTC().Truncate(time.Second).Format(time.RFC3339)
}

type Updater struct {
	tasks    tasks.Tasker
	lease    lease.Leaser
	leaseTTL time.Duration
	now      func() time.Time
	log      logging.Logger
}

type Option func(*Updater)

// WithLease makes a firing run only if it wins the lease for its tick, so
// that several instances of the service do not all run the same firing. ttl
// must exceed the clock skew between instances.
func WithLease(l lease.Leaser, ttl time.Duration) Option {
	return func(u *Updater) {
		u.lease = l
		u.leaseTTL = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(u *Updater) {
		u.now = now
	}
}

func NewUpdater(tasker tasks.Tasker, opts ...Option) *Updater {
	u := &Updater{
		tasks: tasker,
		now:   time.Now,
		log:   logging.GetLogger("tasks.status"),
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

// Run marks every pending task whose next execution lies before now as done
// and returns how many were changed. The overdue set is logged before the
// update.
func (u *Updater) Run(ctx context.Context) (int64, error) {
	now := u.now()

	if u.lease != nil {
		key := leaseKey(now)

		ok, err := u.lease.Acquire(ctx, key, u.leaseTTL)
		if err != nil {
			return 0, err
		}

		if !ok {
			u.log.DebugContext(ctx, "lease held by another instance, skipping", "lease", key)
			return 0, nil
		}
	}

	overdue, err := u.tasks.GetOverdueTasks(ctx, now)
	if err != nil {
		return 0, err
	}

	ids := make([]string, 0, len(overdue))
	for _, task := range overdue {
		ids = append(ids, task.ID)
	}

	u.log.InfoContext(ctx, "tasks with elapsed execute date time", "count", len(overdue), "ids", ids)

	n, err := u.tasks.MarkOverdueDone(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("mark overdue done: %w", err)
	}

	return n, nil
}
