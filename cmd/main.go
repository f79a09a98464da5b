package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kateshostak/taskman/internal/app"
	"github.com/kateshostak/taskman/internal/pkg/apperror"
	"github.com/kateshostak/taskman/internal/pkg/config"
	"github.com/kateshostak/taskman/internal/pkg/lease"
	"github.com/kateshostak/taskman/internal/pkg/logging"
	"github.com/kateshostak/taskman/internal/pkg/store"
	tasks "github.com/kateshostak/taskman/internal/pkg/tasks/db"
	"github.com/kateshostak/taskman/internal/pkg/tasks/status"
	users "github.com/kateshostak/taskman/internal/pkg/users/db"
)

const appName = "taskman"

type Config struct {
	// Env is one of development, test or production.
	Env string `mapstructure:"env"`

	Log       logging.LoggerConfig   `mapstructure:"log"`
	HTTP      app.HTTPConfig         `mapstructure:"http"`
	DB        store.Config           `mapstructure:"db"`
	Scheduler status.SchedulerConfig `mapstructure:"scheduler"`
	Redis     lease.Config           `mapstructure:"redis"`
}

func defaultConfig() Config {
	return Config{
		Env:       apperror.EnvProduction,
		Log:       logging.DefaultLoggerConfig(),
		HTTP:      app.DefaultHTTPConfig(),
		DB:        store.DefaultConfig(),
		Scheduler: status.DefaultSchedulerConfig(),
		Redis:     lease.DefaultConfig(),
	}
}

func main() {
	cfg := defaultConfig()
	if err := config.Load(&cfg, "TASKMAN"); err != nil {
		fmt.Fprintf(os.Stderr, "cant load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Configure(ctx, cfg.Log, appName)
	log := logging.GetLogger("main")

	if err := run(ctx, cfg); err != nil {
		log.ErrorContext(ctx, "taskman stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) error {
	log := logging.GetLogger("main")

	db, err := store.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	tasker := tasks.NewTasker(db)

	var opts []status.Option
	if cfg.Redis.Addr != "" {
		l, err := lease.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer l.Close()

		opts = append(opts, status.WithLease(l, cfg.Redis.TTL))
	}

	if cfg.Scheduler.Enabled {
		scheduler, err := status.NewScheduler(cfg.Scheduler, status.NewUpdater(tasker, opts...))
		if err != nil {
			return err
		}

		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()

		log.InfoContext(ctx, "status updater scheduled", "spec", cfg.Scheduler.Spec)
	}

	mode := apperror.ParseMode(cfg.Env)
	log.InfoContext(ctx, "starting", "env", cfg.Env, "errors", mode.String(), "driver", db.Driver())

	return app.ListenAndServe(ctx, app.NewTaskman(users.NewUserer(db), tasker, mode), cfg.HTTP)
}
