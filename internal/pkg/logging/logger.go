package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

type (
	Logger  = *slog.Logger
	Handler = slog.Handler
	Level   = slog.Level
)

var levels = map[string]Level{
	"debug": LevelDebug,
	"info":  LevelInfo,
	"warn":  LevelWarn,
	"error": LevelError,
}

// LoggerConfig holds configuration parameters for logging.
type LoggerConfig struct {
	AppName string `mapstructure:"-"`

	// Output is "stdout", "stderr", "discard" or a file path.
	Output string `mapstructure:"output"`
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`

	// Filter holds per-logger overrides as "name:level,name:level".
	Filter string `mapstructure:"filter"`
	JSON   bool   `mapstructure:"json"`

	OutputHandle io.Writer `mapstructure:"-"`
}

func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Output: "stderr",
		Level:  "info",
	}
}

var (
	Group = slog.Group

	config     LoggerConfig
	configLock sync.Mutex
)

// Configure sets up the process wide logging configuration.
// Loggers created before Configure discard their output.
func Configure(ctx context.Context, cfg LoggerConfig, appName string) {
	configure(cfg, appName)

	GetLogger("logging").With(Group("config",
		"app", config.AppName,
		"output", config.Output,
		"level", config.Level,
		"filter", config.Filter,
		"json", config.JSON,
	)).DebugContext(ctx, "logging configured")
}

func configure(cfg LoggerConfig, appName string) {
	configLock.Lock()
	defer configLock.Unlock()

	config = cfg
	config.AppName = appName

	if cfg.OutputHandle == nil {
		switch cfg.Output {
		case "", "discard":
			config.OutputHandle = io.Discard
		case "stdout":
			config.OutputHandle = os.Stdout
		case "stderr":
			config.OutputHandle = os.Stderr
		default:
			file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				panic(fmt.Errorf("open log file: %w", err))
			}

			config.OutputHandle = file
		}
	}

	slog.SetLogLoggerLevel(parseLevel(config.Level, LevelInfo))
}

// GetLogLogger adapts a Logger for code that expects a *log.Logger.
func GetLogLogger(logger Logger, level Level) *log.Logger {
	return slog.NewLogLogger(logger.With("stdlog", true).Handler(), level)
}

// GetLogger returns a logger tagged with the given name.
func GetLogger(name string) Logger {
	output := getOutput()
	if output == io.Discard {
		return NewNopLogger()
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(config.Level, LevelInfo))

	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{
			AddSource: true,
			Level:     levelVar,
		})
	} else {
		handler = &ConsoleHandler{
			Output:    output,
			Level:     levelVar,
			PkgLevels: config.pkgLevels(),
		}
	}

	logger := slog.New(NewTracingHandler(handler))
	if config.AppName != "" {
		logger = logger.With("app", config.AppName)
	}

	return logger.With("logger", name)
}

func (cfg LoggerConfig) pkgLevels() map[string]Level {
	res := make(map[string]Level)

	for _, pkgLevel := range strings.Split(cfg.Filter, ",") {
		parts := strings.Split(pkgLevel, ":")
		if len(parts) != 2 {
			continue
		}

		res[strings.TrimSpace(parts[0])] = parseLevel(parts[1], LevelDebug)
	}

	return res
}

func getOutput() io.Writer {
	configLock.Lock()
	defer configLock.Unlock()

	if config.OutputHandle != nil {
		return config.OutputHandle
	}

	return io.Discard
}

func parseLevel(s string, fallback Level) Level {
	level, ok := levels[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return fallback
	}

	return level
}
