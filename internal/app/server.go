package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kateshostak/taskman/internal/pkg/logging"
)

type HTTPConfig struct {
	ServerAddr        string        `mapstructure:"server_addr" validate:"required"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		ServerAddr:        ":4000",
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// ListenAndServe serves handler until ctx is cancelled, then shuts the server
// down gracefully.
func ListenAndServe(ctx context.Context, handler http.Handler, cfg HTTPConfig) error {
	log := logging.GetLogger("app.server")

	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ErrorLog:          logging.GetLogLogger(log, logging.LevelError),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	sock, err := net.Listen("tcp", cfg.ServerAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	log.InfoContext(ctx, "server up and running", "addr", sock.Addr().String())

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(sock)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	log.InfoContext(ctx, "server stopped")

	return nil
}
