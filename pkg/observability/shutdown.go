package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultShutdownTimeout bounds Shutdown when no timeout is given
const DefaultShutdownTimeout = 30 * time.Second

// Closer releases a resource once the server has stopped accepting requests
type Closer func(context.Context) error

// ShutdownOnSignal blocks until SIGINT, SIGTERM or ctx is done, then calls Shutdown
func ShutdownOnSignal(ctx context.Context, logger *logrus.Logger, srv *http.Server, timeout time.Duration, closers ...Closer) error {
	if logger == nil {
		logger = logrus.New()
	}
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()
	if ctx.Err() == nil {
		logger.Info("Received signal, shutting down")
	}
	return Shutdown(logger, srv, timeout, closers...)
}

// Shutdown stops srv (when non-nil), then runs closers in order. Every closer
// runs even if an earlier one fails; the whole sequence shares one deadline.
func Shutdown(logger *logrus.Logger, srv *http.Server, timeout time.Duration, closers ...Closer) error {
	if logger == nil {
		logger = logrus.New()
	}
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("HTTP server shutdown failed: %w", err)
		}
		logger.Info("HTTP server stopped")
	}

	done := make(chan error, 1)
	go func() {
		var errs []error
		for _, closer := range closers {
			if err := closer(ctx); err != nil {
				logger.WithError(err).Error("Shutdown step failed")
				errs = append(errs, err)
			}
		}
		done <- errors.Join(errs...)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("shutdown cleanup failed: %w", err)
		}
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out after %s", timeout)
	}

	logger.Info("Shutdown complete")
	return nil
}
