package finboard

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Run starts the HTTP server and blocks until shutdown.
// It handles SIGINT and SIGTERM for graceful shutdown.
//
// Returns nil on clean shutdown, or an error if the server
// fails to start or shutdown hooks fail.
func (a *App) Run() error {
	ctx, cancel := signal.NotifyContext(a.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Listen first to get actual address
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return errors.Join(err, a.Close())
	}
	a.listenerMu.Lock()
	a.listener = ln
	a.listenerMu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal, Stop() call, or error
	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
	case <-a.done:
	}

	a.logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer shutdownCancel()

	errs := []error{serveErr}
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, a.shutdown(shutdownCtx))

	if err := errors.Join(errs...); err != nil {
		a.logger.Error("shutdown completed with errors", slog.Any("error", err))
		return err
	}

	a.logger.Info("shutdown completed")
	return nil
}

// Stop triggers graceful shutdown programmatically.
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		close(a.done)
	})
}

// Close runs the shutdown hooks and releases the storage facilities without
// serving. Use it when the App was created for one-off session operations.
// Close is safe to call more than once.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()
	return a.shutdown(ctx)
}

func (a *App) shutdown(ctx context.Context) error {
	a.closeOnce.Do(func() {
		var errs []error
		for _, hook := range a.shutdownHooks {
			if err := hook(ctx); err != nil {
				errs = append(errs, err)
				a.logger.Error("shutdown hook failed", slog.Any("error", err))
			}
		}
		if err := a.facilities.Close(); err != nil {
			errs = append(errs, err)
			a.logger.Error("failed to close storage", slog.Any("error", err))
		}
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}
