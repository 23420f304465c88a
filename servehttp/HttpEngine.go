package servehttp

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"tenantry/common"
	"time"

	"github.com/gin-gonic/gin"
)

// StartHTTPServer serves engine on addr until SIGINT or SIGTERM, then shuts down gracefully.
func StartHTTPServer(engine *gin.Engine, addr string, shutdownTimeout time.Duration) error {
	// kill (no param) sends SIGTERM, kill -2 sends SIGINT, SIGKILL can't be caught
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return RunHTTPServer(ctx, engine, addr, shutdownTimeout)
}

// RunHTTPServer serves engine on addr until ctx is done. In-flight requests get shutdownTimeout to complete.
func RunHTTPServer(ctx context.Context, engine *gin.Engine, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	failed := make(chan error, 1)
	go func() {
		common.Log.WithField("addr", addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
	}
	common.Log.Infof("[QUIT] shutdown signal has been received, the service will exit in %s", shutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.Log.WithError(err).Error("[QUIT] http server shutdown failed")
		return err
	}
	common.Log.Info("[QUIT] http server is shutdown gracefully, new request will be rejected")
	return nil
}
