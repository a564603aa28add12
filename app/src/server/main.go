package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dnsfilter/app/src/server/api"
	"dnsfilter/app/src/server/config"
	"dnsfilter/app/src/server/infra"
	"dnsfilter/app/src/server/logging"
	"dnsfilter/app/src/server/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
)

const shutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// DNSFILTER_SERVER_ENV names the config file
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger := logging.NewDevelopmentLogger()
		logger.Error("load config failed", zap.Error(err))
		logger.Sync()
		return 1
	}

	logger := logging.New(cfg.Log.Dir)
	defer logger.Sync()

	// storage first; no listener is bound if it fails
	db := infra.New(infra.Options{
		Path:          cfg.Storage.Path,
		ReadOnly:      cfg.Storage.ReadOnly,
		BusyTimeoutMs: cfg.Storage.BusyTimeoutMs,
	})
	if err := db.Initialize(context.Background()); err != nil {
		logger.Error("open database failed", zap.String("path", cfg.Storage.Path), zap.Error(err))
		return 1
	}
	logger.Info("database opened", zap.String("path", cfg.Storage.Path), zap.Bool("read_only", cfg.Storage.ReadOnly))

	svc := service.NewWithMaxLimit(db, cfg.Server.MaxLimit)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	var metrics *api.Metrics
	if cfg.Metrics.Enabled {
		metrics = api.NewMetrics()
	}
	api.Use(e, logger, metrics)
	api.New(e, svc, logger, metrics)
	if metrics != nil {
		api.MountMetrics(e, cfg.Metrics.Path, metrics)
	}
	// dashboard
	if !api.Static(e, cfg.Server.WebDir) {
		logger.Warn("web directory missing, dashboard disabled", zap.String("dir", cfg.Server.WebDir))
	}

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		logger.Error("listen failed", zap.String("addr", cfg.Addr()), zap.Error(err))
		db.Shutdown()
		return 1
	}
	if cfg.Server.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.Server.MaxConnections)
	}
	e.Listener = ln

	base := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	logger.Info("starting http server",
		zap.String("addr", cfg.Addr()),
		zap.String("dashboard", base+"/"),
		zap.String("api", base+"/api"))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	code := 0
	if err := serve(e, cfg.Addr(), sigCh, logger); err != nil {
		logger.Error("http server failed", zap.Error(err))
		code = 1
	}

	if err := db.Shutdown(); err != nil {
		logger.Error("close database failed", zap.Error(err))
	}
	logger.Info("http server stopped")
	return code
}

// serve runs e until a signal arrives on stop and returns once in-flight
// requests have drained or shutdownTimeout has passed.
func serve(e *echo.Echo, addr string, stop <-chan os.Signal, logger *zap.Logger) error {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		sig := <-stop
		logger.Info("shutting down http server", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			logger.Error("http server shutdown failed", zap.Error(err))
		}
	}()

	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	// Start returns as soon as Shutdown begins.
	<-drained
	return nil
}
