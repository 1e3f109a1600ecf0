package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"volume-breakout-lab/internal/config"
	"volume-breakout-lab/internal/logger"
	"volume-breakout-lab/internal/observability"
)

// Runtime is the ambient state every command starts with.
type Runtime struct {
	Config  config.AppConfig
	Logger  *zap.Logger
	Metrics *observability.Metrics

	metricsServer *http.Server
}

// Start loads config (env overrides applied), builds the named logger and
// registers metrics. The /metrics listener starts when metrics.addr is set.
func Start(configPath, name string) (*Runtime, error) {
	cfg, err := config.LoadWithEnvOverrides(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Config:  cfg,
		Logger:  log.Named(name),
		Metrics: observability.NewMetrics("", nil),
	}
	if cfg.Metrics.Addr != "" {
		rt.metricsServer = observability.StartServer(cfg.Metrics.Addr)
		rt.Logger.Info("metrics listening", zap.String("addr", cfg.Metrics.Addr))
	}
	return rt, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func (r *Runtime) SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Shutdown stops the metrics listener and flushes the logger.
func (r *Runtime) Shutdown() {
	if r.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = r.metricsServer.Shutdown(ctx)
	}
	_ = r.Logger.Sync()
}
