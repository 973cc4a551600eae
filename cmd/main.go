package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/okian/mentorlink/internal/adapters/auth"
	"github.com/okian/mentorlink/internal/adapters/http/api"
	"github.com/okian/mentorlink/internal/adapters/http/swagger"
	"github.com/okian/mentorlink/internal/adapters/realtime"
	"github.com/okian/mentorlink/internal/adapters/repository"
	app "github.com/okian/mentorlink/internal/app"
	"github.com/okian/mentorlink/internal/config"
	"github.com/okian/mentorlink/internal/domain/scoring"
	"github.com/okian/mentorlink/pkg/logger"
	"github.com/okian/mentorlink/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.SetFormat(cfg.LogFormat); err != nil {
		os.Stderr.WriteString("invalid log_format: " + err.Error() + "\n")
	}
	log := logger.Get()
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "mentorlink exited with error", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// run wires every component from cfg and blocks until ctx is cancelled or a
// component fails.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}

	authn, err := auth.NewManager(cfg.JWTSecret, auth.WithTTL(cfg.TokenTTL))
	if err != nil {
		_ = store.Close()
		return err
	}

	hub := realtime.NewHub(realtime.WithHubLogger(log.Named("realtime")))
	var (
		publisher realtime.Publisher = hub
		bridge    *realtime.RedisBridge
	)
	if cfg.RedisAddr != "" {
		bridge = realtime.NewRedisBridge(cfg.RedisAddr, cfg.RedisChannelPrefix, hub)
		publisher = bridge
		log.Info(ctx, "realtime fan-out through redis", logger.String("addr", cfg.RedisAddr))
	}

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithStore(store),
		app.WithEngine(newEngine(cfg)),
		app.WithPublisher(publisher),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithMaxSearchResults(cfg.MaxSearchResults),
		app.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("start service: %w", err)
	}

	// HTTP mux and routes.
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, authn,
		api.WithWebsocket(hub),
		api.WithWriteRateLimit(cfg.RateLimitPerMinute, time.Minute),
		api.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
	).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		_ = svc.Stop(ctx)
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return hub.Run(gctx) })
	if bridge != nil {
		g.Go(func() error { return bridge.Run(gctx) })
	}
	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})
	g.Go(func() error {
		startServiceMetricsUpdater(gctx, svc)
		return nil
	})

	runErr := g.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := svc.Stop(stopCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}
	if bridge != nil {
		if err := bridge.Close(); err != nil {
			log.Warn(stopCtx, "closing redis bridge", logger.Error(err))
		}
	}
	log.Info(stopCtx, "server stopped")
	return runErr
}

// openStore opens the configured profile store.
func openStore(cfg *config.Config, log logger.Logger) (repository.Store, error) {
	switch cfg.StorageDriver {
	case config.StorageBadger:
		s, err := repository.OpenBadgerStore(cfg.BadgerDir, repository.WithLogger(log.Named("badger")))
		if err != nil {
			return nil, fmt.Errorf("open badger store: %w", err)
		}
		return s, nil
	default:
		return repository.NewMemoryStore(repository.WithLogger(log.Named("store"))), nil
	}
}

// newEngine builds the ranking engine from the scoring settings.
func newEngine(cfg *config.Config) *scoring.Engine {
	return scoring.NewEngine(
		scoring.WithDepthFullTopics(cfg.DepthFullTopics),
		scoring.WithRankFullSubtopics(float64(cfg.RankFullSubtopics)),
		scoring.WithFeedbackWeight(cfg.FeedbackWeight),
	)
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes service gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

// updateServiceMetrics pushes the service stats into the gauges. GetStats
// already refreshes queue and profile gauges.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
