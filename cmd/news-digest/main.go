package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/news-digest/internal/archive"
	"github.com/pribylovaa/news-digest/internal/archive/minio"
	"github.com/pribylovaa/news-digest/internal/archive/s3"
	"github.com/pribylovaa/news-digest/internal/auth"
	"github.com/pribylovaa/news-digest/internal/config"
	"github.com/pribylovaa/news-digest/internal/discovery"
	"github.com/pribylovaa/news-digest/internal/metrics"
	"github.com/pribylovaa/news-digest/internal/pkg/httpfetch"
	"github.com/pribylovaa/news-digest/internal/ratelimit"
	"github.com/pribylovaa/news-digest/internal/scheduler"
	"github.com/pribylovaa/news-digest/internal/seed"
	"github.com/pribylovaa/news-digest/internal/service"
	"github.com/pribylovaa/news-digest/internal/storage/postgres"
	"github.com/pribylovaa/news-digest/internal/summarizer"
	"github.com/pribylovaa/news-digest/internal/syndication"
	digesthttp "github.com/pribylovaa/news-digest/internal/transport/http"
	"github.com/pribylovaa/news-digest/internal/transport/http/handlers"
	logctx "github.com/pribylovaa/news-digest/pkg/log"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting news-digest", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()
	rootCtx = logctx.Into(rootCtx, log)

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	store, err := postgres.New(dbCtx, cfg.DB.URL)
	dbCancel()
	if err != nil {
		log.Error("postgres_connect_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer store.Close()
	log.Info("postgres_connected")

	if cfg.SourcesFile != "" {
		n, err := seed.LoadFile(rootCtx, store, cfg.SourcesFile)
		if err != nil {
			log.Error("sources_seed_failed", slog.String("file", cfg.SourcesFile), slog.String("err", err.Error()))
			os.Exit(1)
		}
		log.Info("sources_seeded", slog.Int("count", n))
	}

	fetcher := httpfetch.New(nil, cfg.Crawler.UserAgent, cfg.Crawler.Timeout)

	objects, err := newObjectStore(rootCtx, cfg.S3)
	if err != nil {
		log.Error("object_store_init_failed", slog.String("driver", cfg.S3.Driver), slog.String("err", err.Error()))
		os.Exit(1)
	}

	images := archive.New(fetcher, objects, archive.Options{
		Bucket:        cfg.S3.Bucket,
		Prefix:        cfg.S3.Prefix,
		PublicBaseURL: cfg.S3.PublicBaseURL,
		MaxBytes:      cfg.S3.MaxBytes,
	})

	limiter, closeLimiter, err := newLimiter(rootCtx, cfg.Redis)
	if err != nil {
		log.Error("redis_connect_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer closeLimiter()

	m := metrics.New(prometheus.DefaultRegisterer)

	svc := service.New(store, *cfg, service.Deps{
		Discoverer: discovery.New(fetcher, discovery.Options{
			MaxLinks:     cfg.Crawler.MaxLinks,
			MaxPageBytes: cfg.Crawler.MaxPageBytes,
		}),
		Fetcher: fetcher,
		Summarizer: summarizer.New(summarizer.Config{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
			MaxInput:    cfg.LLM.MaxInput,
		}, nil),
		Images:  images,
		Limiter: limiter,
		Metrics: m,
	})
	log.Info("service_initialized")

	h := handlers.New(svc, syndication.New(cfg.Site), "")
	apiHandler := digesthttp.NewRouter(h, digesthttp.Options{
		Logger:      log,
		Timeout:     cfg.Timeouts.Service,
		CronTimeout: cfg.Pipeline.RunTimeout,
		Verifier:    auth.NewVerifier(cfg.Auth),
		Metrics:     m,
	})

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&ready) != 1 {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.Handle("/", apiHandler)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		if cfg.Scheduler.Spec == "" {
			return
		}
		if err := scheduler.Start(rootCtx, cfg.Scheduler.Spec, svc); err != nil {
			log.Error("scheduler_start_failed", slog.String("err", err.Error()))
		}
	}()

	atomic.StoreInt32(&ready, 1)
	log.Info("news_digest_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
		rootCancel()
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	select {
	case <-schedDone:
	case <-shutdownCtx.Done():
		log.Warn("scheduler_shutdown_incomplete")
	}

	log.Info("service_stopped")
}

// newObjectStore выбирает драйвер архива изображений. Пустой драйвер -> nil (архив выключен).
func newObjectStore(ctx context.Context, cfg config.S3Config) (archive.Store, error) {
	switch cfg.Driver {
	case "minio":
		return minio.New(ctx, cfg)
	case "s3":
		return s3.New(ctx, cfg)
	default:
		return nil, nil
	}
}

// newLimiter — Redis, если задан URL, иначе счётчики в памяти процесса.
func newLimiter(ctx context.Context, cfg config.RedisConfig) (service.Limiter, func(), error) {
	if cfg.URL == "" {
		return ratelimit.NewMemory(), func() {}, nil
	}

	rctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rl, err := ratelimit.NewRedis(rctx, cfg.URL, cfg.Prefix)
	if err != nil {
		return nil, nil, err
	}
	return rl, func() { _ = rl.Close() }, nil
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
