package main

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/imtaco/eventsched/internal/activity"
	"github.com/imtaco/eventsched/internal/config"
	"github.com/imtaco/eventsched/internal/httputil"
	"github.com/imtaco/eventsched/internal/log"
	"github.com/imtaco/eventsched/internal/otel"
	redisconf "github.com/imtaco/eventsched/internal/redis"
	"github.com/imtaco/eventsched/internal/retry"
	"github.com/imtaco/eventsched/internal/workflow"
	notifyredis "github.com/imtaco/eventsched/notify/redis"
	"github.com/imtaco/eventsched/scheduler"
	"github.com/imtaco/eventsched/transport"
)

type Config struct {
	App   config.App      `mapstructure:"app"`
	HTTP  httputil.Config `mapstructure:"http"`
	Otel  otel.Config     `mapstructure:"otel"`
	Redis redisconf.Config `mapstructure:"redis"`

	NotifyEnabled    bool   `mapstructure:"notify_enabled"`
	NotifyStream     string `mapstructure:"notify_stream"`
	ActivityCapacity int    `mapstructure:"activity_capacity"`

	RetryEnabled         bool `mapstructure:"retry_enabled"`
	RetryInitialInterval int  `mapstructure:"retry_initial_interval_ms"`
	RetryMaxInterval     int  `mapstructure:"retry_max_interval_ms"`
	RetryMaxElapsed      int  `mapstructure:"retry_max_elapsed_ms"`
}

func loadConfig() (*Config, error) {
	return config.Load(&Config{}, func(v *viper.Viper) {
		v.SetDefault("notify_enabled", false)
		v.SetDefault("notify_stream", "eventsched:fired")
		v.SetDefault("activity_capacity", 256)

		v.SetDefault("retry_enabled", false)
		v.SetDefault("retry_initial_interval_ms", 500)
		v.SetDefault("retry_max_interval_ms", 10000)
		v.SetDefault("retry_max_elapsed_ms", 60000)

		config.Setup(v, "app")
		otel.Setup(v, "otel")
		httputil.Setup(v, "http")
		redisconf.Setup(v, "redis")

		// override default addr to ease testing
		v.SetDefault("http.addr", "0.0.0.0:3000")
	})
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration", err)
	}

	logger, err := log.NewLogger(cfg.App.LogConfigFile)
	if err != nil {
		log.Fatal("Failed to create logger", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	otelShutdown, err := otel.Init(ctx, &cfg.Otel, logger)
	if err != nil {
		logger.Fatal("Failed to initialize OTEL provider", log.Error(err))
	}

	logger.Info("Starting event scheduler service",
		log.String("addr", cfg.HTTP.Addr),
		log.Bool("notifyEnabled", cfg.NotifyEnabled))

	schedOpts := []scheduler.Option{
		scheduler.WithMetrics(scheduler.NewMetrics("eventsched")),
	}
	if cfg.RetryEnabled {
		schedOpts = append(schedOpts, scheduler.WithRetry(retry.New(
			logger.Module("Retry"),
			msDuration(cfg.RetryInitialInterval),
			msDuration(cfg.RetryMaxInterval),
			msDuration(cfg.RetryMaxElapsed),
		)))
	}

	sched := scheduler.New(logger.Module("Scheduler"), schedOpts...)
	if err := sched.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", log.Error(err))
	}

	recorder := activity.NewRecorder(cfg.ActivityCapacity)

	var publisher notifyredis.Publisher
	var redisClient interface{ Close() error }
	if cfg.NotifyEnabled {
		client := redisconf.NewClient(&cfg.Redis)
		redisClient = client
		publisher = notifyredis.NewPublisher(client, cfg.NotifyStream, logger.Module("Publisher"))
	}

	router := transport.NewRouter(sched, recorder, publisher, logger.Module("Router"))
	server := httputil.NewServer(&cfg.HTTP, router.Handler())

	go func() {
		logger.Info("Starting HTTP server", log.String("addr", cfg.HTTP.Addr))
		if err := server.Listen(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", log.Error(err))
		}
	}()

	logger.Info("Event scheduler started")

	cleanup := func(ctx context.Context) {
		_ = server.Shutdown(ctx)

		if err := sched.Stop(false); err != nil {
			logger.Error("Error stopping scheduler", log.Error(err))
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Error("Failed to close redis client", log.Error(err))
			}
		}
		if err := otelShutdown(ctx); err != nil {
			logger.Error("Failed to shutdown OTEL", log.Error(err))
		}
	}
	workflow.WaitGracefulShutdown(ctx, logger.Module("CleanUp"), cleanup, cfg.App.ShutdownTimeout)
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
