// cmd/onboarding-chat/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"onboarding-chat/internal/backend"
	"onboarding-chat/internal/common/cache"
	"onboarding-chat/internal/common/config"
	"onboarding-chat/internal/common/logger"
	"onboarding-chat/internal/common/observability"
	"onboarding-chat/internal/conversation"
	"onboarding-chat/internal/render"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configPath string

	cmd := &cobra.Command{
		Use:   "onboarding-chat",
		Short: "Chat with the OMX onboarding assistant in your terminal",
		Long: "Walks through business type, size and goals, shows a product recommendation\n" +
			"and then answers FAQ questions. Type #N to click chip N; anything else is sent as text.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg *config.Config
				err error
			)
			if configPath != "" {
				cfg, err = config.LoadFromFileWith(v, configPath)
			} else {
				cfg, err = config.LoadWith(v)
			}
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return run(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to a config file (default: ./configs/config.yaml)")
	flags.String("base-url", "", "backend base URL, e.g. http://localhost:5000")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	_ = v.BindPFlag("backend.base_url", flags.Lookup("base-url"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))

	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name, nil, log)
	defer obs.Shutdown()

	if addr := cfg.Metrics.Address; addr != "" {
		srv := startMetricsServer(addr, zapLog)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	store, err := openCache(ctx, cfg.Cache, zapLog)
	if err != nil {
		return err
	}
	defer store.Close()

	sessionID := uuid.NewString()
	client := backend.NewClient(&backend.Config{
		BaseURL:    cfg.Backend.BaseURL,
		Timeout:    config.GetDuration(cfg.Backend.Timeout),
		MaxRetries: cfg.Backend.MaxRetries,
	}, log)
	api := backend.NewCachedClient(client, store, config.GetDuration(cfg.Cache.TTL), sessionID, log)

	script := conversation.DefaultScript()
	if cfg.Widget.Greeting != "" {
		script.Greeting = cfg.Widget.Greeting
	}

	term := render.NewTerminal(cmd.OutOrStdout())
	ctrl := conversation.NewController(api, term, conversation.ControllerConfig{
		SessionID:      sessionID,
		RequestTimeout: config.GetDuration(cfg.Backend.Timeout),
		Options: conversation.Options{
			WelcomeDelay:    config.GetDuration(cfg.Widget.WelcomeDelay),
			StepDelay:       config.GetDuration(cfg.Widget.StepDelay),
			SuggestionCount: cfg.Widget.SuggestionCount,
			Script:          script,
			Seed:            cfg.Widget.Seed,
		},
		Observer: obs,
	}, log)

	zapLog.Info("starting conversation",
		zap.String("session", sessionID),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("cache", cfg.Cache.Driver),
	)

	errc := make(chan error, 1)
	go func() { errc <- ctrl.Run(ctx) }()

	go func() {
		if err := readInput(cmd.InOrStdin(), term, ctrl); err != nil {
			zapLog.Warn("input stopped", zap.Error(err))
		}
		// end of input ends the conversation
		stop()
	}()

	if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func startMetricsServer(addr string, zapLog *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		zapLog.Info("metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}

func openCache(ctx context.Context, cfg config.CacheConfig, zapLog *zap.Logger) (cache.Cache, error) {
	switch cfg.Driver {
	case config.CacheDriverNone:
		return cache.Nop{}, nil
	case config.CacheDriverRedis:
		rc := cache.NewRedis(cfg.Redis)
		err := retryWithBackoff(func() error {
			return rc.Ping(ctx)
		}, 3, 500*time.Millisecond, zapLog, "Redis connection")
		if err != nil {
			rc.Close()
			return nil, err
		}
		zapLog.Info("Redis connected successfully", zap.String("redis", cfg.Redis.String()))
		return rc, nil
	default:
		return cache.NewMemory(), nil
	}
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
