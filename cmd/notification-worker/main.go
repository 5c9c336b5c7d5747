// cmd/notification-worker/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"legalease-notifications/internal/admin"
	"legalease-notifications/internal/audit"
	"legalease-notifications/internal/channel"
	"legalease-notifications/internal/common/config"
	"legalease-notifications/internal/common/database"
	"legalease-notifications/internal/common/logger"
	"legalease-notifications/internal/common/observability"
	"legalease-notifications/internal/consumer"
	"legalease-notifications/internal/dispatcher"
	"legalease-notifications/internal/handlers"
	"legalease-notifications/internal/store"
)

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
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting notification worker...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New("notification-worker")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if err := store.EnsureSchema(ctx, pg.DB); err != nil {
		zapLog.Fatal("schema setup failed", zap.Error(err))
	}

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Stores ---
	stores := dispatcher.Stores{
		Records:     store.NewPostgresRecordStore(pg.DB, log),
		Types:       store.NewPostgresTypeStore(pg.DB),
		Templates:   store.NewPostgresTemplateStore(pg.DB, log),
		Preferences: store.NewPostgresPreferenceStore(pg.DB),
	}

	// --- Delivery channels ---
	emailSender, err := channel.NewEmailSender(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("email channel setup failed", zap.Error(err))
	}

	dispatchOpts := []dispatcher.Option{dispatcher.WithObservability(obs)}

	if cfg.Notifications.SMS.Enabled {
		smsSender, err := channel.NewSNSSMSSender(ctx, cfg, log)
		if err != nil {
			zapLog.Fatal("sms channel setup failed", zap.Error(err))
		}
		dispatchOpts = append(dispatchOpts, dispatcher.WithSMS(smsSender))
	}

	// --- Optional dispatch audit indexing ---
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
		dispatchOpts = append(dispatchOpts,
			dispatcher.WithAuditor(audit.NewIndexer(esClient, cfg.Database.Elasticsearch.AuditIndex, log)))
	}

	disp := dispatcher.New(cfg, stores, emailSender, log, dispatchOpts...)

	// --- Consumer ---
	handlerSet := handlers.All(disp, cfg, log)
	cons, err := consumer.New(rdb.Client, cfg.EventLog, log, obs, handlerSet...)
	if err != nil {
		zapLog.Fatal("consumer setup failed", zap.Error(err))
	}
	if err := cons.Start(ctx); err != nil {
		zapLog.Fatal("consumer start failed", zap.Error(err))
	}

	// --- Admin server ---
	adminSrv := admin.NewServer(stores.Records, disp, cons, log)
	httpSrv := &http.Server{
		Addr:    cfg.Admin.ListenAddress,
		Handler: adminSrv.Router(),
	}
	go func() {
		zapLog.Info("Admin server listening", zap.String("address", cfg.Admin.ListenAddress))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Admin server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping consumer...")
	cons.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Admin server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Notification worker stopped gracefully")
}
