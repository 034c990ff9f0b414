package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yenduku/trend-engine/pkg/config"
	"github.com/yenduku/trend-engine/pkg/database"
	"github.com/yenduku/trend-engine/pkg/handlers"
	"github.com/yenduku/trend-engine/pkg/metrics"
	"github.com/yenduku/trend-engine/pkg/models"
	"github.com/yenduku/trend-engine/pkg/repositories"
	"github.com/yenduku/trend-engine/pkg/services"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	once := flag.Bool("once", false, "run a single aggregation pass and exit")
	ingestFile := flag.String("ingest", "", "store a JSON batch of classified events from the given file and exit")
	migrationsPath := flag.String("migrations", "migrations", "path to migration files")
	flag.Parse()

	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := migrate(cfg, *migrationsPath, logger); err != nil {
		logger.Fatal("Migrations failed", zap.Error(err))
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	stats := metrics.NewManager()
	aggregator := services.NewAggregationService(
		repositories.NewCompanyRepository(db),
		repositories.NewMetricsRepository(db),
		repositories.NewTrendRepository(db),
		cfg.Sources.ConfiguredSourceCount(),
		cfg.Aggregation.RetentionDays,
		logger.With(zap.String("component", "aggregation")),
		stats,
	)

	if *ingestFile != "" {
		ingest := services.NewIngestService(
			repositories.NewEventRepository(db),
			logger.With(zap.String("component", "ingest")),
			stats,
		)
		if err := ingestFromFile(ctx, ingest, *ingestFile); err != nil {
			logger.Fatal("Ingest failed", zap.Error(err))
		}
		return
	}

	if *once {
		if err := aggregator.Run(ctx, time.Now().UTC()); err != nil {
			logger.Fatal("Aggregation run failed", zap.Error(err))
		}
		return
	}

	mux := http.NewServeMux()
	healthHandler := handlers.NewHealthHandler(cfg, db, logger.With(zap.String("component", "health")))
	healthHandler.RegisterRoutes(mux)
	mux.Handle("/metrics", stats.Handler())

	server := &http.Server{Addr: cfg.BindAddr + ":" + cfg.Port, Handler: mux}
	go func() {
		logger.Info("Starting trend-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	runLoop(ctx, aggregator, time.Duration(cfg.Aggregation.IntervalMinutes)*time.Minute)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server shutdown failed", zap.Error(err))
	}
}

// runLoop triggers an aggregation pass immediately and then on every tick
// until the context is cancelled. A failed run leaves later windows stale
// until the next tick, which reprocesses everything idempotently; the
// service logs the failure itself.
func runLoop(ctx context.Context, aggregator services.AggregationService, interval time.Duration) {
	_ = aggregator.Run(ctx, time.Now().UTC())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			_ = aggregator.Run(ctx, t.UTC())
		}
	}
}

func migrate(cfg *config.Config, migrationsPath string, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return database.RunMigrations(sqlDB, migrationsPath, logger)
}

// ingestRecord is the JSON shape acquisition workers hand over: one raw
// event plus its sentiment classification.
type ingestRecord struct {
	models.RawEvent
	SentimentScore float64 `json:"sentiment_score"`
	IsNegative     bool    `json:"is_negative"`
}

func ingestFromFile(ctx context.Context, ingest services.IngestService, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var records []ingestRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return err
	}

	items := make([]models.EventWithSentiment, 0, len(records))
	for _, rec := range records {
		items = append(items, models.EventWithSentiment{
			Event:          rec.RawEvent,
			SentimentScore: rec.SentimentScore,
			IsNegative:     rec.IsNegative,
		})
	}

	_, err = ingest.StoreBatch(ctx, items)
	return err
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Env == "local" {
		return zap.NewDevelopment()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	logConfig := zap.NewProductionConfig()
	logConfig.Level = zap.NewAtomicLevelAt(level)
	return logConfig.Build()
}
