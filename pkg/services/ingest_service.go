package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/yenduku/trend-engine/pkg/metrics"
	"github.com/yenduku/trend-engine/pkg/models"
	"github.com/yenduku/trend-engine/pkg/repositories"
)

// IngestService accepts classified event batches from acquisition workers
// and records how many survived deduplication.
type IngestService interface {
	// StoreBatch stores the batch and returns the number of newly inserted
	// events. Resubmitting a batch is a safe no-op for events already seen.
	StoreBatch(ctx context.Context, items []models.EventWithSentiment) (int, error)
}

type ingestService struct {
	events repositories.EventRepository
	logger *zap.Logger
	stats  *metrics.Manager
}

// NewIngestService creates a new ingest service.
func NewIngestService(events repositories.EventRepository, logger *zap.Logger, stats *metrics.Manager) IngestService {
	return &ingestService{events: events, logger: logger, stats: stats}
}

var _ IngestService = (*ingestService)(nil)

func (s *ingestService) StoreBatch(ctx context.Context, items []models.EventWithSentiment) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	inserted, err := s.events.StoreBatch(ctx, items)
	if err != nil {
		return inserted, err
	}

	duplicates := len(items) - inserted
	s.stats.RecordIngest(inserted, duplicates)
	s.logger.Info("Stored event batch",
		zap.Int("received", len(items)),
		zap.Int("inserted", inserted),
		zap.Int("duplicates", duplicates),
	)
	return inserted, nil
}
