// Package services contains the trend-engine business logic: event batch
// ingestion and the multi-window aggregation run.
package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yenduku/trend-engine/pkg/metrics"
	"github.com/yenduku/trend-engine/pkg/models"
	"github.com/yenduku/trend-engine/pkg/repositories"
	"github.com/yenduku/trend-engine/pkg/scoring"
)

// AggregationService runs the multi-window trend aggregation: collect,
// compute, persist and rank for every window, then sweep stale rows.
type AggregationService interface {
	// Run executes one full aggregation pass anchored at now. The first
	// storage error aborts the run; windows processed before the failure
	// stay committed, and the next run reprocesses everything idempotently.
	Run(ctx context.Context, now time.Time) error
}

type aggregationService struct {
	companies   repositories.CompanyRepository
	collector   repositories.MetricsRepository
	trends      repositories.TrendRepository
	sourceCount int
	retention   time.Duration
	logger      *zap.Logger
	stats       *metrics.Manager
}

// NewAggregationService creates the run orchestrator. sourceCount is the
// diversity denominator from configuration; retentionDays bounds how long
// snapshot and ranking rows are kept.
func NewAggregationService(
	companies repositories.CompanyRepository,
	collector repositories.MetricsRepository,
	trends repositories.TrendRepository,
	sourceCount int,
	retentionDays int,
	logger *zap.Logger,
	stats *metrics.Manager,
) AggregationService {
	if sourceCount < 1 {
		sourceCount = 1
	}
	return &aggregationService{
		companies:   companies,
		collector:   collector,
		trends:      trends,
		sourceCount: sourceCount,
		retention:   time.Duration(retentionDays) * 24 * time.Hour,
		logger:      logger,
		stats:       stats,
	}
}

var _ AggregationService = (*aggregationService)(nil)

func (s *aggregationService) Run(ctx context.Context, now time.Time) error {
	runID := uuid.New()
	logger := s.logger.With(zap.String("run_id", runID.String()))
	started := time.Now()

	err := s.run(ctx, now, logger)
	s.stats.RecordRun(time.Since(started), err)
	if err != nil {
		logger.Error("Aggregation run failed", zap.Error(err))
		return err
	}

	logger.Info("Aggregation run finished", zap.Duration("took", time.Since(started)))
	return nil
}

func (s *aggregationService) run(ctx context.Context, now time.Time, logger *zap.Logger) error {
	// The registry is read once per run; every active company appears in
	// each window's ranking even with zero activity.
	companies, err := s.companies.ListActive(ctx)
	if err != nil {
		return err
	}

	for _, window := range models.Windows {
		if err := s.processWindow(ctx, window, companies, now, logger); err != nil {
			return fmt.Errorf("window %s: %w", window.Label, err)
		}
	}

	cutoff := now.Add(-s.retention)
	if err := s.trends.PurgeOlderThan(ctx, cutoff); err != nil {
		return err
	}
	s.stats.RecordSweep()

	return nil
}

func (s *aggregationService) processWindow(ctx context.Context, window models.Window, companies []models.Company, now time.Time, logger *zap.Logger) error {
	currentStart := now.Add(-window.Duration())
	previousStart := now.Add(-2 * window.Duration())

	current, err := s.collector.Collect(ctx, currentStart, now)
	if err != nil {
		return err
	}
	previous, err := s.collector.Collect(ctx, previousStart, currentStart)
	if err != nil {
		return err
	}

	snapshots := buildSnapshots(companies, current, previous, s.sourceCount, now)

	if err := s.trends.UpsertAggregates(ctx, window.Label, snapshots); err != nil {
		return err
	}

	entries := rankSnapshots(snapshots)
	if err := s.trends.UpsertRankings(ctx, window.Label, entries, now); err != nil {
		return err
	}

	s.stats.SetCompaniesRanked(window.Label, len(entries))
	logger.Info("Processed window",
		zap.String("window", window.Label),
		zap.Int("companies", len(entries)),
	)
	return nil
}

// buildSnapshots computes one snapshot per active company. A company
// absent from a metrics map contributes the zero vector, never an error.
func buildSnapshots(companies []models.Company, current, previous map[int64]models.WindowMetrics, sourceCount int, now time.Time) []models.TrendSnapshot {
	snapshots := make([]models.TrendSnapshot, 0, len(companies))
	for _, company := range companies {
		cur := current[company.ID]
		prev := previous[company.ID]

		velocity := scoring.SafeDelta(cur.Total, prev.Total)
		oneStarDelta := scoring.SafeDelta(cur.OneStar, prev.OneStar)
		negativeMomentum := scoring.SafeDelta(cur.Negative, prev.Negative)
		diversity := scoring.SourceDiversity(cur.Sources, sourceCount)

		snapshots = append(snapshots, models.TrendSnapshot{
			CompanyID:         company.ID,
			ComplaintCount:    cur.Total,
			OneStarDelta:      oneStarDelta,
			ComplaintVelocity: velocity,
			NegativeMomentum:  negativeMomentum,
			SourceDiversity:   diversity,
			CTSScore:          scoring.MomentumScore(velocity, negativeMomentum, diversity),
			UpdatedAt:         now,
		})
	}
	return snapshots
}

// rankSnapshots orders companies by descending score and assigns ranks
// 1..N. Equal scores tie-break on ascending company id so reruns over
// identical data produce identical orderings.
func rankSnapshots(snapshots []models.TrendSnapshot) []models.RankingEntry {
	entries := make([]models.RankingEntry, 0, len(snapshots))
	for _, s := range snapshots {
		entries = append(entries, models.RankingEntry{CompanyID: s.CompanyID, CTSScore: s.CTSScore})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CTSScore != entries[j].CTSScore {
			return entries[i].CTSScore > entries[j].CTSScore
		}
		return entries[i].CompanyID < entries[j].CompanyID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
