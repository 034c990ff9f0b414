package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yenduku/trend-engine/pkg/database"
	"github.com/yenduku/trend-engine/pkg/models"
)

// TrendRepository persists the per-(company, window) aggregate snapshots
// and ranking rows, and expires stale ones.
type TrendRepository interface {
	// UpsertAggregates writes one snapshot row per company for the given
	// window, overwriting every value column of an existing row.
	UpsertAggregates(ctx context.Context, window string, snapshots []models.TrendSnapshot) error

	// UpsertRankings writes one ranking row per entry. The delta against
	// the previously persisted score is computed inside the upsert itself,
	// so concurrent runs cannot lose an update. A first-ever row gets
	// delta equal to its cts_score.
	UpsertRankings(ctx context.Context, window string, entries []models.RankingEntry, updatedAt time.Time) error

	// PurgeOlderThan deletes aggregate and ranking rows whose updated_at
	// is before cutoff.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) error
}

type trendRepository struct {
	db *database.DB
}

// NewTrendRepository creates a new trend repository.
func NewTrendRepository(db *database.DB) TrendRepository {
	return &trendRepository{db: db}
}

var _ TrendRepository = (*trendRepository)(nil)

const upsertAggregateSQL = `
	INSERT INTO agg_windows
		(company_id, "window", complaint_count, one_star_delta, complaint_velocity,
		 negative_momentum, source_diversity, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (company_id, "window") DO UPDATE SET
		complaint_count = EXCLUDED.complaint_count,
		one_star_delta = EXCLUDED.one_star_delta,
		complaint_velocity = EXCLUDED.complaint_velocity,
		negative_momentum = EXCLUDED.negative_momentum,
		source_diversity = EXCLUDED.source_diversity,
		updated_at = EXCLUDED.updated_at`

// The score is bound twice on purpose: the delta column of a brand-new row
// carries the score itself, not zero. The DO UPDATE branch references the
// pre-update rankings.cts_score, making the read-modify-write atomic.
const upsertRankingSQL = `
	INSERT INTO rankings (company_id, "window", cts_score, delta, rank, updated_at)
	VALUES ($1, $2, $3, $3, $4, $5)
	ON CONFLICT (company_id, "window") DO UPDATE SET
		delta = EXCLUDED.cts_score - rankings.cts_score,
		cts_score = EXCLUDED.cts_score,
		rank = EXCLUDED.rank,
		updated_at = EXCLUDED.updated_at`

func (r *trendRepository) UpsertAggregates(ctx context.Context, window string, snapshots []models.TrendSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range snapshots {
		batch.Queue(upsertAggregateSQL,
			s.CompanyID, window, s.ComplaintCount, s.OneStarDelta, s.ComplaintVelocity,
			s.NegativeMomentum, s.SourceDiversity, s.UpdatedAt)
	}

	if err := r.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to upsert aggregates for window %s: %w", window, err)
	}
	return nil
}

func (r *trendRepository) UpsertRankings(ctx context.Context, window string, entries []models.RankingEntry, updatedAt time.Time) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(upsertRankingSQL, e.CompanyID, window, e.CTSScore, e.Rank, updatedAt)
	}

	if err := r.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to upsert rankings for window %s: %w", window, err)
	}
	return nil
}

func (r *trendRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM agg_windows WHERE updated_at < $1`, cutoff); err != nil {
		return fmt.Errorf("failed to purge stale aggregates: %w", err)
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM rankings WHERE updated_at < $1`, cutoff); err != nil {
		return fmt.Errorf("failed to purge stale rankings: %w", err)
	}
	return nil
}

func (r *trendRepository) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	br := r.db.SendBatch(ctx, batch)
	for range batch.Len() {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return err
		}
	}
	return br.Close()
}
