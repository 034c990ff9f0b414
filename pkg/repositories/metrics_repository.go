package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/yenduku/trend-engine/pkg/database"
	"github.com/yenduku/trend-engine/pkg/models"
)

// MetricsRepository computes raw per-company counters over an arbitrary
// half-open time range by reading the event store.
type MetricsRepository interface {
	// Collect scans events with created_at in [start, end) and groups them
	// by company. Companies with no qualifying events are absent from the
	// result; callers treat an absent entry as the zero vector.
	Collect(ctx context.Context, start, end time.Time) (map[int64]models.WindowMetrics, error)
}

type metricsRepository struct {
	db *database.DB
}

// NewMetricsRepository creates a new metrics repository.
func NewMetricsRepository(db *database.DB) MetricsRepository {
	return &metricsRepository{db: db}
}

var _ MetricsRepository = (*metricsRepository)(nil)

func (r *metricsRepository) Collect(ctx context.Context, start, end time.Time) (map[int64]models.WindowMetrics, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
			re.company_id,
			COUNT(*) AS total,
			SUM(CASE WHEN re.rating IS NOT NULL AND re.rating <= 1 THEN 1 ELSE 0 END) AS one_star,
			SUM(CASE WHEN se.is_negative THEN 1 ELSE 0 END) AS negative,
			COUNT(DISTINCT re.source) AS sources
		FROM raw_events re
		LEFT JOIN sentiment_events se ON se.raw_event_id = re.id
		WHERE re.created_at >= $1 AND re.created_at < $2
		GROUP BY re.company_id`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to collect window metrics: %w", err)
	}
	defer rows.Close()

	metrics := make(map[int64]models.WindowMetrics)
	for rows.Next() {
		var companyID int64
		var total, oneStar, negative, sources int64
		if err := rows.Scan(&companyID, &total, &oneStar, &negative, &sources); err != nil {
			return nil, fmt.Errorf("failed to scan window metrics: %w", err)
		}
		metrics[companyID] = models.WindowMetrics{
			Total:    int(total),
			OneStar:  int(oneStar),
			Negative: int(negative),
			Sources:  int(sources),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating window metrics: %w", err)
	}

	return metrics, nil
}
