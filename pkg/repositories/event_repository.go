// Package repositories contains data access for trend-engine: the
// deduplicated event store, the company registry read side, window metrics
// collection, and aggregate/ranking persistence.
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yenduku/trend-engine/pkg/database"
	"github.com/yenduku/trend-engine/pkg/dedupe"
	"github.com/yenduku/trend-engine/pkg/models"
)

// EventRepository persists deduplicated raw events and their sentiment
// annotations.
type EventRepository interface {
	// StoreBatch inserts the given events, silently skipping any whose
	// fingerprint already exists, and writes one sentiment row for exactly
	// the events that were newly inserted. Returns the number of newly
	// inserted events.
	StoreBatch(ctx context.Context, items []models.EventWithSentiment) (int, error)
}

type eventRepository struct {
	db *database.DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *database.DB) EventRepository {
	return &eventRepository{db: db}
}

var _ EventRepository = (*eventRepository)(nil)

const insertEventSQL = `
	INSERT INTO raw_events (source, company_id, url, text, rating, language, created_at, hash)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (hash) DO NOTHING
	RETURNING id`

const insertSentimentSQL = `
	INSERT INTO sentiment_events (raw_event_id, sentiment_score, is_negative)
	VALUES ($1, $2, $3)
	ON CONFLICT (raw_event_id) DO NOTHING`

// StoreBatch relies on the raw_events hash uniqueness constraint for
// dedup rather than pre-checking, so concurrent producers racing on the
// same fingerprint are safe. There is no batch-wide transaction; per-row
// idempotency makes retries safe even after a partial commit.
func (r *eventRepository) StoreBatch(ctx context.Context, items []models.EventWithSentiment) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for i := range items {
		ev := &items[i].Event
		if ev.Hash == "" {
			ev.Hash = dedupe.Fingerprint(ev.Source, ev.URL, ev.Text)
		}
		createdAt := ev.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		batch.Queue(insertEventSQL,
			ev.Source, ev.CompanyID, ev.URL, ev.Text, ev.Rating, ev.Language, createdAt, ev.Hash)
	}

	// ids[i] stays zero for events skipped as duplicates (no row returned).
	ids := make([]int64, len(items))
	br := r.db.SendBatch(ctx, batch)
	for i := range items {
		rows, err := br.Query()
		if err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("failed to insert event: %w", err)
		}
		for rows.Next() {
			if err := rows.Scan(&ids[i]); err != nil {
				rows.Close()
				_ = br.Close()
				return 0, fmt.Errorf("failed to scan inserted event id: %w", err)
			}
		}
		if err := rows.Err(); err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("failed reading event insert result: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to close event batch: %w", err)
	}

	inserted := 0
	sentiments := &pgx.Batch{}
	for i := range items {
		if ids[i] == 0 {
			continue
		}
		inserted++
		sentiments.Queue(insertSentimentSQL, ids[i], items[i].SentimentScore, items[i].IsNegative)
	}
	if sentiments.Len() == 0 {
		return 0, nil
	}

	sbr := r.db.SendBatch(ctx, sentiments)
	for range sentiments.Len() {
		if _, err := sbr.Exec(); err != nil {
			_ = sbr.Close()
			return inserted, fmt.Errorf("failed to insert sentiment annotation: %w", err)
		}
	}
	if err := sbr.Close(); err != nil {
		return inserted, fmt.Errorf("failed to close sentiment batch: %w", err)
	}

	return inserted, nil
}
