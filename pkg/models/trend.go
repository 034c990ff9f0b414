package models

import "time"

// Window labels and their span in hours. All four windows are fixed,
// process-wide constants; there is no per-company windowing.
const (
	Window1h  = "1h"
	Window24h = "24h"
	Window7d  = "7d"
	Window30d = "30d"
)

// Window is one rolling time span metrics are computed over.
type Window struct {
	Label string
	Hours int
}

// Windows lists the supported aggregation windows in processing order.
var Windows = []Window{
	{Label: Window1h, Hours: 1},
	{Label: Window24h, Hours: 24},
	{Label: Window7d, Hours: 24 * 7},
	{Label: Window30d, Hours: 24 * 30},
}

// Duration returns the window span as a time.Duration.
func (w Window) Duration() time.Duration {
	return time.Duration(w.Hours) * time.Hour
}

// WindowMetrics holds raw per-company counters over one half-open time
// range. It is transient; only derived snapshots are persisted.
type WindowMetrics struct {
	// Total is the number of events in the range.
	Total int
	// OneStar counts events with a rating present and <= 1.
	OneStar int
	// Negative counts events whose sentiment annotation flags them negative.
	Negative int
	// Sources is the number of distinct source identifiers seen, not the
	// event count.
	Sources int
}

// TrendSnapshot is the persisted per-(company, window) aggregate row.
// Each run fully overwrites the value columns; no history is kept.
type TrendSnapshot struct {
	CompanyID         int64     `json:"company_id"`
	Window            string    `json:"window"`
	ComplaintCount    int       `json:"complaint_count"`
	OneStarDelta      float64   `json:"one_star_delta"`
	ComplaintVelocity float64   `json:"complaint_velocity"`
	NegativeMomentum  float64   `json:"negative_momentum"`
	SourceDiversity   float64   `json:"source_diversity"`
	CTSScore          float64   `json:"cts_score"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Ranking is the persisted ordering row for one (company, window).
type Ranking struct {
	CompanyID int64     `json:"company_id"`
	Window    string    `json:"window"`
	CTSScore  float64   `json:"cts_score"`
	Delta     float64   `json:"delta"`
	Rank      int       `json:"rank"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RankingEntry is one company's position computed during a run, before it
// is persisted.
type RankingEntry struct {
	CompanyID int64
	CTSScore  float64
	Rank      int
}
