// Package models contains domain types for trend-engine.
package models

import (
	"time"
)

// RawEvent is one deduplicated observation of complaint-relevant content
// about a company, produced by an acquisition adapter.
type RawEvent struct {
	ID        int64     `json:"id"`
	Source    string    `json:"source"`
	CompanyID int64     `json:"company_id"`
	URL       string    `json:"url"`
	Text      string    `json:"text"`
	Rating    *float64  `json:"rating,omitempty"`
	Language  *string   `json:"language,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Hash      string    `json:"hash"`
}

// SentimentEvent is the classification attached to exactly one RawEvent.
// It is written once, when the owning event is first inserted.
type SentimentEvent struct {
	ID             int64   `json:"id"`
	RawEventID     int64   `json:"raw_event_id"`
	SentimentScore float64 `json:"sentiment_score"`
	IsNegative     bool    `json:"is_negative"`
}

// EventWithSentiment pairs a raw event with its classification result,
// ready for a single storage round trip.
type EventWithSentiment struct {
	Event          RawEvent
	SentimentScore float64
	IsNegative     bool
}
