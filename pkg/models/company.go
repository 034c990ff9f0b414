package models

import "time"

// Company is one tracked company from the registry.
type Company struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Sector       *string   `json:"sector,omitempty"`
	Revenue      *string   `json:"revenue,omitempty"`
	Aliases      []string  `json:"aliases"`
	FeaturedFree bool      `json:"featured_free"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
