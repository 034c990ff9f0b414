// Package handlers exposes trend-engine's operational HTTP surface:
// health, readiness, and Prometheus metrics. The persisted aggregate and
// ranking tables remain the sole data read surface.
package handlers

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}
