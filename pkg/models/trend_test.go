package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowsTable(t *testing.T) {
	want := map[string]int{"1h": 1, "24h": 24, "7d": 168, "30d": 720}

	assert.Len(t, Windows, len(want))
	for _, w := range Windows {
		assert.Equal(t, want[w.Label], w.Hours, "window %s", w.Label)
	}
}

func TestWindowDuration(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, Window{Label: Window7d, Hours: 168}.Duration())
}
