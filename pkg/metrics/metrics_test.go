package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordIngest(t *testing.T) {
	m := NewManager()

	m.RecordIngest(3, 2)
	m.RecordIngest(1, 0)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.eventsInserted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.eventsDuplicate))
}

func TestRecordRunTracksOutcome(t *testing.T) {
	m := NewManager()

	m.RecordRun(time.Second, nil)
	m.RecordRun(time.Second, assert.AnError)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("error")))
}

func TestSetCompaniesRanked(t *testing.T) {
	m := NewManager()

	m.SetCompaniesRanked("24h", 12)
	m.SetCompaniesRanked("24h", 7)

	assert.Equal(t, 7.0, testutil.ToFloat64(m.companiesRanked.WithLabelValues("24h")))
}

func TestNilManagerIsSafe(t *testing.T) {
	var m *Manager

	assert.NotPanics(t, func() {
		m.RecordIngest(1, 1)
		m.RecordRun(time.Second, nil)
		m.SetCompaniesRanked("1h", 1)
		m.RecordSweep()
	})
	assert.NotNil(t, m.Handler())
}
