package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yenduku/trend-engine/pkg/models"
)

// mockCompanyRepo implements repositories.CompanyRepository for testing.
type mockCompanyRepo struct {
	companies []models.Company
	err       error
}

func (m *mockCompanyRepo) ListActive(_ context.Context) ([]models.Company, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.companies, nil
}

// mockMetricsRepo implements repositories.MetricsRepository for testing.
type mockMetricsRepo struct {
	collectFn func(start, end time.Time) (map[int64]models.WindowMetrics, error)
	calls     [][2]time.Time
}

func (m *mockMetricsRepo) Collect(_ context.Context, start, end time.Time) (map[int64]models.WindowMetrics, error) {
	m.calls = append(m.calls, [2]time.Time{start, end})
	if m.collectFn != nil {
		return m.collectFn(start, end)
	}
	return map[int64]models.WindowMetrics{}, nil
}

// mockTrendRepo implements repositories.TrendRepository for testing.
type mockTrendRepo struct {
	aggregates   map[string][]models.TrendSnapshot
	rankings     map[string][]models.RankingEntry
	windowOrder  []string
	purgeCutoffs []time.Time
	aggregateErr func(window string) error
}

func newMockTrendRepo() *mockTrendRepo {
	return &mockTrendRepo{
		aggregates: make(map[string][]models.TrendSnapshot),
		rankings:   make(map[string][]models.RankingEntry),
	}
}

func (m *mockTrendRepo) UpsertAggregates(_ context.Context, window string, snapshots []models.TrendSnapshot) error {
	if m.aggregateErr != nil {
		if err := m.aggregateErr(window); err != nil {
			return err
		}
	}
	m.aggregates[window] = snapshots
	m.windowOrder = append(m.windowOrder, window)
	return nil
}

func (m *mockTrendRepo) UpsertRankings(_ context.Context, window string, entries []models.RankingEntry, _ time.Time) error {
	m.rankings[window] = entries
	return nil
}

func (m *mockTrendRepo) PurgeOlderThan(_ context.Context, cutoff time.Time) error {
	m.purgeCutoffs = append(m.purgeCutoffs, cutoff)
	return nil
}

func company(id int64, name string) models.Company {
	return models.Company{ID: id, Name: name, Active: true}
}

func TestRunProcessesAllWindowsThenSweeps(t *testing.T) {
	companies := &mockCompanyRepo{companies: []models.Company{company(1, "Acme")}}
	collector := &mockMetricsRepo{}
	trends := newMockTrendRepo()

	svc := NewAggregationService(companies, collector, trends, 9, 730, zap.NewNop(), nil)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	require.NoError(t, svc.Run(context.Background(), now))

	assert.Equal(t, []string{"1h", "24h", "7d", "30d"}, trends.windowOrder)
	// Two collector calls per window: current and previous period.
	assert.Len(t, collector.calls, 8)

	require.Len(t, trends.purgeCutoffs, 1)
	assert.Equal(t, now.Add(-730*24*time.Hour), trends.purgeCutoffs[0])
}

func TestRunWindowRangesAreHalfOpenAndAdjacent(t *testing.T) {
	companies := &mockCompanyRepo{companies: []models.Company{company(1, "Acme")}}
	collector := &mockMetricsRepo{}
	trends := newMockTrendRepo()

	svc := NewAggregationService(companies, collector, trends, 9, 730, zap.NewNop(), nil)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	require.NoError(t, svc.Run(context.Background(), now))

	// First window is 1h: current period [now-1h, now), previous [now-2h, now-1h).
	assert.Equal(t, now.Add(-time.Hour), collector.calls[0][0])
	assert.Equal(t, now, collector.calls[0][1])
	assert.Equal(t, now.Add(-2*time.Hour), collector.calls[1][0])
	assert.Equal(t, now.Add(-time.Hour), collector.calls[1][1])
}

func TestRunZeroActivityCompanyGetsZeroVector(t *testing.T) {
	companies := &mockCompanyRepo{companies: []models.Company{company(7, "Quiet Corp")}}
	collector := &mockMetricsRepo{} // no events anywhere
	trends := newMockTrendRepo()

	svc := NewAggregationService(companies, collector, trends, 9, 730, zap.NewNop(), nil)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	require.NoError(t, svc.Run(context.Background(), now))

	snaps := trends.aggregates["24h"]
	require.Len(t, snaps, 1)
	s := snaps[0]
	assert.Equal(t, int64(7), s.CompanyID)
	assert.Zero(t, s.ComplaintCount)
	assert.Zero(t, s.OneStarDelta)
	assert.Zero(t, s.ComplaintVelocity)
	assert.Zero(t, s.NegativeMomentum)
	assert.Zero(t, s.SourceDiversity)
	assert.Zero(t, s.CTSScore)
	assert.Equal(t, now, s.UpdatedAt)

	// The company still appears in the ranking.
	require.Len(t, trends.rankings["24h"], 1)
	assert.Equal(t, 1, trends.rankings["24h"][0].Rank)
}

func TestRunComputesSnapshotArithmetic(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	current := map[int64]models.WindowMetrics{
		1: {Total: 15, OneStar: 2, Negative: 3, Sources: 3},
	}
	previous := map[int64]models.WindowMetrics{
		1: {Total: 10, OneStar: 0, Negative: 2, Sources: 1},
	}

	companies := &mockCompanyRepo{companies: []models.Company{company(1, "Acme")}}
	collector := &mockMetricsRepo{
		collectFn: func(start, end time.Time) (map[int64]models.WindowMetrics, error) {
			if end.Equal(now) {
				return current, nil
			}
			return previous, nil
		},
	}
	trends := newMockTrendRepo()

	svc := NewAggregationService(companies, collector, trends, 9, 730, zap.NewNop(), nil)
	require.NoError(t, svc.Run(context.Background(), now))

	snaps := trends.aggregates["1h"]
	require.Len(t, snaps, 1)
	s := snaps[0]
	assert.Equal(t, 15, s.ComplaintCount)
	assert.InDelta(t, 50.0, s.ComplaintVelocity, 1e-9) // (15-10)/10*100
	assert.InDelta(t, 200.0, s.OneStarDelta, 1e-9)     // zero baseline: 2*100
	assert.InDelta(t, 50.0, s.NegativeMomentum, 1e-9)  // (3-2)/2*100
	assert.InDelta(t, 100.0/3, s.SourceDiversity, 1e-9)
	assert.InDelta(t, 0.45*50+0.35*(100.0/3)+0.20*50, s.CTSScore, 1e-9)
}

func TestRunAbortsOnWindowErrorAndSkipsSweep(t *testing.T) {
	companies := &mockCompanyRepo{companies: []models.Company{company(1, "Acme")}}
	collector := &mockMetricsRepo{}
	trends := newMockTrendRepo()
	trends.aggregateErr = func(window string) error {
		if window == "24h" {
			return fmt.Errorf("connection reset")
		}
		return nil
	}

	svc := NewAggregationService(companies, collector, trends, 9, 730, zap.NewNop(), nil)
	err := svc.Run(context.Background(), time.Now().UTC())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "24h")
	// The 1h window was committed before the failure; later windows and the
	// retention sweep were never attempted.
	assert.Equal(t, []string{"1h"}, trends.windowOrder)
	assert.Empty(t, trends.purgeCutoffs)
}

func TestRankSnapshotsOrdersByScoreDescending(t *testing.T) {
	snapshots := []models.TrendSnapshot{
		{CompanyID: 1, CTSScore: 80},
		{CompanyID: 2, CTSScore: 95},
		{CompanyID: 3, CTSScore: 60},
	}

	entries := rankSnapshots(snapshots)

	require.Len(t, entries, 3)
	assert.Equal(t, int64(2), entries[0].CompanyID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, int64(1), entries[1].CompanyID)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, int64(3), entries[2].CompanyID)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestRankSnapshotsTieBreaksOnAscendingCompanyID(t *testing.T) {
	snapshots := []models.TrendSnapshot{
		{CompanyID: 9, CTSScore: 42},
		{CompanyID: 3, CTSScore: 42},
		{CompanyID: 5, CTSScore: 42},
	}

	entries := rankSnapshots(snapshots)

	require.Len(t, entries, 3)
	assert.Equal(t, int64(3), entries[0].CompanyID)
	assert.Equal(t, int64(5), entries[1].CompanyID)
	assert.Equal(t, int64(9), entries[2].CompanyID)
}
