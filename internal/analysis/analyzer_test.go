package analysis

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route_sentinel/internal/clients/coverage"
	"route_sentinel/internal/core"
	"route_sentinel/internal/models"
)

func offlineAnalyzer() *Analyzer {
	return &Analyzer{
		coverage: coverage.NewEstimator(),
		lastCall: make(map[string]time.Time),
		minDelay: time.Millisecond,
	}
}

func straightTrack(n int) []core.Point {
	points := make([]core.Point, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, core.Point{Latitude: -1.29, Longitude: 36.82 + float64(i)*0.001})
	}
	return points
}

func TestValidatePointsRejectsShortTracks(t *testing.T) {
	assert.Error(t, ValidatePoints(nil))
	assert.Error(t, ValidatePoints([]core.Point{{Latitude: 1, Longitude: 1}}))
	assert.NoError(t, ValidatePoints(straightTrack(2)))
}

func TestValidatePointsRejectsOutOfBounds(t *testing.T) {
	cases := []core.Point{
		{Latitude: 91, Longitude: 0},
		{Latitude: -91, Longitude: 0},
		{Latitude: 0, Longitude: 181},
		{Latitude: 0, Longitude: -181},
		{Latitude: math.NaN(), Longitude: 0},
	}
	for _, bad := range cases {
		err := ValidatePoints([]core.Point{{Latitude: 0, Longitude: 0}, bad})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "out of bounds")
	}
}

func TestCollectCoverageIsDeterministic(t *testing.T) {
	a := offlineAnalyzer()
	points := straightTrack(100)

	first, dead1, poor1 := a.collectCoverage("r-1", points)
	second, dead2, poor2 := a.collectCoverage("r-1", points)

	require.Equal(t, len(first), len(second))
	assert.Equal(t, dead1, dead2)
	assert.Equal(t, poor1, poor2)
	for i := range first {
		assert.Equal(t, first[i].Severity, second[i].Severity)
		assert.Equal(t, first[i].Metadata, second[i].Metadata)
	}
}

func TestCollectCoverageCountsMatchSeverities(t *testing.T) {
	a := offlineAnalyzer()
	signals, dead, poor := a.collectCoverage("r-1", straightTrack(200))

	require.NotEmpty(t, signals)
	assert.LessOrEqual(t, len(signals), core.CoverageCallCap)

	var high, moderate int
	for _, s := range signals {
		assert.Equal(t, models.SignalKindNetwork, s.Kind)
		assert.Equal(t, "r-1", s.RouteRef)

		var reading coverage.Reading
		require.NoError(t, json.Unmarshal([]byte(s.Metadata), &reading))

		switch s.Severity {
		case "high":
			high++
			assert.True(t, reading.IsDeadZone)
		case "moderate":
			moderate++
			assert.True(t, reading.IsPoorCoverage)
		}
	}
	assert.Equal(t, dead, high)
	assert.Equal(t, poor, moderate)
}

func TestThrottleSpacesCalls(t *testing.T) {
	a := offlineAnalyzer()
	a.minDelay = 20 * time.Millisecond

	start := time.Now()
	a.throttle("provider")
	a.throttle("provider")
	a.throttle("provider")
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
}

func TestThrottleProvidersAreIndependent(t *testing.T) {
	a := offlineAnalyzer()
	a.minDelay = 50 * time.Millisecond

	start := time.Now()
	a.throttle("one")
	a.throttle("two")
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 40*time.Millisecond)
}
