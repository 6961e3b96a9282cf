package core

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampledFrom(points []Point) []Sampled {
	out := make([]Sampled, len(points))
	for i, p := range points {
		out[i] = Sampled{Point: p, SourceIndex: i}
	}
	return out
}

func TestBearingCardinalDirections(t *testing.T) {
	origin := Point{0, 0}
	assert.InDelta(t, 0, Bearing(origin, Point{1, 0}), 1e-9, "due north")
	assert.InDelta(t, 90, Bearing(origin, Point{0, 1}), 1e-9, "due east")
	assert.InDelta(t, 180, Bearing(origin, Point{-1, 0}), 1e-9, "due south")
	assert.InDelta(t, 270, Bearing(origin, Point{0, -1}), 1e-9, "due west")
}

func TestTurnAngleCollinearPointsIsZero(t *testing.T) {
	angle := TurnAngle(Point{0, 0}, Point{0, 1}, Point{0, 2})
	assert.InDelta(t, 0, angle, 1e-9)
}

func TestTurnAngleFullReversalIs180(t *testing.T) {
	angle := TurnAngle(Point{0, 0}, Point{0, 1}, Point{0, 0})
	assert.InDelta(t, 180, angle, 1e-9)
}

func TestTurnAngleRightAngleOnEquator(t *testing.T) {
	// East along the equator, then due north: exactly 90 degrees.
	angle := TurnAngle(Point{0, 0}, Point{0, 1}, Point{1, 1})
	assert.InDelta(t, 90, angle, 1e-9)
}

func TestClassifyTurnLadder(t *testing.T) {
	cases := []struct {
		angle          float64
		classification string
		dangerLevel    string
		speed          int
	}{
		{90, "EXTREME BLIND SPOT", "CRITICAL", 15},
		{120, "EXTREME BLIND SPOT", "CRITICAL", 15},
		{89.9, "HIGH-RISK BLIND SPOT", "EXTREME", 20},
		{80, "HIGH-RISK BLIND SPOT", "EXTREME", 20},
		{79.9, "BLIND SPOT", "HIGH", 25},
		{70, "BLIND SPOT", "HIGH", 25},
		{69.9, "HIGH-ANGLE TURN", "MEDIUM", 30},
		{60, "HIGH-ANGLE TURN", "MEDIUM", 30},
		{59.9, "SHARP TURN", "LOW", 40},
		{45, "SHARP TURN", "LOW", 40},
	}
	for _, c := range cases {
		classification, dangerLevel, speed, ok := ClassifyTurn(c.angle)
		require.True(t, ok, "angle %v", c.angle)
		assert.Equal(t, c.classification, classification, "angle %v", c.angle)
		assert.Equal(t, c.dangerLevel, dangerLevel, "angle %v", c.angle)
		assert.Equal(t, c.speed, speed, "angle %v", c.angle)
	}
}

func TestClassifyTurnBelowThresholdNotReported(t *testing.T) {
	for _, angle := range []float64{0, 10, 30, 44.9} {
		_, _, _, ok := ClassifyTurn(angle)
		assert.False(t, ok, "angle %v", angle)
	}
}

func TestClassifyTurnSeverityMonotonic(t *testing.T) {
	rank := map[string]int{"": 0, "LOW": 1, "MEDIUM": 2, "HIGH": 3, "EXTREME": 4, "CRITICAL": 5}
	prev := 0
	for angle := 0.0; angle <= 180; angle += 0.1 {
		_, dangerLevel, _, _ := ClassifyTurn(angle)
		cur := rank[dangerLevel]
		assert.GreaterOrEqual(t, cur, prev, "angle %v", angle)
		prev = cur
	}
}

func TestDetectSharpTurnsTooFewPoints(t *testing.T) {
	assert.Empty(t, DetectSharpTurns(nil))
	assert.Empty(t, DetectSharpTurns(sampledFrom([]Point{{0, 0}})))
	assert.Empty(t, DetectSharpTurns(sampledFrom([]Point{{0, 0}, {0, 1}})))
}

func TestDetectSharpTurnsStraightLineEmitsNothing(t *testing.T) {
	turns := DetectSharpTurns(sampledFrom([]Point{{0, 0}, {0, 1}, {0, 2}}))
	assert.Empty(t, turns)
}

func TestDetectSharpTurnsRightAngle(t *testing.T) {
	turns := DetectSharpTurns(sampledFrom([]Point{{0, 0}, {0, 1}, {1, 1}}))
	require.Len(t, turns, 1)
	assert.Equal(t, "EXTREME BLIND SPOT", turns[0].Classification)
	assert.Equal(t, "CRITICAL", turns[0].DangerLevel)
	assert.Equal(t, 15, turns[0].RecommendedSpeed)
	assert.Equal(t, 1, turns[0].SourceIndex)
	assert.InDelta(t, 90, turns[0].Angle, 0.01)
}

func TestDetectSharpTurnsSkipsMalformedPoint(t *testing.T) {
	pts := []Point{{0, 0}, {0, 1}, {math.NaN(), 1}, {1, 2}, {1, 3}, {2, 3}}
	turns := DetectSharpTurns(sampledFrom(pts))
	// The triples touching the NaN vertex are skipped, the rest survive.
	for _, turn := range turns {
		assert.False(t, math.IsNaN(turn.Angle))
	}
}

func TestDetectSharpTurnsSortedDescendingAndCapped(t *testing.T) {
	// Zigzag with alternating reversals: every interior vertex turns ~180.
	pts := make([]Point, 120)
	for i := range pts {
		pts[i] = Point{Latitude: 0, Longitude: float64(i%2) * 0.01}
	}
	turns := DetectSharpTurns(sampledFrom(pts))
	require.Len(t, turns, MaxReportedTurns)
	assert.True(t, sort.SliceIsSorted(turns, func(i, j int) bool {
		return turns[i].Angle > turns[j].Angle
	}))
}
