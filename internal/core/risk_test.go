package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turnsWithAngles(angles ...float64) []TurnEvent {
	turns := make([]TurnEvent, len(angles))
	for i, a := range angles {
		turns[i] = TurnEvent{Angle: a}
	}
	return turns
}

func TestComputeRiskAssessmentEmptyInputs(t *testing.T) {
	a := ComputeRiskAssessment(nil, 0, 0)

	assert.Equal(t, 0, a.TotalPenaltyPoints)
	assert.Equal(t, 0, a.RiskPoints)
	assert.Equal(t, 100, a.TraditionalScore)
	assert.Equal(t, "MINIMAL", a.RiskLevel)
	assert.Equal(t, "SAFE ROUTE", a.RiskCategory)
	assert.Equal(t, "GREEN", a.ColorIndicator)
	for _, row := range a.Breakdown {
		assert.Equal(t, 0, row.Count)
		assert.Equal(t, 0, row.TotalPenalty)
		assert.Equal(t, 0.0, row.PercentOfTotal)
		assert.Equal(t, "NONE", row.RiskLevel)
	}
}

func TestComputeRiskAssessmentWorkedExample(t *testing.T) {
	// 3 extreme turns, 2 dead zones, 1 poor zone:
	// 3*20 + 2*8 + 1*4 = 80 -> score 20, MODERATE.
	a := ComputeRiskAssessment(turnsWithAngles(95, 110, 92), 2, 1)

	assert.Equal(t, 80, a.TotalPenaltyPoints)
	assert.Equal(t, 80, a.RiskPoints)
	assert.Equal(t, 20, a.TraditionalScore)
	assert.Equal(t, "MODERATE", a.RiskLevel)
	assert.Equal(t, "MODERATE RISK", a.RiskCategory)
	assert.Equal(t, "YELLOW", a.ColorIndicator)
	assert.Equal(t, 3, a.ExtremeTurns)
	assert.Equal(t, 2, a.DeadZones)
	assert.Equal(t, 1, a.PoorCoverageZones)
}

func TestComputeRiskAssessmentLevelLadder(t *testing.T) {
	cases := []struct {
		deadZones int // 8 points each
		level     string
		color     string
	}{
		{0, "MINIMAL", "GREEN"},   // 0
		{3, "LOW", "BLUE"},        // 24
		{7, "MODERATE", "YELLOW"}, // 56
		{13, "HIGH", "ORANGE"},    // 104
		{20, "CRITICAL", "RED"},   // 160
	}
	for _, c := range cases {
		a := ComputeRiskAssessment(nil, c.deadZones, 0)
		assert.Equal(t, c.level, a.RiskLevel, "dead zones %d", c.deadZones)
		assert.Equal(t, c.color, a.ColorIndicator, "dead zones %d", c.deadZones)
	}
}

func TestComputeRiskAssessmentScoreClampedAtZero(t *testing.T) {
	a := ComputeRiskAssessment(turnsWithAngles(95, 95, 95, 95, 95, 95, 95, 95), 0, 0)
	assert.Equal(t, 160, a.RiskPoints)
	assert.Equal(t, 0, a.TraditionalScore)
}

func TestComputeRiskAssessmentModerateTurnsCarryNoPenalty(t *testing.T) {
	a := ComputeRiskAssessment(turnsWithAngles(50, 60, 65), 0, 0)
	assert.Equal(t, 3, a.ModerateTurns)
	assert.Equal(t, 0, a.TotalPenaltyPoints)
	assert.Equal(t, 100, a.TraditionalScore)
}

func TestComputeRiskAssessmentIdempotent(t *testing.T) {
	turns := turnsWithAngles(95, 85, 75, 50)
	first := ComputeRiskAssessment(turns, 4, 3)
	second := ComputeRiskAssessment(turns, 4, 3)
	assert.Equal(t, first, second)
}

func TestBreakdownPercentagesSumToHundred(t *testing.T) {
	a := ComputeRiskAssessment(turnsWithAngles(95, 95, 95), 2, 1)
	require.Greater(t, a.TotalPenaltyPoints, 0)

	sum := 0.0
	for _, row := range a.Breakdown {
		sum += row.PercentOfTotal
	}
	assert.InDelta(t, 100, sum, 0.5)
}

func TestBreakdownRowsMatchWeights(t *testing.T) {
	a := ComputeRiskAssessment(turnsWithAngles(95, 85, 75), 1, 1)

	wantPerItem := []int{20, 15, 10, 8, 4}
	require.Len(t, a.Breakdown, len(wantPerItem))
	for i, row := range a.Breakdown {
		assert.Equal(t, wantPerItem[i], row.PenaltyPerItem)
		assert.Equal(t, 1, row.Count)
		assert.Equal(t, wantPerItem[i], row.TotalPenalty)
	}
}
