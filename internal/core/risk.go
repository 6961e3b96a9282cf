package core

import "math"

// Per-item penalty weights. These are fixed contract values shared with the
// report layer; do not tune them without versioning the assessment.
const (
	PenaltyExtremeTurn = 20 // angle >= 90
	PenaltyBlindSpot   = 15 // 80 <= angle < 90
	PenaltySharpDanger = 10 // 70 <= angle < 80
	PenaltyDeadZone    = 8
	PenaltyPoorZone    = 4
)

// BreakdownItem is one row of the auditable scoring breakdown.
type BreakdownItem struct {
	HazardType     string  `json:"hazard_type"`
	Count          int     `json:"count"`
	PenaltyPerItem int     `json:"penalty_per_item"`
	TotalPenalty   int     `json:"total_penalty"`
	PercentOfTotal float64 `json:"percentage_of_total_risk"`
	RiskLevel      string  `json:"risk_level"`
}

// RiskAssessment is the aggregate result of merging all hazard signals into
// a single weighted score. Two scales are exposed on purpose:
// TraditionalScore is bounded 0-100 with higher meaning safer, RiskPoints is
// the unbounded penalty sum with higher meaning more dangerous. Downstream
// consumers reference both by name.
type RiskAssessment struct {
	TotalPenaltyPoints int             `json:"total_penalty_points"`
	RiskPoints         int             `json:"risk_points"`
	TraditionalScore   int             `json:"traditional_score"`
	RiskLevel          string          `json:"risk_level"`
	RiskCategory       string          `json:"risk_category"`
	ColorIndicator     string          `json:"color_indicator"`
	ExtremeTurns       int             `json:"extreme_turns"`
	BlindSpots         int             `json:"blind_spots"`
	SharpDangerTurns   int             `json:"sharp_danger"`
	ModerateTurns      int             `json:"moderate_turns"`
	DeadZones          int             `json:"dead_zones"`
	PoorCoverageZones  int             `json:"poor_coverage_zones"`
	Breakdown          []BreakdownItem `json:"scoring_breakdown"`
}

// riskLevelLadder maps RiskPoints onto level, category and color. Ordered
// most severe first, evaluated top-down, first match wins.
var riskLevelLadder = []struct {
	MinPoints int
	Level     string
	Category  string
	Color     string
}{
	{150, "CRITICAL", "EXTREME RISK", "RED"},
	{100, "HIGH", "HIGH RISK", "ORANGE"},
	{50, "MODERATE", "MODERATE RISK", "YELLOW"},
	{20, "LOW", "LOW RISK", "BLUE"},
	{0, "MINIMAL", "SAFE ROUTE", "GREEN"},
}

// ComputeRiskAssessment merges turn events with network coverage counts into
// a weighted penalty score with a deterministic breakdown. It is a pure
// function: identical inputs always produce an identical assessment, and it
// is recomputed from scratch on every call. Missing signal categories count
// as zero occurrences, never as errors.
func ComputeRiskAssessment(turns []TurnEvent, deadZones, poorZones int) RiskAssessment {
	var extreme, blind, sharpDanger, moderate int
	for _, t := range turns {
		switch {
		case t.Angle >= 90:
			extreme++
		case t.Angle >= 80:
			blind++
		case t.Angle >= 70:
			sharpDanger++
		case t.Angle >= 45:
			moderate++
		}
	}

	total := extreme*PenaltyExtremeTurn +
		blind*PenaltyBlindSpot +
		sharpDanger*PenaltySharpDanger +
		deadZones*PenaltyDeadZone +
		poorZones*PenaltyPoorZone

	traditional := 100 - total
	if traditional < 0 {
		traditional = 0
	}
	if traditional > 100 {
		traditional = 100
	}

	level, category, color := classifyRiskPoints(total)

	breakdown := []BreakdownItem{
		breakdownRow("Extreme Turns (>=90°)", extreme, PenaltyExtremeTurn, total),
		breakdownRow("Blind Spots (80-90°)", blind, PenaltyBlindSpot, total),
		breakdownRow("Sharp Danger Zones (70-80°)", sharpDanger, PenaltySharpDanger, total),
		breakdownRow("Network Dead Zones", deadZones, PenaltyDeadZone, total),
		breakdownRow("Poor Coverage Zones", poorZones, PenaltyPoorZone, total),
	}

	return RiskAssessment{
		TotalPenaltyPoints: total,
		RiskPoints:         total,
		TraditionalScore:   traditional,
		RiskLevel:          level,
		RiskCategory:       category,
		ColorIndicator:     color,
		ExtremeTurns:       extreme,
		BlindSpots:         blind,
		SharpDangerTurns:   sharpDanger,
		ModerateTurns:      moderate,
		DeadZones:          deadZones,
		PoorCoverageZones:  poorZones,
		Breakdown:          breakdown,
	}
}

func classifyRiskPoints(points int) (level, category, color string) {
	for _, r := range riskLevelLadder {
		if points >= r.MinPoints {
			return r.Level, r.Category, r.Color
		}
	}
	// Negative totals cannot occur; keep the safest rung as a fallthrough.
	last := riskLevelLadder[len(riskLevelLadder)-1]
	return last.Level, last.Category, last.Color
}

func breakdownRow(hazard string, count, perItem, total int) BreakdownItem {
	rowTotal := count * perItem
	percent := 0.0
	if total > 0 {
		percent = math.Round(float64(rowTotal)/float64(total)*1000) / 10
	}
	level := "NONE"
	if count > 0 {
		level, _, _ = classifyRiskPoints(rowTotal)
	}
	return BreakdownItem{
		HazardType:     hazard,
		Count:          count,
		PenaltyPerItem: perItem,
		TotalPenalty:   rowTotal,
		PercentOfTotal: percent,
		RiskLevel:      level,
	}
}
