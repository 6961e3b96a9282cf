package models

import (
	"gorm.io/gorm"
)

// RiskAssessment is the aggregate scoring result for a route. It is always
// derived fresh from the stored turns and signals, never patched in place.
// Both scales are kept deliberately: TraditionalScore (0-100, higher=safer)
// and RiskPoints (unbounded, higher=more dangerous) are referenced by name
// by downstream consumers.
type RiskAssessment struct {
	gorm.Model

	RouteRef           string `json:"route_id" gorm:"uniqueIndex;column:route_ref"`
	TotalPenaltyPoints int    `json:"total_penalty_points"`
	RiskPoints         int    `json:"risk_points"`
	TraditionalScore   int    `json:"traditional_score"`
	RiskLevel          string `json:"risk_level"`         // CRITICAL / HIGH / MODERATE / LOW / MINIMAL
	RiskCategory       string `json:"risk_category"`      // e.g. "EXTREME RISK"
	ColorIndicator     string `json:"color_indicator"`    // RED / ORANGE / YELLOW / BLUE / GREEN
	Breakdown          string `json:"-" gorm:"type:text"` // scoring breakdown, JSON encoded
}
