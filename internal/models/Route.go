package models

import (
	"gorm.io/gorm"
)

// Route is the root entity of an analysis run. Every derived record
// (points, turns, signals, assessment, facilities) is scoped to exactly
// one route via RouteID and is recomputed wholesale on re-analysis.
type Route struct {
	gorm.Model

	RouteID     string `json:"route_id" gorm:"uniqueIndex;not null"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`

	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Distance    string `json:"distance"`
	Duration    string `json:"duration"`
	TotalPoints int    `json:"total_points"`
	Status      string `json:"status"` // "pending", "analyzed", "failed"

	// Geometry stored as a WKB LINESTRING (SRID 4326). GeoJSON on the wire.
	Geometry []byte `gorm:"type:bytea" json:"-"`

	// Associations
	Points     []RoutePoint   `gorm:"foreignKey:RouteRef;references:RouteID;constraint:OnDelete:CASCADE;" json:"points,omitempty"`
	SharpTurns []SharpTurn    `gorm:"foreignKey:RouteRef;references:RouteID;constraint:OnDelete:CASCADE;" json:"sharp_turns,omitempty"`
	Signals    []SignalSample `gorm:"foreignKey:RouteRef;references:RouteID;constraint:OnDelete:CASCADE;" json:"signals,omitempty"`
	Facilities []Facility     `gorm:"foreignKey:RouteRef;references:RouteID;constraint:OnDelete:CASCADE;" json:"facilities,omitempty"`
}
