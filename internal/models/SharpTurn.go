package models

import (
	"gorm.io/gorm"
)

// SharpTurn is a turn event derived from route geometry. Produced once per
// analysis run and never mutated afterwards.
type SharpTurn struct {
	gorm.Model

	RouteRef         string  `json:"route_id" gorm:"index;column:route_ref"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Angle            float64 `json:"angle"`             // degrees, [0,180]
	Classification   string  `json:"classification"`    // e.g. "EXTREME BLIND SPOT"
	DangerLevel      string  `json:"danger_level"`      // CRITICAL / EXTREME / HIGH / MEDIUM / LOW
	RecommendedSpeed int     `json:"recommended_speed"` // km/h
	PointIndex       int     `json:"point_index"`       // index into the original point sequence
}
