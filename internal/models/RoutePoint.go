package models

import (
	"gorm.io/gorm"
)

// RoutePoint is one ingested GPS coordinate. Seq preserves the original
// ordering of the uploaded track; points are immutable once stored.
type RoutePoint struct {
	gorm.Model

	RouteRef  string  `json:"route_id" gorm:"index;column:route_ref"`
	Seq       int     `json:"seq"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
