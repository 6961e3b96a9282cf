package models

import (
	"gorm.io/gorm"
)

// APICallLog records one outbound call to a third-party provider so that
// quota usage per route can be audited after the fact.
type APICallLog struct {
	gorm.Model

	RouteRef     string  `json:"route_id" gorm:"index;column:route_ref"`
	Provider     string  `json:"provider" gorm:"index"` // openweather, google_places, google_traffic, overpass
	Endpoint     string  `json:"endpoint"`
	StatusCode   int     `json:"status_code"`
	ResponseTime float64 `json:"response_time"` // seconds
	Success      bool    `json:"success"`
	ErrorMessage string  `json:"error_message"`
}
