package models

import (
	"gorm.io/gorm"
)

// Facility is a point-of-interest record (hospital, police station, fuel
// stop, ...) discovered along the route. ExternalID is the dedup key across
// overlapping searches; per route only one row exists per external ID.
type Facility struct {
	gorm.Model

	RouteRef   string  `json:"route_id" gorm:"index:idx_facility_route_ext;column:route_ref"`
	ExternalID string  `json:"external_id" gorm:"index:idx_facility_route_ext,unique"`
	Name       string  `json:"name"`
	Category   string  `json:"category" gorm:"index"` // hospital, police, fire_station, gas_station, school, restaurant
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Address    string  `json:"address"`
	Phone      string  `json:"phone"`
	Website    string  `json:"website"`
	Rating     float64 `json:"rating"`
	Is24x7     bool    `json:"is_24x7"`
	Source     string  `json:"source"`          // "google_places" or "overpass"
	OrderSeen  int     `json:"discovery_order"` // first-seen position, cap tie-break
}
