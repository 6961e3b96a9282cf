package models

import (
	"gorm.io/gorm"
)

// Signal kinds produced by the collaborator adapters.
const (
	SignalKindNetwork       = "network"
	SignalKindWeather       = "weather"
	SignalKindEnvironmental = "environmental"
)

// SignalSample is a normalized external-risk observation at a sampled route
// point. Vendor adapters translate their JSON into this shape; the risk
// aggregation only ever sees SignalSamples, never raw vendor payloads.
type SignalSample struct {
	gorm.Model

	RouteRef  string  `json:"route_id" gorm:"index;column:route_ref"`
	Kind      string  `json:"signal_kind" gorm:"index"` // network | weather | environmental
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Severity  string  `json:"severity"`
	Metadata  string  `json:"metadata" gorm:"type:text"` // vendor detail, JSON encoded
}
