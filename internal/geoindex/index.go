// Package geoindex provides an R-Tree index over a route's facilities for
// nearest-facility queries from the dashboard.
package geoindex

import (
	"math"
	"sync"

	"github.com/dhconnelly/rtreego"

	"route_sentinel/internal/models"
)

const (
	tolerance   = 0.01
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
	earthRadius = 6371.0 // km
)

// spatialItem wraps a facility for R-Tree indexing.
type spatialItem struct {
	facility models.Facility
	rect     *rtreego.Rect
}

var _ rtreego.Spatial = (*spatialItem)(nil)

func (si *spatialItem) Bounds() *rtreego.Rect {
	return si.rect
}

// Index is a thread-safe R-Tree over facility locations.
type Index struct {
	tree *rtreego.Rtree
	mu   sync.RWMutex
}

// New builds an index from a facility list.
func New(facilities []models.Facility) *Index {
	idx := &Index{tree: rtreego.NewTree(dimensions, minChildren, maxChildren)}
	for _, f := range facilities {
		point := rtreego.Point{f.Latitude, f.Longitude}
		rect := point.ToRect(tolerance)
		idx.tree.Insert(&spatialItem{facility: f, rect: rect})
	}
	return idx
}

// Nearest returns up to k facilities closest to the coordinate, nearest
// first, each paired with the great-circle distance in kilometers.
func (idx *Index) Nearest(lat, lng float64, k int) []NearbyFacility {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if k <= 0 {
		return nil
	}
	results := idx.tree.NearestNeighbors(k, rtreego.Point{lat, lng})

	out := make([]NearbyFacility, 0, len(results))
	for _, r := range results {
		item, ok := r.(*spatialItem)
		if !ok {
			continue
		}
		out = append(out, NearbyFacility{
			Facility:   item.facility,
			DistanceKm: haversineKm(lat, lng, item.facility.Latitude, item.facility.Longitude),
		})
	}
	return out
}

// WithinRadius returns all facilities within radiusKm of the coordinate.
func (idx *Index) WithinRadius(lat, lng, radiusKm float64) []NearbyFacility {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	// Over-approximate with a bounding box, then filter by true distance.
	degrees := radiusKm / 111.0
	p := rtreego.Point{lat - degrees, lng - degrees}
	rect, err := rtreego.NewRectFromPoints(p, rtreego.Point{lat + degrees, lng + degrees})
	if err != nil {
		return nil
	}

	out := make([]NearbyFacility, 0)
	for _, r := range idx.tree.SearchIntersect(rect) {
		item, ok := r.(*spatialItem)
		if !ok {
			continue
		}
		d := haversineKm(lat, lng, item.facility.Latitude, item.facility.Longitude)
		if d <= radiusKm {
			out = append(out, NearbyFacility{Facility: item.facility, DistanceKm: d})
		}
	}
	return out
}

// Size returns the number of indexed facilities.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tree.Size()
}

// NearbyFacility pairs a facility with its distance from the query point.
type NearbyFacility struct {
	Facility   models.Facility `json:"facility"`
	DistanceKm float64         `json:"distance_km"`
}

// haversineKm computes the great-circle distance between two coordinates.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}
