package geoindex

import (
	"testing"

	"github.com/dhconnelly/rtreego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route_sentinel/internal/models"
)

func testFacilities() []models.Facility {
	return []models.Facility{
		{ExternalID: "a", Name: "Central Hospital", Category: "hospital", Latitude: -1.2921, Longitude: 36.8219},
		{ExternalID: "b", Name: "Westlands Police", Category: "police", Latitude: -1.2673, Longitude: 36.8111},
		{ExternalID: "c", Name: "Thika Fuel Stop", Category: "gas_station", Latitude: -1.0333, Longitude: 37.0693},
		{ExternalID: "d", Name: "Nakuru Clinic", Category: "hospital", Latitude: -0.3031, Longitude: 36.0800},
	}
}

func TestSpatialItemBounds(t *testing.T) {
	item := &spatialItem{
		facility: models.Facility{ExternalID: "x", Latitude: -1.29, Longitude: 36.82},
		rect:     rtreego.Point{-1.29, 36.82}.ToRect(tolerance),
	}
	require.NotNil(t, item.Bounds())
	assert.Same(t, item.rect, item.Bounds())
}

func TestNearestOrdersByDistance(t *testing.T) {
	idx := New(testFacilities())
	require.Equal(t, 4, idx.Size())

	// Query from central Nairobi: the CBD hospital is closer than Westlands.
	got := idx.Nearest(-1.2900, 36.8200, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Facility.ExternalID)
	assert.Equal(t, "b", got[1].Facility.ExternalID)
	assert.Less(t, got[0].DistanceKm, got[1].DistanceKm)
}

func TestNearestCapsAtIndexSize(t *testing.T) {
	idx := New(testFacilities())
	got := idx.Nearest(-1.2900, 36.8200, 50)
	assert.Len(t, got, 4)
}

func TestNearestZeroK(t *testing.T) {
	idx := New(testFacilities())
	assert.Empty(t, idx.Nearest(-1.29, 36.82, 0))
}

func TestWithinRadiusFiltersByTrueDistance(t *testing.T) {
	idx := New(testFacilities())

	// 10 km around the CBD covers the two Nairobi facilities only.
	got := idx.WithinRadius(-1.2900, 36.8200, 10)
	require.Len(t, got, 2)
	for _, nf := range got {
		assert.LessOrEqual(t, nf.DistanceKm, 10.0)
	}
}

func TestEmptyIndex(t *testing.T) {
	idx := New(nil)
	assert.Equal(t, 0, idx.Size())
	assert.Empty(t, idx.Nearest(0, 0, 3))
	assert.Empty(t, idx.WithinRadius(0, 0, 100))
}

func TestHaversineKnownDistance(t *testing.T) {
	// Nairobi CBD to Westlands is roughly 3 km.
	d := haversineKm(-1.2921, 36.8219, -1.2673, 36.8111)
	assert.InDelta(t, 3.0, d, 0.5)
}
