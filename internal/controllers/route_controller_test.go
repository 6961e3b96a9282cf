package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route_sentinel/internal/core"
)

func TestPointsToWKBRoundTrip(t *testing.T) {
	points := []core.Point{
		{Latitude: -1.2921, Longitude: 36.8219},
		{Latitude: -1.2800, Longitude: 36.8300},
		{Latitude: -1.2700, Longitude: 36.8400},
	}

	wkbBytes, err := pointsToWKB(points)
	require.NoError(t, err)
	require.NotEmpty(t, wkbBytes)

	geoJSON, err := convertWKBToGeoJSON(wkbBytes)
	require.NoError(t, err)
	assert.Contains(t, geoJSON, `"LineString"`)
	assert.Contains(t, geoJSON, "36.8219")
}

func TestConvertWKBToGeoJSONEmpty(t *testing.T) {
	geoJSON, err := convertWKBToGeoJSON(nil)
	require.NoError(t, err)
	assert.Empty(t, geoJSON)
}

func TestTrackLengthKm(t *testing.T) {
	// Nairobi CBD to Westlands, roughly 3 km.
	points := []core.Point{
		{Latitude: -1.2921, Longitude: 36.8219},
		{Latitude: -1.2673, Longitude: 36.8111},
	}
	assert.InDelta(t, 3.0, trackLengthKm(points), 0.5)

	assert.Zero(t, trackLengthKm(points[:1]))
	assert.Zero(t, trackLengthKm(nil))
}
