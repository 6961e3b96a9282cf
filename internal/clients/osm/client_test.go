package osm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAmenitiesHonorsCancellation(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FindAmenities(ctx, -1.29, 36.82, 500, "hospital")
	require.ErrorIs(t, err, context.Canceled)
}

func TestAmenityFor(t *testing.T) {
	cases := map[string]string{
		"hospital":     "hospital",
		"police":       "police",
		"fire_station": "fire_station",
		"gas_station":  "fuel",
		"school":       "school",
		"restaurant":   "restaurant",
	}
	for category, want := range cases {
		got, ok := AmenityFor(category)
		require.True(t, ok, category)
		assert.Equal(t, want, got)
	}

	_, ok := AmenityFor("casino")
	assert.False(t, ok)
}
