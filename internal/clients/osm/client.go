package osm

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/serjvanilla/go-overpass"
)

// Client queries the OSM Overpass API for amenities near route points. It is
// the second facility source next to Google Places; records from both are
// merged by external ID downstream.
type Client struct {
	client overpass.Client
}

// NewClient creates an Overpass client against the given endpoint. The
// timeout bounds each HTTP request; the overpass library itself takes no
// context.
func NewClient(endpoint string, timeout time.Duration) *Client {
	httpClient := &http.Client{Timeout: timeout}
	return &Client{
		client: overpass.NewWithSettings(endpoint, 2, httpClient),
	}
}

// Amenity is one OSM node carrying an amenity tag.
type Amenity struct {
	ExternalID   string  `json:"external_id"`
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Phone        string  `json:"phone"`
	Website      string  `json:"website"`
	OpeningHours string  `json:"opening_hours"`
}

// FindAmenities returns amenity nodes of the given kind within radius meters
// of the coordinates. OSM node IDs are namespaced so they never collide with
// Google place IDs in the merge.
func (c *Client) FindAmenities(ctx context.Context, lat, lng float64, radiusMeters int, amenity string) ([]Amenity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		[out:json];
		(
			node["amenity"="%s"](around:%d,%.6f,%.6f);
		);
		out body;
	`, amenity, radiusMeters, lat, lng)

	result, err := c.client.Query(query)
	if err != nil {
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}

	amenities := make([]Amenity, 0, len(result.Nodes))
	for _, node := range result.Nodes {
		if node == nil {
			continue
		}
		amenities = append(amenities, Amenity{
			ExternalID:   "osm:" + strconv.FormatInt(node.ID, 10),
			Name:         node.Tags["name"],
			Latitude:     node.Lat,
			Longitude:    node.Lon,
			Phone:        node.Tags["phone"],
			Website:      node.Tags["website"],
			OpeningHours: node.Tags["opening_hours"],
		})
	}
	return amenities, nil
}

// AmenityFor maps a facility category onto the OSM amenity tag value.
func AmenityFor(category string) (string, bool) {
	switch category {
	case "hospital":
		return "hospital", true
	case "police":
		return "police", true
	case "fire_station":
		return "fire_station", true
	case "gas_station":
		return "fuel", true
	case "school":
		return "school", true
	case "restaurant":
		return "restaurant", true
	default:
		return "", false
	}
}
