package traffic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"
)

// Client provides access to the Google Directions API with live traffic.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Directions traffic client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com/maps/api/directions/json",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// SegmentConditions describes live traffic on one route segment.
type SegmentConditions struct {
	CongestionLevel  string  `json:"congestion_level"` // HEAVY / MODERATE / LIGHT / FREE_FLOW
	TravelTimeIndex  float64 `json:"travel_time_index"`
	FreeFlowSpeedKmh float64 `json:"free_flow_speed"`
	CurrentSpeedKmh  float64 `json:"current_speed"`
	DelaySeconds     int     `json:"traffic_delay_seconds"`
	DelayPercent     float64 `json:"traffic_delay_percent"`
	DistanceMeters   int     `json:"distance_meters"`
	StartAddress     string  `json:"start_address"`
	EndAddress       string  `json:"end_address"`
	DistanceText     string  `json:"distance_text"`
	DurationText     string  `json:"duration_text"`
	OverviewPolyline string  `json:"overview_polyline"`
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			StartAddress string `json:"start_address"`
			EndAddress   string `json:"end_address"`
			Distance     struct {
				Value int    `json:"value"`
				Text  string `json:"text"`
			} `json:"distance"`
			Duration struct {
				Value int    `json:"value"`
				Text  string `json:"text"`
			} `json:"duration"`
			DurationInTraffic struct {
				Value int `json:"value"`
			} `json:"duration_in_traffic"`
		} `json:"legs"`
	} `json:"routes"`
}

// GetSegment queries driving directions with departure_time=now between two
// points and reduces the leg to normalized congestion metrics.
func (c *Client) GetSegment(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (*SegmentConditions, error) {
	params := url.Values{}
	params.Set("origin", fmt.Sprintf("%.6f,%.6f", fromLat, fromLng))
	params.Set("destination", fmt.Sprintf("%.6f,%.6f", toLat, toLng))
	params.Set("mode", "driving")
	params.Set("departure_time", "now")
	params.Set("traffic_model", "best_guess")
	params.Set("key", c.apiKey)

	requestURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if decoded.Status != "OK" || len(decoded.Routes) == 0 || len(decoded.Routes[0].Legs) == 0 {
		return nil, fmt.Errorf("directions status %s", decoded.Status)
	}

	leg := decoded.Routes[0].Legs[0]
	normal := leg.Duration.Value
	inTraffic := leg.DurationInTraffic.Value
	if inTraffic == 0 {
		inTraffic = normal
	}
	if normal <= 0 {
		return nil, fmt.Errorf("directions returned zero duration")
	}

	delay := inTraffic - normal
	delayPercent := float64(delay) / float64(normal) * 100

	var freeFlow, current float64
	if leg.Distance.Value > 0 {
		freeFlow = float64(leg.Distance.Value) / float64(normal) * 3.6
		current = float64(leg.Distance.Value) / float64(inTraffic) * 3.6
	}

	return &SegmentConditions{
		CongestionLevel:  congestionLevel(delayPercent),
		TravelTimeIndex:  math.Round(float64(inTraffic)/float64(normal)*100) / 100,
		FreeFlowSpeedKmh: math.Round(freeFlow*10) / 10,
		CurrentSpeedKmh:  math.Round(current*10) / 10,
		DelaySeconds:     delay,
		DelayPercent:     math.Round(delayPercent*10) / 10,
		DistanceMeters:   leg.Distance.Value,
		StartAddress:     leg.StartAddress,
		EndAddress:       leg.EndAddress,
		DistanceText:     leg.Distance.Text,
		DurationText:     leg.Duration.Text,
		OverviewPolyline: decoded.Routes[0].OverviewPolyline.Points,
	}, nil
}

// congestionLevel buckets the traffic delay percentage.
func congestionLevel(delayPercent float64) string {
	switch {
	case delayPercent > 50:
		return "HEAVY"
	case delayPercent > 25:
		return "MODERATE"
	case delayPercent > 10:
		return "LIGHT"
	default:
		return "FREE_FLOW"
	}
}
