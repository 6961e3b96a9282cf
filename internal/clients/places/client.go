package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client provides access to the Google Places nearby-search and details
// endpoints. Only the fields the facility pipeline consumes are decoded.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Google Places API client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com/maps/api/place",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Place is one nearby-search result.
type Place struct {
	PlaceID   string   `json:"place_id"`
	Name      string   `json:"name"`
	Vicinity  string   `json:"vicinity"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Rating    float64  `json:"rating"`
	Types     []string `json:"types"`
}

// OpeningPeriod is a raw open/close boundary pair from place details. A
// single period with no close boundary means the place never closes.
type OpeningPeriod struct {
	Open  string
	Close string
}

// Details carries the enrichment fields from a per-place details lookup.
type Details struct {
	Phone   string
	Website string
	Periods []OpeningPeriod
}

type nearbyResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID  string `json:"place_id"`
		Name     string `json:"name"`
		Vicinity string `json:"vicinity"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		Rating float64  `json:"rating"`
		Types  []string `json:"types"`
	} `json:"results"`
}

type detailsResponse struct {
	Status string `json:"status"`
	Result struct {
		FormattedPhoneNumber string `json:"formatted_phone_number"`
		Website              string `json:"website"`
		OpeningHours         struct {
			Periods []struct {
				Open *struct {
					Time string `json:"time"`
				} `json:"open"`
				Close *struct {
					Time string `json:"time"`
				} `json:"close"`
			} `json:"periods"`
		} `json:"opening_hours"`
	} `json:"result"`
}

// NearbySearch returns places of the given type within radius meters of the
// coordinates. Results without coordinates are dropped.
func (c *Client) NearbySearch(ctx context.Context, lat, lng float64, radius int, placeType string) ([]Place, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%.6f,%.6f", lat, lng))
	params.Set("radius", fmt.Sprintf("%d", radius))
	params.Set("type", placeType)
	params.Set("language", "en")
	params.Set("key", c.apiKey)

	var decoded nearbyResponse
	if err := c.get(ctx, "/nearbysearch/json", params, &decoded); err != nil {
		return nil, err
	}
	if decoded.Status != "OK" && decoded.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places API status %s", decoded.Status)
	}

	out := make([]Place, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		if r.Geometry.Location.Lat == 0 && r.Geometry.Location.Lng == 0 {
			continue
		}
		out = append(out, Place{
			PlaceID:   r.PlaceID,
			Name:      r.Name,
			Vicinity:  r.Vicinity,
			Latitude:  r.Geometry.Location.Lat,
			Longitude: r.Geometry.Location.Lng,
			Rating:    r.Rating,
			Types:     r.Types,
		})
	}
	return out, nil
}

// GetDetails fetches enrichment fields for one place.
func (c *Client) GetDetails(ctx context.Context, placeID string) (*Details, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", strings.Join([]string{
		"formatted_phone_number", "website", "opening_hours",
	}, ","))
	params.Set("language", "en")
	params.Set("key", c.apiKey)

	var decoded detailsResponse
	if err := c.get(ctx, "/details/json", params, &decoded); err != nil {
		return nil, err
	}
	if decoded.Status != "OK" {
		return nil, fmt.Errorf("place details status %s", decoded.Status)
	}

	details := &Details{
		Phone:   decoded.Result.FormattedPhoneNumber,
		Website: decoded.Result.Website,
	}
	for _, p := range decoded.Result.OpeningHours.Periods {
		period := OpeningPeriod{}
		if p.Open != nil {
			period.Open = p.Open.Time
		}
		if p.Close != nil {
			period.Close = p.Close.Time
		}
		details.Periods = append(details.Periods, period)
	}
	return details, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	requestURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
