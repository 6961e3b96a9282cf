package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client provides access to the OpenWeatherMap current-conditions API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new OpenWeatherMap API client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Configured reports whether an API key is present. Without one the weather
// stage is skipped entirely and contributes no signals.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Observation is the normalized slice of an OpenWeatherMap response that the
// analysis pipeline consumes.
type Observation struct {
	Temperature float64 `json:"temp"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Main        string  `json:"main"`
	Description string  `json:"description"`
}

type currentResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// GetCurrent retrieves current weather conditions for the given coordinates.
func (c *Client) GetCurrent(ctx context.Context, lat, lng float64) (*Observation, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.6f", lat))
	params.Set("lon", fmt.Sprintf("%.6f", lng))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	requestURL := fmt.Sprintf("%s/data/2.5/weather?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("rate limit exceeded")
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("invalid API key")
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var decoded currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	obs := &Observation{
		Temperature: decoded.Main.Temp,
		Humidity:    decoded.Main.Humidity,
		WindSpeed:   decoded.Wind.Speed,
	}
	if len(decoded.Weather) > 0 {
		obs.Main = decoded.Weather[0].Main
		obs.Description = decoded.Weather[0].Description
	}
	return obs, nil
}

// Severity maps a weather condition group onto the normalized signal
// severity consumed by risk aggregation.
func Severity(main string) string {
	switch main {
	case "Thunderstorm", "Tornado", "Squall":
		return "high"
	case "Rain", "Snow", "Drizzle", "Fog", "Mist", "Dust", "Sand", "Haze":
		return "moderate"
	default:
		return "low"
	}
}
