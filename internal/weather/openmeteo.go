package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// OpenMeteo implements Source using the Open-Meteo forecast API.
type OpenMeteo struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewOpenMeteo creates an Open-Meteo client.
func NewOpenMeteo(baseURL string, timeout time.Duration, logger *zap.Logger) *OpenMeteo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenMeteo{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Current implements Source.
func (c *OpenMeteo) Current(ctx context.Context, lat, lng float64) (Snapshot, error) {
	params := url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', 4, 64)},
		"longitude": {strconv.FormatFloat(lng, 'f', 4, 64)},
		"current":   {"temperature_2m,weather_code,is_day,wind_speed_10m,wind_direction_10m"},
		"timezone":  {"auto"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Snapshot{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var fr forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return Snapshot{}, fmt.Errorf("decode response: %w", err)
	}
	if fr.Current == nil {
		return Snapshot{}, fmt.Errorf("open-meteo response has no current block")
	}

	cur := fr.Current
	snap := Snapshot{
		Condition:     FromWMO(cur.WeatherCode),
		Latitude:      fr.Latitude,
		Longitude:     fr.Longitude,
		IsDay:         cur.IsDay == 1,
		Temperature:   cur.Temperature,
		WindSpeed:     cur.WindSpeed,
		WindDirection: Compass(cur.WindDirection),
	}
	if t, err := time.Parse("2006-01-02T15:04", cur.Time); err == nil {
		snap.ObservedAt = t
	}

	c.logger.Debug("weather fetched",
		zap.String("condition", snap.Condition.String()),
		zap.Float64("lat", snap.Latitude),
		zap.Float64("lng", snap.Longitude),
		zap.Bool("is_day", snap.IsDay),
	)
	return snap, nil
}

// Open-Meteo API response types.

type forecastResponse struct {
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Current   *currentValues `json:"current"`
}

type currentValues struct {
	Time          string  `json:"time"`
	Temperature   float64 `json:"temperature_2m"`
	WeatherCode   int     `json:"weather_code"`
	IsDay         int     `json:"is_day"`
	WindSpeed     float64 `json:"wind_speed_10m"`
	WindDirection float64 `json:"wind_direction_10m"`
}
