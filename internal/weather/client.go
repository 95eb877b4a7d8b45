// Package weather wraps the OpenWeatherMap current-weather and geocoding
// APIs behind a cached lookup client.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultHTTPTimeout = 10 * time.Second

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrUnavailable      = errors.New("weather data unavailable")
)

// Indian postal PIN codes are exactly six digits; everything else is
// treated as a place name and geocoded first.
var pinPattern = regexp.MustCompile(`^\d{6}$`)

type Reading struct {
	LocationName string  `json:"locationName"`
	TemperatureC float64 `json:"temperatureC"`
	Condition    string  `json:"conditionText"`
	Description  string  `json:"description"`
	WindSpeedMS  float64 `json:"windSpeedMS"`
	HumidityPct  int     `json:"humidityPercent"`
}

type Client struct {
	apiKey   string
	baseURL  string
	geoURL   string
	http     *http.Client
	redis    *redis.Client
	cacheTTL time.Duration
}

func NewClient(apiKey, baseURL, geoURL string, redisClient *redis.Client, cacheTTL time.Duration) *Client {
	return &Client{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		geoURL:   strings.TrimRight(geoURL, "/"),
		http:     &http.Client{Timeout: defaultHTTPTimeout},
		redis:    redisClient,
		cacheTTL: cacheTTL,
	}
}

// CurrentByQuery resolves a city name or six-digit PIN code to a current
// weather reading. PIN codes skip geocoding and hit the zip endpoint
// directly, scoped to IN like the portal always was.
func (c *Client) CurrentByQuery(ctx context.Context, location string) (Reading, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return Reading{}, ErrLocationNotFound
	}

	cacheKey := weatherQueryKey(location)
	if reading, ok := c.cachedReading(ctx, cacheKey); ok {
		return reading, nil
	}

	var reading Reading
	var err error
	if pinPattern.MatchString(location) {
		query := url.Values{}
		query.Set("zip", location+",IN")
		reading, err = c.fetchCurrent(ctx, query)
	} else {
		var lat, lon float64
		lat, lon, err = c.geocode(ctx, location)
		if err == nil {
			reading, err = c.fetchByCoords(ctx, lat, lon)
		}
	}
	if err != nil {
		return Reading{}, err
	}

	c.storeReading(ctx, cacheKey, reading)
	return reading, nil
}

func (c *Client) CurrentByCoords(ctx context.Context, lat, lon float64) (Reading, error) {
	cacheKey := weatherCoordKey(lat, lon)
	if reading, ok := c.cachedReading(ctx, cacheKey); ok {
		return reading, nil
	}
	reading, err := c.fetchByCoords(ctx, lat, lon)
	if err != nil {
		return Reading{}, err
	}
	c.storeReading(ctx, cacheKey, reading)
	return reading, nil
}

func (c *Client) geocode(ctx context.Context, location string) (float64, float64, error) {
	query := url.Values{}
	query.Set("q", location)
	query.Set("limit", "1")
	query.Set("appid", c.apiKey)

	endpoint := fmt.Sprintf("%s/direct?%s", c.geoURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, 0, ErrUnavailable
	}

	var results []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(results) == 0 {
		return 0, 0, ErrLocationNotFound
	}
	return results[0].Lat, results[0].Lon, nil
}

func (c *Client) fetchByCoords(ctx context.Context, lat, lon float64) (Reading, error) {
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%g", lat))
	query.Set("lon", fmt.Sprintf("%g", lon))
	return c.fetchCurrent(ctx, query)
}

type currentResponse struct {
	Name string `json:"name"`
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

func (c *Client) fetchCurrent(ctx context.Context, query url.Values) (Reading, error) {
	query.Set("units", "metric")
	query.Set("appid", c.apiKey)

	endpoint := fmt.Sprintf("%s/weather?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Reading{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return Reading{}, ErrLocationNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Reading{}, ErrUnavailable
	}

	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	reading := Reading{
		LocationName: payload.Name,
		TemperatureC: payload.Main.Temp,
		WindSpeedMS:  payload.Wind.Speed,
		HumidityPct:  payload.Main.Humidity,
	}
	if len(payload.Weather) > 0 {
		reading.Condition = payload.Weather[0].Main
		reading.Description = payload.Weather[0].Description
	}
	return reading, nil
}

// Cache helpers. Readings are short-lived; a miss or a redis error just
// means a live fetch.

func (c *Client) cachedReading(ctx context.Context, key string) (Reading, bool) {
	if c.redis == nil {
		return Reading{}, false
	}
	value, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return Reading{}, false
	}
	var reading Reading
	if err := json.Unmarshal([]byte(value), &reading); err != nil {
		return Reading{}, false
	}
	return reading, true
}

func (c *Client) storeReading(ctx context.Context, key string, reading Reading) {
	if c.redis == nil {
		return
	}
	data, err := json.Marshal(reading)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

func weatherQueryKey(location string) string {
	return fmt.Sprintf("weather:q:%s", strings.ToLower(location))
}

func weatherCoordKey(lat, lon float64) string {
	return fmt.Sprintf("weather:coord:%.2f,%.2f", lat, lon)
}
