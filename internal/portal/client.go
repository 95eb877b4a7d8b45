// Package portal implements the farmer-facing portal workflows on top of
// the HTTP API: session handling, role gating, request submission and the
// admin console with its optimistic status updates.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Request is a power request as the API returns it. RequestDate covers
// records imported from the old portal that predate the createdAt field.
type Request struct {
	ID            string  `json:"id"`
	FarmerID      string  `json:"farmerId"`
	FarmerName    string  `json:"farmerName"`
	Area          string  `json:"area"`
	PowerRequired float64 `json:"powerRequired"`
	Purpose       string  `json:"purpose"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"createdAt,omitempty"`
	RequestDate   string  `json:"requestDate,omitempty"`
	UpdatedAt     string  `json:"updatedAt,omitempty"`
}

type Credentials struct {
	Token string
	Role  string
	Name  string
}

type WeatherReport struct {
	Weather struct {
		LocationName string  `json:"locationName"`
		TemperatureC float64 `json:"temperatureC"`
		Condition    string  `json:"conditionText"`
		Description  string  `json:"description"`
		WindSpeedMS  float64 `json:"windSpeedMS"`
		HumidityPct  int     `json:"humidityPercent"`
	} `json:"weather"`
	Advisory struct {
		Category string `json:"category"`
		Title    string `json:"title"`
		Message  string `json:"message"`
	} `json:"advisory"`
}

type Scheme struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Eligibility string `json:"eligibility"`
	Link        string `json:"link"`
	Category    string `json:"category"`
}

// APIError carries the machine-readable error code from a non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Code)
}

// Client is a thin JSON client for the portal API. The token provider is
// consulted per request so a login mid-flight is picked up immediately.
type Client struct {
	baseURL string
	http    *http.Client
	token   func() string
}

func NewClient(baseURL string, token func() string) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
	}
}

type authPayload struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (Credentials, error) {
	var payload authPayload
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &payload)
	return Credentials(payload), err
}

func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	var payload authPayload
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &payload)
	return Credentials(payload), err
}

// powerValue serializes NaN as null, matching what a browser form posts
// when the power field is not a number.
type powerValue float64

func (v powerValue) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(v)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(v))
}

func (c *Client) SubmitRequest(ctx context.Context, area string, powerRequired float64, purpose string) (Request, error) {
	var request Request
	err := c.do(ctx, http.MethodPost, "/requests/", map[string]any{
		"area":          area,
		"powerRequired": powerValue(powerRequired),
		"purpose":       purpose,
	}, &request)
	return request, err
}

func (c *Client) MyRequests(ctx context.Context) ([]Request, error) {
	var requests []Request
	err := c.do(ctx, http.MethodGet, "/requests/me", nil, &requests)
	return requests, err
}

func (c *Client) AllRequests(ctx context.Context) ([]Request, error) {
	var requests []Request
	err := c.do(ctx, http.MethodGet, "/requests/", nil, &requests)
	return requests, err
}

func (c *Client) ApproveRequest(ctx context.Context, requestID string) (Request, error) {
	var request Request
	err := c.do(ctx, http.MethodPut, "/requests/"+requestID+"/approve", nil, &request)
	return request, err
}

func (c *Client) RejectRequest(ctx context.Context, requestID string) (Request, error) {
	var request Request
	err := c.do(ctx, http.MethodPut, "/requests/"+requestID+"/reject", nil, &request)
	return request, err
}

func (c *Client) DeleteRequest(ctx context.Context, requestID string) error {
	return c.do(ctx, http.MethodDelete, "/requests/"+requestID, nil, nil)
}

func (c *Client) Weather(ctx context.Context, location string) (WeatherReport, error) {
	path := "/weather"
	if location != "" {
		path += "?location=" + url.QueryEscape(location)
	}
	var report WeatherReport
	err := c.do(ctx, http.MethodGet, path, nil, &report)
	return report, err
}

// WeatherByCoords looks up weather by device coordinates, the way the
// dashboard does when geolocation is available.
func (c *Client) WeatherByCoords(ctx context.Context, lat, lon float64) (WeatherReport, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	var report WeatherReport
	err := c.do(ctx, http.MethodGet, "/weather?"+query.Encode(), nil, &report)
	return report, err
}

func (c *Client) Schemes(ctx context.Context, category string) ([]Scheme, error) {
	path := "/schemes"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var list []Scheme
	err := c.do(ctx, http.MethodGet, path, nil, &list)
	return list, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = "server_error"
		}
		return &APIError{StatusCode: resp.StatusCode, Code: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ErrorCode extracts the API error code, or "network_error" for transport
// failures where no response was received.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return "network_error"
}
