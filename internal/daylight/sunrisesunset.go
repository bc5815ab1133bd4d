package daylight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public sunrise-sunset JSON API.
	DefaultBaseURL = "https://api.sunrisesunset.io"

	// DefaultTimeout bounds a single range query.
	DefaultTimeout = 10 * time.Second

	dateLayout = "2006-01-02"
)

// SunriseSunsetClient queries the sunrise-sunset API for day-length data.
type SunriseSunsetClient struct {
	baseURL string
	client  *http.Client
}

// ClientOption customizes a SunriseSunsetClient.
type ClientOption func(*SunriseSunsetClient)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *SunriseSunsetClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout overrides the request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *SunriseSunsetClient) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// NewSunriseSunsetClient constructs a client against the given base URL.
func NewSunriseSunsetClient(baseURL string, opts ...ClientOption) (*SunriseSunsetClient, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &SunriseSunsetClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type rangeResponse struct {
	Results []dayResult `json:"results"`
	Status  string      `json:"status"`
}

type dayResult struct {
	Date      string `json:"date"`
	Sunrise   string `json:"sunrise"`
	Sunset    string `json:"sunset"`
	DayLength string `json:"day_length"`
}

// Fetch issues one batched range query covering [start, end] and returns one
// Info per day the service reported. Days the service omits are absent from
// the map; callers decide how to fill them.
func (c *SunriseSunsetClient) Fetch(ctx context.Context, latitude, longitude float64, start, end time.Time) (map[time.Time]Info, error) {
	if err := validateQuery(latitude, longitude, start, end); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(latitude, 'f', -1, 64))
	query.Set("lng", strconv.FormatFloat(longitude, 'f', -1, 64))
	query.Set("date_start", DayKey(start).Format(dateLayout))
	query.Set("date_end", DayKey(end).Format(dateLayout))
	query.Set("time_format", "12")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/json?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("daylight: range query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("daylight: range query http %d: %w", resp.StatusCode, ErrDataUnavailable)
	}

	var payload rangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("daylight: decode response: %w", err)
	}
	if !strings.EqualFold(payload.Status, "OK") {
		return nil, fmt.Errorf("daylight: service status %q: %w", payload.Status, ErrDataUnavailable)
	}

	infos := make(map[time.Time]Info, len(payload.Results))
	for _, result := range payload.Results {
		date, err := time.Parse(dateLayout, result.Date)
		if err != nil {
			continue
		}
		hours, err := daylightHoursFromResult(result)
		if err != nil {
			continue
		}
		key := DayKey(date)
		infos[key] = Info{Date: key, DaylightHours: hours}
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("daylight: empty response: %w", ErrDataUnavailable)
	}
	return infos, nil
}

// daylightHoursFromResult prefers the precomputed day_length duration and
// falls back to sunrise/sunset clock times. Night hours derived from clock
// times span midnight: sunrise + (24 - sunset).
func daylightHoursFromResult(result dayResult) (float64, error) {
	if result.DayLength != "" {
		if hours, err := ParseDurationHours(result.DayLength); err == nil && hours >= 0 && hours <= 24 {
			return hours, nil
		}
	}
	sunrise, err := ParseClockHours(result.Sunrise)
	if err != nil {
		return 0, err
	}
	sunset, err := ParseClockHours(result.Sunset)
	if err != nil {
		return 0, err
	}
	night := sunrise + (24 - sunset)
	if night < 0 || night > 24 {
		return 0, errors.New("daylight: implausible sunrise/sunset pair")
	}
	return 24 - night, nil
}
