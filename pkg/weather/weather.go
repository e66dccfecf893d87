// Package weather is a thin client for the OpenWeather 5-day forecast API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrForecastUnavailable = errors.New("forecast unavailable")

const maxResponseSizeBytes = 2 << 20

type Config struct {
	APIKey  string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openweathermap.org"`
	Units   string        `split_words:"true" default:"metric"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

// Forecast is the aggregated outlook for one place on one day.
type Forecast struct {
	Description string
	TempMin     float64
	TempMax     float64
}

type Client struct {
	baseURL    string
	apiKey     string
	units      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("weather base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid weather base url: %w", err)
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("weather api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	units := strings.TrimSpace(cfg.Units)
	if units == "" {
		units = "metric"
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		units:      units,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func MustNew(cfg Config, opts ...Option) *Client {
	c, err := NewClient(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

type forecastResponse struct {
	List []forecastEntry `json:"list"`
}

type forecastEntry struct {
	Main struct {
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	DtTxt string `json:"dt_txt"`
}

// ForecastDay aggregates the 3-hourly entries whose timestamp falls on the
// requested weekday. day must be a lowercase English weekday name.
func (c *Client) ForecastDay(ctx context.Context, place, day string) (Forecast, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return Forecast{}, fmt.Errorf("%w: place is empty", ErrForecastUnavailable)
	}

	query := url.Values{}
	query.Set("q", place)
	query.Set("appid", c.apiKey)
	query.Set("units", c.units)

	endpoint := c.baseURL + "/data/2.5/forecast?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Forecast{}, fmt.Errorf("%w: build request: %v", ErrForecastUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Forecast{}, fmt.Errorf("%w: %v", ErrForecastUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return Forecast{}, fmt.Errorf("%w: read response: %v", ErrForecastUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Forecast{}, fmt.Errorf("%w: http status=%d", ErrForecastUnavailable, resp.StatusCode)
	}

	var parsed forecastResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Forecast{}, fmt.Errorf("%w: decode response: %v", ErrForecastUnavailable, err)
	}

	return aggregateDay(parsed.List, strings.ToLower(strings.TrimSpace(day)))
}

func aggregateDay(entries []forecastEntry, day string) (Forecast, error) {
	out := Forecast{}
	found := false

	for _, entry := range entries {
		ts, err := time.Parse("2006-01-02 15:04:05", entry.DtTxt)
		if err != nil {
			continue
		}
		if strings.ToLower(ts.Weekday().String()) != day {
			continue
		}
		if !found {
			out.TempMin = entry.Main.TempMin
			out.TempMax = entry.Main.TempMax
			if len(entry.Weather) > 0 {
				out.Description = entry.Weather[0].Description
			}
			found = true
			continue
		}
		if entry.Main.TempMin < out.TempMin {
			out.TempMin = entry.Main.TempMin
		}
		if entry.Main.TempMax > out.TempMax {
			out.TempMax = entry.Main.TempMax
		}
	}

	if !found {
		return Forecast{}, fmt.Errorf("%w: no entries for day=%s", ErrForecastUnavailable, day)
	}
	return out, nil
}
