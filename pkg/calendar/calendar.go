// Package calendar is a client for the shared calendar.php CRUD endpoint.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var ErrCalendarRequest = errors.New("calendar request failed")

const maxResponseSizeBytes = 2 << 20

type Config struct {
	BaseURL    string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.responsible-nlp.net/calendar.php"`
	CalendarID int           `envconfig:"CALENDAR_ID" split_words:"true" default:"54"`
	Timeout    time.Duration `split_words:"true" default:"10s"`
}

// Event mirrors the wire shape of calendar.php events. Times are ISO-8601
// strings owned by the server; this client never interprets them.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Location    string `json:"location"`
}

// The endpoint serves ids as numbers or strings depending on the operation.
func (e *Event) UnmarshalJSON(data []byte) error {
	type alias Event
	aux := struct {
		ID json.RawMessage `json:"id"`
		*alias
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.ID)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
		e.ID = ""
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		e.ID = s
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return err
		}
		e.ID = n.String()
	}
	return nil
}

// EventDraft is the payload for CreateEvent.
type EventDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Location    string `json:"location"`
}

type Client struct {
	baseURL    string
	calendarID int
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
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("calendar base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid calendar base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		calendarID: cfg.CalendarID,
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

// ListEvents accepts both response shapes served by the endpoint: an
// {"events": [...]} envelope or a bare array.
func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	raw, err := c.do(ctx, http.MethodGet, nil, nil)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '{' {
		var envelope struct {
			Events []Event `json:"events"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: decode events: %v", ErrCalendarRequest, err)
		}
		return envelope.Events, nil
	}

	var events []Event
	if err := json.Unmarshal(trimmed, &events); err != nil {
		return nil, fmt.Errorf("%w: decode events: %v", ErrCalendarRequest, err)
	}
	return events, nil
}

func (c *Client) GetEvent(ctx context.Context, id string) (Event, error) {
	raw, err := c.do(ctx, http.MethodGet, url.Values{"id": {id}}, nil)
	if err != nil {
		return Event{}, err
	}
	return decodeEvent(raw)
}

func (c *Client) CreateEvent(ctx context.Context, draft EventDraft) (Event, error) {
	raw, err := c.do(ctx, http.MethodPost, nil, draft)
	if err != nil {
		return Event{}, err
	}
	return decodeEvent(raw)
}

// UpdateEvent sends a partial field map; the server merges it into the event.
func (c *Client) UpdateEvent(ctx context.Context, id string, fields map[string]string) (Event, error) {
	raw, err := c.do(ctx, http.MethodPut, url.Values{"id": {id}}, fields)
	if err != nil {
		return Event{}, err
	}
	return decodeEvent(raw)
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, url.Values{"id": {id}}, nil)
	return err
}

// FormatEvents renders events the way the assistant logs them.
func FormatEvents(events []Event) string {
	if len(events) == 0 {
		return "No calendar events found."
	}
	divider := strings.Repeat("-", 40)
	lines := []string{"Calendar events:", divider}
	for _, e := range events {
		lines = append(lines,
			fmt.Sprintf("Event #%s", e.ID),
			"Title: "+e.Title,
			"Start: "+e.StartTime,
			"End: "+e.EndTime,
			"Location: "+e.Location,
			divider,
		)
	}
	return strings.Join(lines, "\n")
}

func decodeEvent(raw []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(bytes.TrimSpace(raw), &event); err != nil {
		return Event{}, fmt.Errorf("%w: decode event: %v", ErrCalendarRequest, err)
	}
	return event, nil
}

func (c *Client) do(ctx context.Context, method string, query url.Values, body any) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	// The endpoint spells the parameter "calenderid".
	query.Set("calenderid", strconv.Itoa(c.calendarID))

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal body: %v", ErrCalendarRequest, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"?"+query.Encode(), reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrCalendarRequest, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCalendarRequest, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrCalendarRequest, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: http status=%d body=%s", ErrCalendarRequest, resp.StatusCode, string(raw))
	}
	return raw, nil
}
