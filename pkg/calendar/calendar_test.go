package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(
		Config{BaseURL: server.URL, CalendarID: 54},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestListEventsEnvelope(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("calenderid"); got != "54" {
			t.Errorf("calenderid = %q, want 54", got)
		}
		fmt.Fprint(w, `{"events": [
			{"id": 7, "title": "Standup", "start_time": "2026-01-15T09:00:00Z", "end_time": "2026-01-15T09:15:00Z", "location": "Marburg"},
			{"id": "8", "title": "Exam", "start_time": "2026-01-30T00:00:00Z", "end_time": "2026-01-30T01:00:00Z", "location": "Frankfurt"}
		]}`)
	})

	events, err := client.ListEvents(context.Background())
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ID != "7" {
		t.Fatalf("numeric id decoded as %q, want 7", events[0].ID)
	}
	if events[1].ID != "8" {
		t.Fatalf("string id decoded as %q, want 8", events[1].ID)
	}
}

func TestListEventsBareArray(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 1, "title": "Dentist"}]`)
	})

	events, err := client.ListEvents(context.Background())
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].Title != "Dentist" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestGetEvent(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id"); got != "7" {
			t.Errorf("id = %q, want 7", got)
		}
		fmt.Fprint(w, `{"id": 7, "title": "Standup"}`)
	})

	event, err := client.GetEvent(context.Background(), "7")
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if event.ID != "7" || event.Title != "Standup" {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestCreateEvent(t *testing.T) {
	t.Parallel()

	var gotDraft EventDraft
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotDraft); err != nil {
			t.Fatalf("decode draft: %v", err)
		}
		fmt.Fprint(w, `{"id": 101, "title": "Exam"}`)
	})

	event, err := client.CreateEvent(context.Background(), EventDraft{
		Title:       "Exam",
		Description: "Created via assistant",
		StartTime:   "2026-01-30T00:00:00Z",
		EndTime:     "2026-01-30T01:00:00Z",
		Location:    "Marburg",
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if event.ID != "101" {
		t.Fatalf("created id = %q, want 101", event.ID)
	}
	if gotDraft.Title != "Exam" || gotDraft.Location != "Marburg" {
		t.Fatalf("unexpected draft sent: %+v", gotDraft)
	}
}

func TestUpdateEvent(t *testing.T) {
	t.Parallel()

	var gotFields map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %q, want PUT", r.Method)
		}
		if got := r.URL.Query().Get("id"); got != "101" {
			t.Errorf("id = %q, want 101", got)
		}
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotFields); err != nil {
			t.Fatalf("decode fields: %v", err)
		}
		fmt.Fprint(w, `{"id": 101, "title": "Exam", "location": "Frankfurt"}`)
	})

	event, err := client.UpdateEvent(context.Background(), "101", map[string]string{"location": "Frankfurt"})
	if err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}
	if event.Location != "Frankfurt" {
		t.Fatalf("updated location = %q, want Frankfurt", event.Location)
	}
	if gotFields["location"] != "Frankfurt" {
		t.Fatalf("unexpected fields sent: %+v", gotFields)
	}
}

func TestDeleteEvent(t *testing.T) {
	t.Parallel()

	var gotMethod, gotID string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotID = r.URL.Query().Get("id")
		fmt.Fprint(w, `{"status": "deleted"}`)
	})

	if err := client.DeleteEvent(context.Background(), "7"); err != nil {
		t.Fatalf("DeleteEvent() error = %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Fatalf("method = %q, want DELETE", gotMethod)
	}
	if gotID != "7" {
		t.Fatalf("id = %q, want 7", gotID)
	}
}

func TestRequestErrorWrapsSentinel(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.ListEvents(context.Background())
	if !errors.Is(err, ErrCalendarRequest) {
		t.Fatalf("ListEvents() error = %v, want ErrCalendarRequest", err)
	}
}

func TestFormatEvents(t *testing.T) {
	t.Parallel()

	if got := FormatEvents(nil); got != "No calendar events found." {
		t.Fatalf("FormatEvents(nil) = %q", got)
	}

	out := FormatEvents([]Event{{ID: "7", Title: "Standup", StartTime: "2026-01-15T09:00:00Z"}})
	if !strings.Contains(out, "Event #7") || !strings.Contains(out, "Title: Standup") {
		t.Fatalf("unexpected formatting:\n%s", out)
	}
}
