package dialognode

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/responsible-nlp/voice-assistant/assistant/contract"
	nlux "github.com/responsible-nlp/voice-assistant/assistant/nlu"
	statex "github.com/responsible-nlp/voice-assistant/assistant/state"
	calendarx "github.com/responsible-nlp/voice-assistant/pkg/calendar"
)

const (
	createdDescription   = "Created via assistant"
	calendarFailureReply = "I couldn't reach your calendar just now."
)

var titledPattern = regexp.MustCompile(`(?i)titled\s+'([^']+)'`)

// Verb vocabularies checked in order; delete and update run before add so
// "schedule"-flavoured wording never trips the create path. Anything else
// lists.
var (
	deleteVerbs = []string{"delete", "remove", "cancel"}
	updateVerbs = []string{"update", "change", "move"}
	addVerbs    = []string{"add", "create", "set up", "schedule a", "schedule an", "new appointment"}
)

// HandleCalendar fetches all events, lazily deletes the expired ones, then
// sub-routes by verb. Collaborator failures become fixed replies.
func HandleCalendar(ctx context.Context, in *GraphState, svc contractx.CalendarService) (*GraphState, error) {
	if in == nil || in.State == nil {
		return nil, errors.New("graph state is nil")
	}

	events, err := svc.ListEvents(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("calendar list failed")
		in.Reply = calendarFailureReply
		return in, nil
	}

	upcoming := sweepExpired(ctx, svc, events, in.Now)

	lower := strings.ToLower(in.Text)
	switch {
	case containsAnyWord(lower, deleteVerbs):
		in.Reply = deleteFlow(ctx, in, svc, upcoming)
	case containsAnyWord(lower, updateVerbs):
		in.Reply = updateFlow(ctx, in, svc, upcoming)
	case containsAnyWord(lower, addVerbs):
		in.Reply = addFlow(ctx, in, svc)
	default:
		in.Reply = listFlow(in, upcoming, lower)
	}
	return in, nil
}

// sweepExpired partitions events by end time. Expired events get one delete
// call each and are excluded; events with unparseable end times are kept.
func sweepExpired(ctx context.Context, svc contractx.CalendarService, events []calendarx.Event, now time.Time) []calendarx.Event {
	upcoming := make([]calendarx.Event, 0, len(events))
	for _, event := range events {
		end, ok := parseEventTime(event.EndTime)
		if ok && end.Before(now) {
			if err := svc.DeleteEvent(ctx, event.ID); err != nil {
				log.Warn().Str("event_id", event.ID).Err(err).Msg("expired event cleanup failed")
			}
			continue
		}
		upcoming = append(upcoming, event)
	}
	return upcoming
}

func parseEventTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	// The endpoint serves RFC 3339 with a Z suffix; older events may lack a
	// zone entirely.
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func addFlow(ctx context.Context, in *GraphState, svc contractx.CalendarService) string {
	start, _, ok := nlux.ExtractDate(in.Text, in.Now)
	if !ok {
		start = in.Now
	}
	end := start.Add(time.Hour)

	title := nlux.ExtractTitle(in.Text, in.Now)
	location, _ := in.State.Fact(statex.FactLocation)
	if location == "" {
		location = defaultPlace
	}

	event, err := svc.CreateEvent(ctx, calendarx.EventDraft{
		Title:       title,
		Description: createdDescription,
		StartTime:   start.UTC().Format(time.RFC3339),
		EndTime:     end.UTC().Format(time.RFC3339),
		Location:    location,
	})
	if err != nil {
		log.Warn().Err(err).Msg("calendar create failed")
		return calendarFailureReply
	}

	in.State.RememberEvent(event.ID)
	return fmt.Sprintf("Created appointment: %s.", title)
}

func deleteFlow(ctx context.Context, in *GraphState, svc contractx.CalendarService, upcoming []calendarx.Event) string {
	if m := titledPattern.FindStringSubmatch(in.Text); m != nil {
		want := strings.ToLower(strings.TrimSpace(m[1]))
		for _, event := range upcoming {
			if strings.ToLower(event.Title) != want {
				continue
			}
			if err := svc.DeleteEvent(ctx, event.ID); err != nil {
				log.Warn().Str("event_id", event.ID).Err(err).Msg("calendar delete failed")
				return calendarFailureReply
			}
			if event.ID == in.State.LastEventID() {
				in.State.ClearLastEvent()
			}
			return fmt.Sprintf("Deleted appointment '%s'.", event.Title)
		}
		return "I found no appointment with that title."
	}

	if id := in.State.LastEventID(); id != "" {
		if err := svc.DeleteEvent(ctx, id); err != nil {
			log.Warn().Str("event_id", id).Err(err).Msg("calendar delete failed")
			return calendarFailureReply
		}
		in.State.ClearLastEvent()
		return "Deleted the previously created appointment."
	}

	return "There are no events to delete."
}

func updateFlow(ctx context.Context, in *GraphState, svc contractx.CalendarService, upcoming []calendarx.Event) string {
	targetID := in.State.LastEventID()
	if targetID == "" {
		if len(upcoming) == 0 {
			return "There are no events to update."
		}
		targetID = upcoming[0].ID
	}

	location := nlux.ExtractLocation(in.Text)
	if location == "" {
		location = defaultPlace
	}

	if _, err := svc.UpdateEvent(ctx, targetID, map[string]string{"location": location}); err != nil {
		log.Warn().Str("event_id", targetID).Err(err).Msg("calendar update failed")
		return calendarFailureReply
	}
	return fmt.Sprintf("Moved the appointment to %s.", location)
}

func listFlow(in *GraphState, upcoming []calendarx.Event, lower string) string {
	if strings.Contains(lower, "today") {
		prefix := in.Now.Format("2006-01-02")
		todays := make([]calendarx.Event, 0, len(upcoming))
		for _, event := range upcoming {
			if strings.HasPrefix(event.StartTime, prefix) {
				todays = append(todays, event)
			}
		}
		if len(todays) == 0 {
			return "No calendar events for today."
		}
		return formatEventLines(todays)
	}

	if len(upcoming) == 0 {
		return "No calendar events found."
	}
	return formatEventLines(upcoming)
}

func formatEventLines(events []calendarx.Event) string {
	lines := make([]string, 0, len(events))
	for _, event := range events {
		when := event.StartTime
		if ts, ok := parseEventTime(event.StartTime); ok {
			when = fmt.Sprintf("%d %s", ts.Day(), ts.Month().String())
		}
		location := event.Location
		if location == "" {
			location = defaultPlace
		}
		lines = append(lines, fmt.Sprintf("You have an event '%s' on %s at %s.", event.Title, when, location))
	}
	return strings.Join(lines, "\n")
}

func containsAnyWord(lower string, verbs []string) bool {
	for _, verb := range verbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}
