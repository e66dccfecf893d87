package contract

import (
	"context"

	calendarx "github.com/responsible-nlp/voice-assistant/pkg/calendar"
	weatherx "github.com/responsible-nlp/voice-assistant/pkg/weather"
)

// WeatherService answers forecast queries for a place on a resolved weekday.
type WeatherService interface {
	ForecastDay(ctx context.Context, place, day string) (weatherx.Forecast, error)
}

// CalendarService is the CRUD surface of the remote calendar.
type CalendarService interface {
	ListEvents(ctx context.Context) ([]calendarx.Event, error)
	CreateEvent(ctx context.Context, draft calendarx.EventDraft) (calendarx.Event, error)
	UpdateEvent(ctx context.Context, id string, fields map[string]string) (calendarx.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// ChatBackend is the generative fallback for utterances outside the rule-based
// intents. One system+user exchange per call, no history.
type ChatBackend interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// Recognizer and Synthesizer are the speech collaborators. Audio capture and
// synthesis are entirely outside this core.
type Recognizer interface {
	ListenOnce(ctx context.Context) (string, error)
}

type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}
