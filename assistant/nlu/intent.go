// Package nlu holds the deterministic, rule-based language understanding of
// the assistant: intent classification and slot extraction. Everything here
// is a pure function over the utterance text.
package nlu

import "strings"

type Intent string

const (
	IntentWeather  Intent = "weather"
	IntentCalendar Intent = "calendar"
	IntentChat     Intent = "chat"
)

var weatherVocabulary = []string{
	"weather", "forecast", "rain", "snow", "sun", "cloud",
	"temperature", "temp", "clear",
}

var calendarVocabulary = []string{
	"calendar", "appointment", "meeting", "schedule", "event",
}

// routes is evaluated in order; first matching vocabulary wins and chat is
// the unconditional tail.
var routes = []struct {
	intent Intent
	match  func(lower string) bool
}{
	{IntentWeather, func(lower string) bool { return containsAny(lower, weatherVocabulary) }},
	{IntentCalendar, func(lower string) bool { return containsAny(lower, calendarVocabulary) }},
	{IntentChat, func(string) bool { return true }},
}

// Classify assigns the coarse intent by case-insensitive substring membership.
func Classify(text string) Intent {
	lower := strings.ToLower(text)
	for _, r := range routes {
		if r.match(lower) {
			return r.intent
		}
	}
	return IntentChat
}

// IsTemperatureQuery reports whether the utterance asks for temperatures.
func IsTemperatureQuery(text string) bool {
	return containsAny(strings.ToLower(text), []string{"temperature", "temp"})
}

func containsAny(lower string, vocabulary []string) bool {
	for _, word := range vocabulary {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
