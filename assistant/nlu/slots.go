package nlu

import (
	"regexp"
	"strings"
	"time"
)

var weekdays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// locationPattern captures a run of capitalized words after the preposition
// "in", e.g. "in New York tomorrow" -> "New York".
var locationPattern = regexp.MustCompile(`(?:^|[\s,])[Ii]n\s+([A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*)*)`)

// Tokens stripped from a captured location span.
var locationStopwords = map[string]bool{
	"will": true, "be": true, "like": true, "weather": true,
	"forecast": true, "on": true, "at": true,
}

// ExtractLocation returns the place named after "in", or "" when the
// utterance names none.
func ExtractLocation(text string) string {
	m := locationPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	kept := make([]string, 0, 4)
	for _, token := range strings.Fields(m[1]) {
		lower := strings.ToLower(token)
		if locationStopwords[lower] || isWeekday(lower) {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}

// ExtractDay returns "today", "tomorrow", or the first weekday named in the
// utterance; "" when none.
func ExtractDay(text string) string {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "today") {
		return "today"
	}
	if strings.Contains(lower, "tomorrow") {
		return "tomorrow"
	}
	for _, day := range weekdays {
		if strings.Contains(lower, day) {
			return day
		}
	}
	return ""
}

// ResolveDay maps "today"/"tomorrow" onto the actual weekday name; explicit
// weekday tokens pass through.
func ResolveDay(day string, now time.Time) string {
	switch strings.ToLower(strings.TrimSpace(day)) {
	case "today":
		return strings.ToLower(now.Weekday().String())
	case "tomorrow":
		return strings.ToLower(now.Add(24 * time.Hour).Weekday().String())
	default:
		return strings.ToLower(strings.TrimSpace(day))
	}
}

var conditionVocabulary = []string{
	"rain", "snow", "clear", "cloud", "cloudy", "mist", "fog",
	"sun", "sunny", "storm", "thunder",
}

// ExtractCondition returns the first weather condition named in the
// utterance, "" when none.
func ExtractCondition(text string) string {
	lower := strings.ToLower(text)
	for _, cond := range conditionVocabulary {
		if strings.Contains(lower, cond) {
			return cond
		}
	}
	return ""
}

// conditionSynonyms maps a requested condition onto the tokens that count as
// a match in a forecast description.
var conditionSynonyms = map[string][]string{
	"rain":    {"rain", "drizzle", "shower"},
	"snow":    {"snow", "sleet"},
	"clear":   {"clear", "sun"},
	"sun":     {"sun", "clear"},
	"sunny":   {"sun", "clear"},
	"cloud":   {"cloud", "overcast"},
	"cloudy":  {"cloud", "overcast"},
	"mist":    {"mist", "fog"},
	"fog":     {"fog", "mist"},
	"storm":   {"storm", "thunder"},
	"thunder": {"thunder", "storm"},
}

// ConditionMatches reports whether the forecast description satisfies the
// requested condition, via the synonym table.
func ConditionMatches(requested, actual string) bool {
	lower := strings.ToLower(actual)
	synonyms, ok := conditionSynonyms[strings.ToLower(strings.TrimSpace(requested))]
	if !ok {
		synonyms = []string{strings.ToLower(strings.TrimSpace(requested))}
	}
	for _, syn := range synonyms {
		if syn != "" && strings.Contains(lower, syn) {
			return true
		}
	}
	return false
}

func isWeekday(lower string) bool {
	for _, day := range weekdays {
		if lower == day {
			return true
		}
	}
	return false
}
