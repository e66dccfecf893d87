package nlu

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// datePattern matches "<ordinal day> [of] <month name>", e.g. "30th of
// January" or "5 mar". Full month names before abbreviations so the longest
// form wins.
var datePattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)\b`)

var monthsByName = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// ExtractDate parses an explicit date phrase out of the utterance. The year
// defaults to the current one. It returns the date at midnight UTC, the
// matched substring, and whether a date was found.
func ExtractDate(text string, now time.Time) (time.Time, string, bool) {
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, "", false
	}

	day, err := strconv.Atoi(m[1])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, "", false
	}
	month, ok := monthsByName[strings.ToLower(m[2])]
	if !ok {
		return time.Time{}, "", false
	}

	return time.Date(now.Year(), month, day, 0, 0, 0, 0, time.UTC), m[0], true
}

// Keywords stripped while deriving an event title from the utterance.
var titleStopwords = map[string]bool{
	"create": true, "add": true, "schedule": true, "event": true,
	"appointment": true, "titled": true, "title": true, "for": true,
	"a": true, "an": true, "the": true, "my": true, "please": true,
	"of": true,
}

// ExtractTitle derives an event title: lowercase, drop command keywords and
// any matched date phrase, title-case the rest. Empty results default to
// "Untitled".
func ExtractTitle(text string, now time.Time) string {
	lower := strings.ToLower(text)
	lower = strings.ReplaceAll(lower, "set up", " ")

	if _, matched, ok := ExtractDate(text, now); ok {
		lower = strings.Replace(lower, strings.ToLower(matched), " ", 1)
	}

	kept := make([]string, 0, 4)
	for _, token := range strings.Fields(lower) {
		token = strings.Trim(token, `.,!?;:'"`)
		if token == "" || titleStopwords[token] {
			continue
		}
		kept = append(kept, upperFirst(token))
	}

	if len(kept) == 0 {
		return "Untitled"
	}
	return strings.Join(kept, " ")
}

func upperFirst(token string) string {
	return strings.ToUpper(token[:1]) + token[1:]
}
