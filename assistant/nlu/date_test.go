package nlu

import (
	"testing"
	"time"
)

var dateTestNow = time.Date(2026, time.June, 10, 9, 0, 0, 0, time.UTC)

func TestExtractDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text        string
		wantDay     int
		wantMonth   time.Month
		wantMatched string
	}{
		{"Add an appointment titled Exam for 30th of January", 30, time.January, "30th of January"},
		{"schedule something for the 5 mar", 5, time.March, "5 mar"},
		{"meet on 1st September", 1, time.September, "1st September"},
		{"dinner on the 22nd of december", 22, time.December, "22nd of december"},
	}

	for _, tc := range cases {
		got, matched, ok := ExtractDate(tc.text, dateTestNow)
		if !ok {
			t.Errorf("ExtractDate(%q): no date found", tc.text)
			continue
		}
		if matched != tc.wantMatched {
			t.Errorf("ExtractDate(%q) matched %q, want %q", tc.text, matched, tc.wantMatched)
		}
		want := time.Date(2026, tc.wantMonth, tc.wantDay, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("ExtractDate(%q) = %v, want %v", tc.text, got, want)
		}
	}
}

func TestExtractDateRejectsNonDates(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		"Add an appointment",
		"meet me at 5",
		"the 32nd of January",
	} {
		if _, _, ok := ExtractDate(text, dateTestNow); ok {
			t.Errorf("ExtractDate(%q): expected no date", text)
		}
	}
}

func TestExtractTitle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want string
	}{
		{"Add an appointment titled Exam for 30th of January", "Exam"},
		{"Create event Dentist Visit", "Dentist Visit"},
		{"Please schedule my Team Standup", "Team Standup"},
		{"Set up a Doctor appointment", "Doctor"},
		{"Add an appointment", "Untitled"},
	}

	for _, tc := range cases {
		if got := ExtractTitle(tc.text, dateTestNow); got != tc.want {
			t.Errorf("ExtractTitle(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}
