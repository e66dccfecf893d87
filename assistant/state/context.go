package state

import "strings"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// Number of turns a remembered weather slot stays reusable.
	weatherContextTTL = 5

	FactLocation = "location"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// WeatherContext remembers the most recently discussed weather query.
// Day holds the raw token ("tomorrow", "friday"), not the resolved weekday.
type WeatherContext struct {
	Place string `json:"place,omitempty"`
	Day   string `json:"day,omitempty"`
	Turn  int    `json:"turn"`
}

// CalendarContext remembers the last event the assistant created. The turn
// is recorded but currently has no read side.
type CalendarContext struct {
	LastEventID   string `json:"last_event_id,omitempty"`
	LastEventTurn int    `json:"last_event_turn"`
}

// ConversationState is the per-session context consulted and mutated on every
// turn. It is not safe for concurrent use; one orchestrator owns one state.
type ConversationState struct {
	History  []Message
	Facts    map[string]string
	Weather  WeatherContext
	Calendar CalendarContext

	turn int
}

func NewConversationState() *ConversationState {
	return &ConversationState{
		Facts: make(map[string]string, 4),
	}
}

// SeedTurnCounter derives the starting turn index from loaded history, one
// turn per user/assistant pair. Stores call this once after Load.
func (s *ConversationState) SeedTurnCounter() {
	s.turn = len(s.History) / 2
}

// AdvanceTurn moves the session to the next turn and returns its index.
func (s *ConversationState) AdvanceTurn() int {
	s.turn++
	return s.turn
}

func (s *ConversationState) TurnIndex() int {
	return s.turn
}

func (s *ConversationState) AppendTurn(user, assistant string) {
	s.History = append(s.History,
		Message{Role: RoleUser, Content: user},
		Message{Role: RoleAssistant, Content: assistant},
	)
}

func (s *ConversationState) ResetHistory() {
	s.History = nil
}

func (s *ConversationState) SetFact(name, value string) {
	if s.Facts == nil {
		s.Facts = make(map[string]string, 4)
	}
	s.Facts[name] = value
}

func (s *ConversationState) Fact(name string) (string, bool) {
	v, ok := s.Facts[name]
	return v, ok
}

// RememberWeather records the slots of the current weather query at the
// current turn index.
func (s *ConversationState) RememberWeather(place, day string) {
	s.Weather = WeatherContext{
		Place: strings.TrimSpace(place),
		Day:   strings.TrimSpace(day),
		Turn:  s.turn,
	}
}

// WeatherSlots returns the remembered place and day. A record older than the
// TTL is treated as absent and reset on read.
func (s *ConversationState) WeatherSlots() (place, day string) {
	if s.Weather.Place == "" && s.Weather.Day == "" {
		return "", ""
	}
	if s.turn-s.Weather.Turn > weatherContextTTL {
		s.Weather = WeatherContext{}
		return "", ""
	}
	return s.Weather.Place, s.Weather.Day
}

func (s *ConversationState) RememberEvent(id string) {
	s.Calendar = CalendarContext{
		LastEventID:   strings.TrimSpace(id),
		LastEventTurn: s.turn,
	}
}

func (s *ConversationState) LastEventID() string {
	return s.Calendar.LastEventID
}

func (s *ConversationState) ClearLastEvent() {
	s.Calendar = CalendarContext{}
}

// ResetContexts implements the /forget command: weather and calendar context
// are dropped, facts and history stay.
func (s *ConversationState) ResetContexts() {
	s.Weather = WeatherContext{}
	s.Calendar = CalendarContext{}
}
