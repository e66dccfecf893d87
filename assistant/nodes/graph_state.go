package dialognode

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/responsible-nlp/voice-assistant/assistant/contract"
	nlux "github.com/responsible-nlp/voice-assistant/assistant/nlu"
	statex "github.com/responsible-nlp/voice-assistant/assistant/state"
)

var ErrInvalidMessage = fmt.Errorf("%w: message is empty", contractx.ErrValidation)

// ForgetCommand is the only control-surface literal; everything else is free
// text routed by intent.
const ForgetCommand = "/forget"

// FallbackReply covers internal failures that escape the path handlers.
// It doubles as the chat-backend apology.
const FallbackReply = "Sorry, I'm having trouble responding right now."

type GraphInput struct {
	Text string
}

type GraphOutput struct {
	Reply string
}

// GraphState is threaded through the turn pipeline.
type GraphState struct {
	Text   string
	Now    time.Time
	Intent nlux.Intent
	Forget bool

	State *statex.ConversationState

	Reply string
}

// ValidateRequest trims the utterance, advances the session to the next turn
// and seeds the pipeline state.
func ValidateRequest(in GraphInput, session *statex.ConversationState, nowFn func() time.Time) (*GraphState, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	session.AdvanceTurn()
	return &GraphState{
		Text:  text,
		Now:   nowFn(),
		State: session,
	}, nil
}

// RouteIntent decides the path for this turn: the /forget command
// short-circuits, everything else goes through the classifier.
func RouteIntent(in *GraphState) (*GraphState, error) {
	if in == nil || in.State == nil {
		return nil, errors.New("graph state is nil")
	}

	if in.Text == ForgetCommand {
		in.Forget = true
		return in, nil
	}
	in.Intent = nlux.Classify(in.Text)
	return in, nil
}
