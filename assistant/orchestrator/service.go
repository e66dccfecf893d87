// Package orchestrator is the dialogue core: one utterance in, one reply out.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/responsible-nlp/voice-assistant/assistant/contract"
	dialognode "github.com/responsible-nlp/voice-assistant/assistant/nodes"
	statex "github.com/responsible-nlp/voice-assistant/assistant/state"
)

// Orchestrator routes utterances and owns the conversation state of exactly
// one session. Generate is not reentrant; callers serialize invocations.
type Orchestrator struct {
	store    statex.Store
	weather  contractx.WeatherService
	calendar contractx.CalendarService
	backend  contractx.ChatBackend

	session      *statex.ConversationState
	systemPrompt string

	graphRunner compose.Runnable[dialognode.GraphInput, dialognode.GraphOutput]

	now func() time.Time
}

func New(
	store statex.Store,
	weather contractx.WeatherService,
	calendar contractx.CalendarService,
	backend contractx.ChatBackend,
	systemPrompt string,
) (*Orchestrator, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: state store is required", contractx.ErrValidation)
	}
	if weather == nil {
		return nil, fmt.Errorf("%w: weather service is required", contractx.ErrValidation)
	}
	if calendar == nil {
		return nil, fmt.Errorf("%w: calendar service is required", contractx.ErrValidation)
	}
	if backend == nil {
		backend = noopBackend{}
	}

	session, err := store.Load(context.Background())
	if err != nil {
		// Load failures are non-fatal: the session starts empty.
		log.Warn().Err(err).Msg("loading session state failed, starting fresh")
		session = statex.NewConversationState()
	}

	o := &Orchestrator{
		store:        store,
		weather:      weather,
		calendar:     calendar,
		backend:      backend,
		session:      session,
		systemPrompt: systemPrompt,
		now:          time.Now,
	}

	graphRunner, err := o.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// Generate runs one turn. It is total: every failure path resolves to a safe
// reply string, never an error.
func (o *Orchestrator) Generate(ctx context.Context, text string) string {
	out, err := o.graphRunner.Invoke(ctx, dialognode.GraphInput{Text: text})
	if err != nil {
		log.Warn().Err(err).Msg("turn pipeline failed")
		return dialognode.FallbackReply
	}
	return out.Reply
}

type noopBackend struct{}

func (noopBackend) Chat(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("%w: no generative backend configured", contractx.ErrBackend)
}
