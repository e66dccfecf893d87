package dialognode

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/responsible-nlp/voice-assistant/assistant/contract"
)

// HandleChat forwards the utterance to the generative backend as a single
// system+user exchange. No history is attached and there is no retry; any
// failure or empty reply degrades to the fixed apology.
func HandleChat(ctx context.Context, in *GraphState, backend contractx.ChatBackend, systemPrompt string) (*GraphState, error) {
	if in == nil || in.State == nil {
		return nil, errors.New("graph state is nil")
	}

	reply, err := backend.Chat(ctx, systemPrompt, in.Text)
	if err != nil {
		log.Warn().Err(err).Msg("chat backend failed")
		in.Reply = FallbackReply
		return in, nil
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		in.Reply = FallbackReply
		return in, nil
	}
	in.Reply = reply
	return in, nil
}
