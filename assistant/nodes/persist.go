package dialognode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/responsible-nlp/voice-assistant/assistant/contract"
	statex "github.com/responsible-nlp/voice-assistant/assistant/state"
)

// PersistState overwrites the durable documents after the turn. Write
// failures propagate as graph errors; the service boundary converts them.
func PersistState(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil || in.State == nil {
		return nil, errors.New("graph state is nil")
	}

	if err := store.Save(ctx, in.State); err != nil {
		return nil, fmt.Errorf("%w: persist session state: %v", contractx.ErrCollaborator, err)
	}
	return in, nil
}

// FinalizeReply extracts the reply string, the only thing a caller ever sees.
func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, errors.New("graph state is nil")
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, errors.New("turn produced no reply")
	}
	return GraphOutput{Reply: reply}, nil
}
