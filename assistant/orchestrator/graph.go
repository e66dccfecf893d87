package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nlux "github.com/responsible-nlp/voice-assistant/assistant/nlu"
	dialognode "github.com/responsible-nlp/voice-assistant/assistant/nodes"
)

// compileTurnGraph wires the per-turn pipeline:
//
//	START → validate_request → route_intent
//	      → [forget_context | handle_weather | handle_calendar | handle_chat]
//	      → persist_state → finalize_reply → END
func (o *Orchestrator) compileTurnGraph(
	ctx context.Context,
) (compose.Runnable[dialognode.GraphInput, dialognode.GraphOutput], error) {
	graph := compose.NewGraph[dialognode.GraphInput, dialognode.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in dialognode.GraphInput) (*dialognode.GraphState, error) {
			return dialognode.ValidateRequest(in, o.session, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("route_intent",
		compose.InvokableLambda(func(ctx context.Context, in *dialognode.GraphState) (*dialognode.GraphState, error) {
			return dialognode.RouteIntent(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node route_intent: %w", err)
	}

	if err := graph.AddLambdaNode("forget_context",
		compose.InvokableLambda(func(ctx context.Context, in *dialognode.GraphState) (*dialognode.GraphState, error) {
			return dialognode.ForgetContext(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node forget_context: %w", err)
	}

	if err := graph.AddLambdaNode("handle_weather",
		compose.InvokableLambda(func(ctx context.Context, in *dialognode.GraphState) (*dialognode.GraphState, error) {
			return dialognode.HandleWeather(ctx, in, o.weather)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node handle_weather: %w", err)
	}

	if err := graph.AddLambdaNode("handle_calendar",
		compose.InvokableLambda(func(ctx context.Context, in *dialognode.GraphState) (*dialognode.GraphState, error) {
			return dialognode.HandleCalendar(ctx, in, o.calendar)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node handle_calendar: %w", err)
	}

	if err := graph.AddLambdaNode("handle_chat",
		compose.InvokableLambda(func(ctx context.Context, in *dialognode.GraphState) (*dialognode.GraphState, error) {
			return dialognode.HandleChat(ctx, in, o.backend, o.systemPrompt)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node handle_chat: %w", err)
	}

	if err := graph.AddLambdaNode("persist_state",
		compose.InvokableLambda(func(ctx context.Context, in *dialognode.GraphState) (*dialognode.GraphState, error) {
			return dialognode.PersistState(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node persist_state: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *dialognode.GraphState) (dialognode.GraphOutput, error) {
			return dialognode.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *dialognode.GraphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("graph state is nil")
			}
			if in.Forget {
				return "forget_context", nil
			}
			switch in.Intent {
			case nlux.IntentWeather:
				return "handle_weather", nil
			case nlux.IntentCalendar:
				return "handle_calendar", nil
			default:
				return "handle_chat", nil
			}
		},
		map[string]bool{
			"forget_context":  true,
			"handle_weather":  true,
			"handle_calendar": true,
			"handle_chat":     true,
		},
	)

	if err := graph.AddEdge(compose.START, "validate_request"); err != nil {
		return nil, fmt.Errorf("add edge start->validate_request: %w", err)
	}
	if err := graph.AddEdge("validate_request", "route_intent"); err != nil {
		return nil, fmt.Errorf("add edge validate_request->route_intent: %w", err)
	}
	if err := graph.AddBranch("route_intent", branch); err != nil {
		return nil, fmt.Errorf("add intent branch: %w", err)
	}
	for _, path := range []string{"forget_context", "handle_weather", "handle_calendar", "handle_chat"} {
		if err := graph.AddEdge(path, "persist_state"); err != nil {
			return nil, fmt.Errorf("add edge %s->persist_state: %w", path, err)
		}
	}
	if err := graph.AddEdge("persist_state", "finalize_reply"); err != nil {
		return nil, fmt.Errorf("add edge persist_state->finalize_reply: %w", err)
	}
	if err := graph.AddEdge("finalize_reply", compose.END); err != nil {
		return nil, fmt.Errorf("add edge finalize_reply->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("assistant.turn"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}
