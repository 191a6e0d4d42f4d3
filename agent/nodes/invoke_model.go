package tourbotnode

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/sam-admissions/tourbot/agent/contract"
	statex "github.com/sam-admissions/tourbot/agent/state"
)

// InvokeModel runs the chat model over the grounded prompt and the
// conversation window.
func InvokeModel(ctx context.Context, in *GraphState, runner compose.Runnable[map[string]any, *schema.Message]) (*GraphState, error) {
	if in == nil || in.Thread == nil {
		return nil, fmt.Errorf("%w: thread is missing", contractx.ErrValidation)
	}

	history := make([]*schema.Message, 0, len(in.Thread.History))
	for _, turn := range in.Thread.History {
		if turn.Role == statex.RoleAssistant {
			history = append(history, schema.AssistantMessage(turn.Content, nil))
			continue
		}
		history = append(history, schema.UserMessage(turn.Content))
	}

	summary := in.Thread.Summary
	if summary == "" {
		summary = "(sin resumen previo)"
	}

	msg, err := runner.Invoke(ctx, map[string]any{
		"tour_context":     in.TourContext,
		"capacity_context": in.CapacityContext,
		"summary":          summary,
		"history":          history,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: chat invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: chat model returned nil message", contractx.ErrModelInvoke)
	}

	in.ModelMsg = msg
	return in, nil
}
