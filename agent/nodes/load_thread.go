package tourbotnode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/sam-admissions/tourbot/agent/contract"
	statex "github.com/sam-admissions/tourbot/agent/state"
)

// LoadOrCreateThread fetches the conversation thread and appends the
// incoming user turn.
func LoadOrCreateThread(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	thread, err := store.Load(ctx, in.ConversationID)
	if err != nil {
		if !errors.Is(err, statex.ErrThreadNotFound) {
			return nil, err
		}
		thread = statex.NewConversationThread(in.ConversationID, in.Now)
	}

	thread.Append(statex.RoleUser, in.Text, in.Now)
	in.Thread = thread
	return in, nil
}
