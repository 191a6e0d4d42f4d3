package tourbotnode

import (
	"fmt"
	"strings"

	contractx "github.com/sam-admissions/tourbot/agent/contract"
)

// ComposeReply takes the model's conversational answer as the reply for
// this turn.
func ComposeReply(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.ModelMsg == nil {
		return nil, fmt.Errorf("%w: model message is missing", contractx.ErrModelInvoke)
	}

	reply := strings.TrimSpace(in.ModelMsg.Content)
	if reply == "" {
		return nil, fmt.Errorf("%w: model returned empty reply", contractx.ErrSchemaViolation)
	}
	in.Reply = reply
	return in, nil
}
