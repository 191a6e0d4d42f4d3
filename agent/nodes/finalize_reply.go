package tourbotnode

import (
	"fmt"
	"strings"

	contractx "github.com/sam-admissions/tourbot/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: turn produced no reply", contractx.ErrValidation)
	}

	out := GraphOutput{
		Reply:          reply,
		SuggestedTours: in.Suggestions,
	}
	if in.RegisterResult != nil && in.RegisterResult.OK() {
		out.RegistrationCompleted = true
		out.WaitListed = in.RegisterResult.WaitListed
	}
	return out, nil
}
