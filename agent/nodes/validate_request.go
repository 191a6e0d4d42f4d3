package tourbotnode

import (
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	statex "github.com/sam-admissions/tourbot/agent/state"
	tourcontract "github.com/sam-admissions/tourbot/tour/contract"
	modelx "github.com/sam-admissions/tourbot/tour/model"
)

var (
	ErrInvalidMessage      = errors.New("message is empty")
	ErrInvalidConversation = errors.New("conversation id is empty")
)

type GraphInput struct {
	ConversationID string
	Text           string
}

type GraphOutput struct {
	Reply                 string
	RegistrationCompleted bool
	WaitListed            bool
	SuggestedTours        []string
}

// GraphState is threaded through the conversational turn graph.
type GraphState struct {
	ConversationID string
	Text           string
	Now            time.Time

	Thread *statex.ConversationThread

	Tours           []modelx.TourDate
	TourContext     string
	CapacityContext string
	Suggestions     []string

	ModelMsg *schema.Message

	Reply          string
	RegisterResult *tourcontract.RegisterResult
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	conversationID := strings.TrimSpace(in.ConversationID)
	if conversationID == "" {
		return nil, ErrInvalidConversation
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		ConversationID: conversationID,
		Text:           text,
		Now:            nowFn().UTC(),
	}, nil
}
