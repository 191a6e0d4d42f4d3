package contract

import (
	"encoding/json"
	"strings"
)

type AgentType string

const (
	AgentTypeTourbot   AgentType = "tourbot"
	AgentTypeExtractor AgentType = "extractor"
)

// ChatRequest is one inbound user message within a conversation.
type ChatRequest struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
}

// ChatResult is the rendered outcome of one conversational turn.
type ChatResult struct {
	ConversationID        string   `json:"conversation_id"`
	Reply                 string   `json:"reply"`
	RegistrationCompleted bool     `json:"registration_completed"`
	WaitListed            bool     `json:"wait_listed"`
	SuggestedTours        []string `json:"suggested_tours,omitempty"`
}

// RegistrationDraft is the structured registration state distilled from
// the running conversation. Fields stay empty until the user provides
// them.
type RegistrationDraft struct {
	Name                 string    `json:"name,omitempty"`
	Email                string    `json:"email,omitempty"`
	Phone                string    `json:"phone,omitempty"`
	Grades               GradeList `json:"grades,omitempty"`
	Intent               string    `json:"intent,omitempty"`
	ReadyForRegistration bool      `json:"ready_for_registration,omitempty"`
}

// GradeList tolerates models emitting either a JSON array or a single
// comma-joined string for the grades field.
type GradeList []string

func (g *GradeList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*g = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*g = nil
	for _, part := range strings.Split(single, ",") {
		if v := strings.TrimSpace(part); v != "" {
			*g = append(*g, v)
		}
	}
	return nil
}
