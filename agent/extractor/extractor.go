// Package extractor distills registration drafts from conversation text
// using the OpenAI chat-completions API in JSON mode.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	contractx "github.com/sam-admissions/tourbot/agent/contract"
)

const maxCompletionTokens = 120

type Extractor struct {
	client *openaisdk.Client
	model  string
	prompt string
}

var _ contractx.Extractor = (*Extractor)(nil)

func New(client *openaisdk.Client, model, prompt string) (*Extractor, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: openai client is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: extractor model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: extractor prompt is required", contractx.ErrPromptMissing)
	}
	return &Extractor{client: client, model: model, prompt: prompt}, nil
}

// Extract runs one JSON-mode completion over the recent turns and merges
// the response into the previous draft. Fields the model leaves empty
// keep their previous values.
func (e *Extractor) Extract(ctx context.Context, turnsText string, previous contractx.RegistrationDraft) (contractx.RegistrationDraft, error) {
	turnsText = strings.TrimSpace(turnsText)
	if turnsText == "" {
		return previous, nil
	}

	resp, err := e.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(e.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(e.prompt),
			openaisdk.UserMessage(turnsText),
		},
		Temperature: openaisdk.Float(0),
		MaxTokens:   openaisdk.Int(maxCompletionTokens),
		ResponseFormat: openaisdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return previous, fmt.Errorf("%w: extract draft: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return previous, fmt.Errorf("%w: empty extraction response", contractx.ErrModelInvoke)
	}

	var extracted contractx.RegistrationDraft
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &extracted); err != nil {
		return previous, fmt.Errorf("%w: decode extraction: %v", contractx.ErrSchemaViolation, err)
	}

	return Merge(previous, extracted), nil
}

// Merge overlays non-empty extracted fields on the previous draft.
func Merge(previous, extracted contractx.RegistrationDraft) contractx.RegistrationDraft {
	merged := previous
	if v := strings.TrimSpace(extracted.Name); v != "" {
		merged.Name = v
	}
	if v := strings.TrimSpace(extracted.Email); v != "" {
		merged.Email = v
	}
	if v := strings.TrimSpace(extracted.Phone); v != "" {
		merged.Phone = v
	}
	if len(extracted.Grades) > 0 {
		merged.Grades = extracted.Grades
	}
	if v := strings.TrimSpace(extracted.Intent); v != "" {
		merged.Intent = v
	}
	if extracted.ReadyForRegistration {
		merged.ReadyForRegistration = true
	}
	return merged
}
