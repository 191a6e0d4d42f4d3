package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/sam-admissions/tourbot/agent/contract"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// MaxMessages is the history length that triggers a trim.
	MaxMessages = 10
	// RecentMessages is how many turns survive a trim verbatim; older
	// turns are folded into the summary.
	RecentMessages = 6
	// extractEvery gates how often the draft extractor runs.
	extractEvery = 3
)

var (
	ErrThreadNotFound      = errors.New("conversation thread not found")
	ErrNilThread           = errors.New("conversation thread is nil")
	ErrInvalidConversation = errors.New("conversation id is empty")
)

// Turn is one message in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationThread is the persistent per-conversation state: the
// rolling message window, a summary of trimmed turns and the
// registration draft distilled so far.
type ConversationThread struct {
	ConversationID string                      `json:"conversation_id"`
	History        []Turn                      `json:"history,omitempty"`
	Summary        string                      `json:"summary,omitempty"`
	Draft          contractx.RegistrationDraft `json:"draft,omitempty"`
	Registered     bool                        `json:"registered,omitempty"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

func NewConversationThread(conversationID string, now time.Time) *ConversationThread {
	return &ConversationThread{
		ConversationID: conversationID,
		UpdatedAt:      now.UTC(),
	}
}

func (t *ConversationThread) Touch(now time.Time) {
	t.UpdatedAt = now.UTC()
}

func (t *ConversationThread) Append(role, content string, now time.Time) {
	t.History = append(t.History, Turn{Role: role, Content: content})
	t.Touch(now)
}

// NeedsTrim reports whether the history window has outgrown MaxMessages.
func (t *ConversationThread) NeedsTrim() bool {
	return len(t.History) > MaxMessages
}

// Trim keeps the most recent turns and replaces the summary with the
// given text. The summary is overwritten, not accumulated; callers fold
// the previous summary into the new one before trimming.
func (t *ConversationThread) Trim(summary string) {
	if len(t.History) > RecentMessages {
		kept := make([]Turn, RecentMessages)
		copy(kept, t.History[len(t.History)-RecentMessages:])
		t.History = kept
	}
	t.Summary = strings.TrimSpace(summary)
}

// ShouldExtract reports whether this turn should run the draft
// extractor. Extraction is throttled to every third message.
func (t *ConversationThread) ShouldExtract() bool {
	return len(t.History) > 0 && len(t.History)%extractEvery == 0
}

// RecentWindow returns up to n of the latest turns.
func (t *ConversationThread) RecentWindow(n int) []Turn {
	if n <= 0 || len(t.History) == 0 {
		return nil
	}
	if len(t.History) <= n {
		return t.History
	}
	return t.History[len(t.History)-n:]
}

func (t *ConversationThread) Validate() error {
	if strings.TrimSpace(t.ConversationID) == "" {
		return ErrInvalidConversation
	}
	for i, turn := range t.History {
		if turn.Role != RoleUser && turn.Role != RoleAssistant {
			return fmt.Errorf("turn %d has unknown role %q", i, turn.Role)
		}
	}
	return nil
}
