package tourbotnode

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/sam-admissions/tourbot/agent/contract"
	statex "github.com/sam-admissions/tourbot/agent/state"
)

const (
	// extractWindow is how many recent turns the draft extractor sees.
	extractWindow = 4
	// maxSummaryRunes bounds the folded summary.
	maxSummaryRunes = 600
)

// SaveThread appends the assistant reply, refreshes the registration
// draft, trims an overgrown history into the summary and persists the
// thread.
func SaveThread(ctx context.Context, in *GraphState, store statex.Store, extractor contractx.Extractor) (*GraphState, error) {
	if in == nil || in.Thread == nil {
		return nil, fmt.Errorf("%w: thread is missing", contractx.ErrValidation)
	}
	thread := in.Thread

	if strings.TrimSpace(in.Reply) != "" {
		thread.Append(statex.RoleAssistant, in.Reply, in.Now)
	}

	if extractor != nil && thread.ShouldExtract() {
		draft, err := extractor.Extract(ctx, CompactTurns(thread.RecentWindow(extractWindow)), thread.Draft)
		if err != nil {
			log.Warn().Err(err).Str("conversation_id", thread.ConversationID).Msg("draft extraction failed")
		} else {
			thread.Draft = draft
		}
	}

	if thread.NeedsTrim() {
		dropped := thread.History[:len(thread.History)-statex.RecentMessages]
		thread.Trim(FoldSummary(thread.Summary, dropped))
	}

	thread.Touch(in.Now)
	if err := store.Save(ctx, thread); err != nil {
		return nil, err
	}
	return in, nil
}

// CompactTurns renders turns as short "U:"/"A:" lines for model input.
func CompactTurns(turns []statex.Turn) string {
	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		prefix := "U"
		if turn.Role == statex.RoleAssistant {
			prefix = "A"
		}
		lines = append(lines, prefix+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}

// FoldSummary folds dropped turns into the running summary, keeping the
// most recent tail when the result outgrows the budget.
func FoldSummary(previous string, dropped []statex.Turn) string {
	parts := make([]string, 0, 2)
	if trimmed := strings.TrimSpace(previous); trimmed != "" {
		parts = append(parts, trimmed)
	}
	if compact := CompactTurns(dropped); compact != "" {
		parts = append(parts, compact)
	}

	folded := strings.Join(parts, "\n")
	runes := []rune(folded)
	if len(runes) > maxSummaryRunes {
		folded = string(runes[len(runes)-maxSummaryRunes:])
	}
	return folded
}
