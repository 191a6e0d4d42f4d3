package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/tourbot.txt
	tourbotRaw string

	//go:embed template/extractor.txt
	extractorRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Tourbot   string
	Extractor string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Tourbot:   strings.TrimSpace(tourbotRaw),
		Extractor: strings.TrimSpace(extractorRaw),
	}
}
