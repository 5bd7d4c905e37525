package service

import (
	"strings"

	"EchoChat/backend/go/internal/models"
)

const (
	contextHeader = "--- Context from previous conversations ---\n" +
		"Here is what you remember about this user:"
	contextFooter = "Use this context to personalize your responses and " +
		"recall relevant facts about the user when appropriate.\n" +
		"--- End of context ---"
)

// BuildInstructions appends retrieved memories to the base system prompt as
// a delimited context section. With no memories the base prompt is returned
// untouched. Pure string composition; the inputs are not mutated.
func BuildInstructions(basePrompt string, memories []*models.SemanticMemory) string {
	if len(memories) == 0 {
		return basePrompt
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\n")
	b.WriteString(contextHeader)
	b.WriteString("\n")
	for _, memory := range memories {
		line := memory.Summary
		if line == "" {
			line = memory.Content
		}
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(contextFooter)
	return b.String()
}
