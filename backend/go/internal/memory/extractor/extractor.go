// Package extractor derives durable facts about a user from conversational
// text. Extraction is rule based: each rule covers one family of phrasings
// and yields zero or more facts, and rules run independently so a single
// exchange can produce facts of several types.
package extractor

import (
	"EchoChat/backend/go/internal/models"
)

// Rule matches one family of phrasings against exchange text.
type Rule interface {
	// Name identifies the rule in logs and tests.
	Name() string
	// Match returns all facts the rule finds in text. text is the combined
	// exchange, not just the user message.
	Match(text string) []models.ExtractedFact
}

// Extractor runs an ordered rule set over conversational exchanges. It is
// stateless and safe for concurrent use.
type Extractor struct {
	rules []Rule
}

// New returns an Extractor with the default rule set.
func New() *Extractor {
	return &Extractor{
		rules: []Rule{
			personalInfoRule{},
			locationRule{},
			workRule{},
			preferenceRule{},
		},
	}
}

// ExtractFacts runs every rule over the exchange and concatenates their
// results. Results are not deduplicated across rules. The function is pure
// and deterministic.
func (e *Extractor) ExtractFacts(userMessage, assistantResponse string) []models.ExtractedFact {
	text := "User: " + userMessage
	if assistantResponse != "" {
		text += "\nAssistant: " + assistantResponse
	}

	var facts []models.ExtractedFact
	for _, rule := range e.rules {
		facts = append(facts, rule.Match(text)...)
	}
	return facts
}
