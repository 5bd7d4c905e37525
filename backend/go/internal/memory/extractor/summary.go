package extractor

import (
	"sort"
	"strings"

	"EchoChat/backend/go/internal/models"
)

const summaryTruncateAt = 100

// GenerateSummary condenses one exchange into a short display string. Facts
// take precedence; without them the raw message is prefixed and truncated.
func GenerateSummary(userMessage string, facts []models.ExtractedFact) string {
	if len(facts) > 0 {
		// Stable sort keeps extraction order among equally important facts.
		sorted := make([]models.ExtractedFact, len(facts))
		copy(sorted, facts)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Importance > sorted[j].Importance
		})
		if len(sorted) > 3 {
			sorted = sorted[:3]
		}

		parts := make([]string, len(sorted))
		for i, fact := range sorted {
			parts[i] = fact.Fact
		}
		return strings.Join(parts, ". ")
	}

	if strings.Contains(userMessage, "?") {
		return "User asked: " + truncate(userMessage, summaryTruncateAt)
	}
	if len(userMessage) > 50 {
		return "User said: " + truncate(userMessage, summaryTruncateAt)
	}
	return userMessage
}

// truncate cuts s at limit runes, appending an ellipsis when it actually cut.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
