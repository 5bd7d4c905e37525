package extractor

import (
	"strings"

	"EchoChat/backend/go/internal/models"
)

// CalculateImportance scores one exchange on a 1-10 scale. Every signal sets
// a floor and the highest floor wins; a later signal never lowers a score an
// earlier one established.
func CalculateImportance(userMessage string, facts []models.ExtractedFact) int {
	score := 5

	raiseTo := func(floor int) {
		if score < floor {
			score = floor
		}
	}

	for _, fact := range facts {
		switch fact.Type {
		case models.FactPersonalInfo:
			raiseTo(9)
		case models.FactLocation:
			raiseTo(8)
		case models.FactWork:
			raiseTo(7)
		}
	}

	if strings.Contains(userMessage, "?") {
		raiseTo(6)
	}
	if len(userMessage) > 200 {
		raiseTo(6)
	}

	return score
}
