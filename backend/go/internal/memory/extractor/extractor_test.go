package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EchoChat/backend/go/internal/models"
)

func factStrings(facts []models.ExtractedFact) []string {
	out := make([]string, len(facts))
	for i, f := range facts {
		out[i] = f.Fact
	}
	return out
}

func TestExtractFacts_SelfIntroduction(t *testing.T) {
	e := New()
	facts := e.ExtractFacts("Hi, my name is Alice and I live in Paris, France", "")

	var personal, location *models.ExtractedFact
	for i := range facts {
		switch facts[i].Type {
		case models.FactPersonalInfo:
			personal = &facts[i]
		case models.FactLocation:
			if location == nil {
				location = &facts[i]
			}
		}
	}

	require.NotNil(t, personal, "expected a personal_info fact, got %v", factStrings(facts))
	assert.Equal(t, "User's name is Alice", personal.Fact)
	assert.Equal(t, 9, personal.Importance)

	require.NotNil(t, location, "expected a location fact, got %v", factStrings(facts))
	assert.Contains(t, location.Fact, "Paris")
	assert.Equal(t, 8, location.Importance)
}

func TestExtractFacts_Deterministic(t *testing.T) {
	e := New()
	msg := "I'm Bob, I work as a plumber and I love fishing"

	first := e.ExtractFacts(msg, "Nice to meet you, Bob!")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.ExtractFacts(msg, "Nice to meet you, Bob!"))
	}
}

func TestExtractFacts_WorkAndPreference(t *testing.T) {
	e := New()
	facts := e.ExtractFacts("I work as a software engineer and I enjoy hiking", "")

	var types []models.FactType
	for _, f := range facts {
		types = append(types, f.Type)
	}
	assert.Contains(t, types, models.FactWork)
	assert.Contains(t, types, models.FactPreference)
}

func TestExtractFacts_LowercaseNameRejected(t *testing.T) {
	e := New()
	facts := e.ExtractFacts("i'm tired of waiting", "")
	for _, f := range facts {
		assert.NotEqual(t, models.FactPersonalInfo, f.Type, "got %q", f.Fact)
	}
}

func TestExtractFacts_NegationAppliesToWholeExchange(t *testing.T) {
	e := New()
	// One negative trigger flips every preference in the exchange. This is
	// deliberate exchange-level polarity, not a per-match decision.
	facts := e.ExtractFacts("I like jazz but I hate traffic noise", "")

	var prefs []string
	for _, f := range facts {
		if f.Type == models.FactPreference {
			prefs = append(prefs, f.Fact)
		}
	}
	require.NotEmpty(t, prefs)
	for _, fact := range prefs {
		assert.True(t, strings.HasPrefix(fact, "User dislikes "), "got %q", fact)
	}
}

func TestExtractFacts_PositiveOnlyExchangeKeepsLikes(t *testing.T) {
	e := New()
	facts := e.ExtractFacts("I love hiking. I enjoy photography", "")

	var prefs []string
	for _, f := range facts {
		if f.Type == models.FactPreference {
			prefs = append(prefs, f.Fact)
		}
	}
	require.Len(t, prefs, 2)
	for _, fact := range prefs {
		assert.True(t, strings.HasPrefix(fact, "User likes "), "got %q", fact)
	}
}

func TestExtractFacts_ShortCapturesDropped(t *testing.T) {
	e := New()
	facts := e.ExtractFacts("I like it", "")
	for _, f := range facts {
		assert.NotEqual(t, models.FactPreference, f.Type, "got %q", f.Fact)
	}
}

func TestCalculateImportance_Floors(t *testing.T) {
	tests := []struct {
		name    string
		message string
		facts   []models.ExtractedFact
		want    int
	}{
		{"baseline", "hello there", nil, 5},
		{"question", "what time is it?", nil, 6},
		{"long message", strings.Repeat("a", 201), nil, 6},
		{"work fact", "x", []models.ExtractedFact{{Type: models.FactWork}}, 7},
		{"location fact", "x", []models.ExtractedFact{{Type: models.FactLocation}}, 8},
		{"personal info wins", "x?", []models.ExtractedFact{
			{Type: models.FactWork},
			{Type: models.FactPersonalInfo},
			{Type: models.FactLocation},
		}, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateImportance(tt.message, tt.facts))
		})
	}
}

func TestCalculateImportance_PersonalInfoAlwaysAtLeastNine(t *testing.T) {
	facts := []models.ExtractedFact{
		{Type: models.FactPreference},
		{Type: models.FactPersonalInfo},
	}
	assert.GreaterOrEqual(t, CalculateImportance("short", facts), 9)
}

func TestGenerateSummary_FactsTakePrecedence(t *testing.T) {
	e := New()
	msg := "Hi, my name is Alice and I live in Paris, France"
	facts := e.ExtractFacts(msg, "")

	summary := GenerateSummary(msg, facts)
	assert.True(t, strings.HasPrefix(summary, "User's name is Alice"), "got %q", summary)
}

func TestGenerateSummary_TopThreeByImportance(t *testing.T) {
	facts := []models.ExtractedFact{
		{Fact: "a", Importance: 5},
		{Fact: "b", Importance: 9},
		{Fact: "c", Importance: 5},
		{Fact: "d", Importance: 8},
	}
	// b (9), d (8), then a before c: ties keep extraction order.
	assert.Equal(t, "b. d. a", GenerateSummary("irrelevant", facts))
}

func TestGenerateSummary_Question(t *testing.T) {
	summary := GenerateSummary("What is the capital of France?", nil)
	assert.Equal(t, "User asked: What is the capital of France?", summary)
}

func TestGenerateSummary_LongMessageTruncated(t *testing.T) {
	msg := strings.Repeat("x", 150)
	summary := GenerateSummary(msg, nil)

	require.True(t, strings.HasPrefix(summary, "User said: "))
	body := strings.TrimPrefix(summary, "User said: ")
	assert.Equal(t, strings.Repeat("x", 100)+"...", body)
}

func TestGenerateSummary_ShortMessageVerbatim(t *testing.T) {
	assert.Equal(t, "hello there", GenerateSummary("hello there", nil))
}
