package extractor

import (
	"regexp"
	"strings"

	"EchoChat/backend/go/internal/models"
)

// Trigger phrases match case-insensitively, but name and place captures stay
// case-sensitive: requiring capitalized tokens after the trigger is what
// separates "I'm Alice" from "I'm tired".
var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?i:my name is|i'?m|i am|call me)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
		regexp.MustCompile(`\b(?i:this is)\s+([A-Z][a-z]+)\s+(?i:speaking|here)`),
	}

	livesInPattern = regexp.MustCompile(`\b(?i:i live in|i'?m from|i am from|based in|located in)\s+([A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*)*)`)
	fromCityRegion = regexp.MustCompile(`\b(?i:from)\s+([A-Z][a-z]+),\s*([A-Z][a-z]+)`)

	worksAsPattern = regexp.MustCompile(`(?i)\b(?:i work as|i am a|i'm a|my job is|i do)\s+([^,.!?\n]+)`)
	worksAtPattern = regexp.MustCompile(`(?i)\b(?:work at|employed by|job at)\s+([^,.!?\n]+)`)

	positivePreference = regexp.MustCompile(`(?i)\b(?:i prefer|i like|i love|i enjoy)\s+([^,.!?\n]+)`)
	negativePreference = regexp.MustCompile(`(?i)\b(?:i don'?t like|i dislike|i hate)\s+([^,.!?\n]+)`)
	favoritePattern    = regexp.MustCompile(`(?i)\bfavou?rite(?:\s+\w+)?\s+(?:is|are)\s+([^,.!?\n]+)`)
	negativeTrigger    = regexp.MustCompile(`(?i)\b(?:i don'?t like|i dislike|i hate)\b`)
)

// clean trims a capture and rejects fragments too short to be meaningful.
func clean(capture string) (string, bool) {
	s := strings.TrimSpace(capture)
	if len(s) <= 2 {
		return "", false
	}
	return s, true
}

// personalInfoRule captures self-introductions.
type personalInfoRule struct{}

func (personalInfoRule) Name() string { return "personal_info" }

func (personalInfoRule) Match(text string) []models.ExtractedFact {
	var facts []models.ExtractedFact
	for _, pattern := range namePatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			name, ok := clean(m[1])
			if !ok {
				continue
			}
			facts = append(facts, models.ExtractedFact{
				Fact:       "User's name is " + name,
				Type:       models.FactPersonalInfo,
				Importance: 9,
			})
		}
	}
	return facts
}

// locationRule captures where the user lives or comes from.
type locationRule struct{}

func (locationRule) Name() string { return "location" }

func (locationRule) Match(text string) []models.ExtractedFact {
	var facts []models.ExtractedFact
	for _, m := range livesInPattern.FindAllStringSubmatch(text, -1) {
		place, ok := clean(m[1])
		if !ok {
			continue
		}
		facts = append(facts, models.ExtractedFact{
			Fact:       "User lives in " + place,
			Type:       models.FactLocation,
			Importance: 8,
		})
	}
	// "from Paris, France" style: keep city and region together.
	for _, m := range fromCityRegion.FindAllStringSubmatch(text, -1) {
		facts = append(facts, models.ExtractedFact{
			Fact:       "User is from " + m[1] + ", " + m[2],
			Type:       models.FactLocation,
			Importance: 8,
		})
	}
	return facts
}

// workRule captures occupation and employer statements.
type workRule struct{}

func (workRule) Name() string { return "work" }

func (workRule) Match(text string) []models.ExtractedFact {
	var facts []models.ExtractedFact
	for _, m := range worksAsPattern.FindAllStringSubmatch(text, -1) {
		role, ok := clean(m[1])
		if !ok {
			continue
		}
		facts = append(facts, models.ExtractedFact{
			Fact:       "User works as " + role,
			Type:       models.FactWork,
			Importance: 7,
		})
	}
	for _, m := range worksAtPattern.FindAllStringSubmatch(text, -1) {
		org, ok := clean(m[1])
		if !ok {
			continue
		}
		facts = append(facts, models.ExtractedFact{
			Fact:       "User works at " + org,
			Type:       models.FactWork,
			Importance: 7,
		})
	}
	return facts
}

// preferenceRule captures likes and dislikes. Polarity is decided once for
// the whole exchange: if any negative trigger appears anywhere in the text,
// every preference in that exchange is recorded as a dislike. This coarse
// exchange-level scope is intentional; do not switch to per-match polarity
// without a product decision.
type preferenceRule struct{}

func (preferenceRule) Name() string { return "preference" }

func (preferenceRule) Match(text string) []models.ExtractedFact {
	verb := "likes"
	if negativeTrigger.MatchString(text) {
		verb = "dislikes"
	}

	var facts []models.ExtractedFact
	add := func(capture string) {
		thing, ok := clean(capture)
		if !ok {
			return
		}
		facts = append(facts, models.ExtractedFact{
			Fact:       "User " + verb + " " + thing,
			Type:       models.FactPreference,
			Importance: 5,
		})
	}

	for _, m := range positivePreference.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range negativePreference.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range favoritePattern.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	return facts
}
