package narrative

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/wonny/magicformula/internal/contracts"
)

const (
	minConfidence = 1
	maxConfidence = 100
)

// rawNarrative tolerates fractional confidence scores
type rawNarrative struct {
	Recommendations []struct {
		Symbol       string  `json:"symbol"`
		Confidence   float64 `json:"confidence"`
		Reasoning    string  `json:"reasoning"`
		MarketTrends string  `json:"marketTrends"`
	} `json:"recommendations"`
	MarketSummary string `json:"marketSummary"`
}

// parseNarrative decodes a model reply, with or without a ```json fence
func parseNarrative(content string) (*contracts.Narrative, error) {
	body := stripFence(content)
	if body == "" {
		return nil, errors.New("empty reply")
	}

	var raw rawNarrative
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}

	narrative := &contracts.Narrative{
		Recommendations: make([]contracts.PickNarrative, 0, len(raw.Recommendations)),
		MarketSummary:   strings.TrimSpace(raw.MarketSummary),
	}
	for _, r := range raw.Recommendations {
		symbol := strings.TrimSpace(r.Symbol)
		if symbol == "" {
			continue
		}
		narrative.Recommendations = append(narrative.Recommendations, contracts.PickNarrative{
			Symbol:       symbol,
			Confidence:   clampConfidence(r.Confidence),
			Reasoning:    strings.TrimSpace(r.Reasoning),
			MarketTrends: strings.TrimSpace(r.MarketTrends),
		})
	}

	return narrative, nil
}

func stripFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line (``` or ```json)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func clampConfidence(v float64) int {
	if math.IsNaN(v) {
		return minConfidence
	}
	// Clamp before converting; huge floats overflow int
	return int(math.Round(math.Max(minConfidence, math.Min(maxConfidence, v))))
}
