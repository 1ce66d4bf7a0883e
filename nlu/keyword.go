package nlu

import (
	"context"
	"sort"
	"strings"

	"github.com/radiantlogicinc/TalkEngine/command"
)

// Match confidence levels for the keyword classifier.
const (
	wordMatchScore      = 0.9
	substringMatchScore = 0.7
	noMatchScore        = 0.1
)

// KeywordClassifier matches queries against command name labels. A
// whole-word match on a command's name (or its spaced variant) scores 0.9, a
// substring match 0.7. Ties at the top score leave Command empty so the
// engine can ask the user to choose.
type KeywordClassifier struct{}

var _ Classifier = (*KeywordClassifier)(nil)

// NewKeywordClassifier creates the default classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify scores every non-excluded catalog command against the query.
func (c *KeywordClassifier) Classify(ctx context.Context, query string, catalog *command.Catalog, history []HistoryEntry, excluded []string) (Classification, error) {
	skip := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		skip[name] = true
	}

	available := 0
	var candidates []ScoredCommand
	queryLower := strings.ToLower(query)

	for _, name := range catalog.Names() {
		if skip[name] {
			continue
		}
		available++

		score := 0.0
		for _, label := range command.Labels(name) {
			if containsWord(queryLower, label) {
				score = wordMatchScore
				break
			}
			if strings.Contains(queryLower, label) && score < substringMatchScore {
				score = substringMatchScore
			}
		}
		if score > 0 {
			candidates = append(candidates, ScoredCommand{Command: name, Score: score})
		}
	}

	if available == 0 {
		return Classification{Confidence: 0.0}, nil
	}
	if len(candidates) == 0 {
		return Classification{Confidence: noMatchScore}, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Command < candidates[j].Command
	})

	top := candidates[0]
	if len(candidates) > 1 && candidates[1].Score == top.Score {
		// Tied best matches: report the ambiguity instead of picking one.
		return Classification{Confidence: top.Score, Candidates: candidates}, nil
	}

	return Classification{
		Command:    top.Command,
		Confidence: top.Score,
		Candidates: candidates,
	}, nil
}

// containsWord reports whether label occurs in text on word boundaries.
func containsWord(text, label string) bool {
	if text == label {
		return true
	}
	if strings.Contains(" "+text+" ", " "+label+" ") {
		return true
	}
	return false
}
