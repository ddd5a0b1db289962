// Package topics extracts probable related-topic strings from free-form
// model output. It is a deliberate keyword-and-capitalization heuristic,
// not a semantic extractor: callers depend on its exact behavior (including
// the 5-item cap and the minimum length of 3), so it must not be "improved"
// without changing every consumer.
package topics

import (
	"regexp"
	"strings"
)

// MaxTopics is the hard cap on extracted candidates per text.
const MaxTopics = 5

// keywordCues mark lines likely to enumerate related topics.
var keywordCues = []string{
	"related to",
	"connected to",
	"similar to",
	"see also",
	"topics:",
	"concepts:",
}

var (
	// A capitalized word followed by letters/spaces, ending at a comma,
	// period, or end of line. Applied per line.
	capitalizedSeq = regexp.MustCompile(`[A-Z][a-zA-Z ]*[,.]|[A-Z][a-zA-Z ]*$`)

	// Fallback: bare capitalized words anywhere in the text.
	capitalizedWord = regexp.MustCompile(`[A-Z][a-zA-Z]+`)
)

// Extract returns up to MaxTopics candidate topic strings, in order of
// appearance, without deduplication. Identical input always yields
// identical output.
func Extract(text string) []string {
	var candidates []string

	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		matched := false
		for _, cue := range keywordCues {
			if strings.Contains(lower, cue) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, m := range capitalizedSeq.FindAllString(line, -1) {
			m = strings.TrimRight(m, ",.")
			m = strings.TrimSpace(m)
			if m != "" {
				candidates = append(candidates, m)
			}
		}
	}

	// No cue line produced anything: fall back to the first few capitalized
	// words in the whole text. Sentence-initial words are accepted false
	// positives here.
	if len(candidates) == 0 {
		candidates = capitalizedWord.FindAllString(text, MaxTopics)
	}

	out := make([]string, 0, MaxTopics)
	for _, c := range candidates {
		if len(c) <= 2 {
			continue
		}
		out = append(out, c)
		if len(out) == MaxTopics {
			break
		}
	}
	return out
}
