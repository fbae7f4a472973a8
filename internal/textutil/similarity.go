package textutil

import (
	"sort"
)

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for gram, count := range a.grams {
		if other, ok := b.grams[gram]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return min(dot/(a.norm*b.norm), 1)
}

// Match is one suggestion with its score.
type Match struct {
	Tag   string
	Score float64
}

// Suggest returns up to limit candidates scoring at least threshold against
// tag, best first. Exact matches are excluded since they need no suggestion.
// Ties keep candidate order.
func Suggest(tag string, candidates []string, threshold float64, limit int) []Match {
	query := NewFingerprint(tag)
	if query == nil || limit <= 0 {
		return nil
	}
	var matches []Match
	for _, candidate := range candidates {
		if candidate == tag {
			continue
		}
		score := CosineSimilarity(query, NewFingerprint(candidate))
		if score >= threshold {
			matches = append(matches, Match{Tag: candidate, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
