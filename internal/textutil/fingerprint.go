package textutil

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const gramSize = 3

// Fingerprint represents a trigram frequency vector for one tag.
type Fingerprint struct {
	grams map[string]float64
	norm  float64
}

// NewFingerprint creates a fingerprint from tag. Returns nil for blank input.
func NewFingerprint(tag string) *Fingerprint {
	grams := Trigrams(tag)
	if len(grams) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(grams))
	for _, gram := range grams {
		counts[gram]++
	}
	var sum float64
	for _, count := range counts {
		sum += count * count
	}
	return &Fingerprint{grams: counts, norm: math.Sqrt(sum)}
}

// Trigrams lowercases and pads tag, then returns its overlapping
// three-character windows. Underscores and hyphens count as spaces so
// "blue_hair" and "blue hair" fingerprint alike.
func Trigrams(tag string) []string {
	tag = strings.TrimSpace(norm.NFC.String(strings.ToLower(tag)))
	if tag == "" {
		return nil
	}
	tag = strings.NewReplacer("_", " ", "-", " ").Replace(tag)
	runes := []rune("  " + tag + " ")
	grams := make([]string, 0, len(runes)-gramSize+1)
	for i := 0; i+gramSize <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+gramSize]))
	}
	return grams
}

// GramCount returns the number of distinct trigrams in the fingerprint.
func (f *Fingerprint) GramCount() int {
	if f == nil {
		return 0
	}
	return len(f.grams)
}
