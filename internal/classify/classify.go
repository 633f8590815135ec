package classify

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

const (
	// CategoryOther is assigned when no candidate clears the threshold.
	CategoryOther = "Other"
	// CategoryUnknown is assigned when the mark is absent.
	CategoryUnknown = "Unknown"

	DefaultThreshold = 70
)

// Classifier maps free-text shipment marks onto a fixed candidate category
// list. Classification is a pure function of (mark, categories, threshold):
// the same inputs always yield the same category.
type Classifier struct {
	categories []string
	threshold  float64
	lev        *metrics.Levenshtein
}

// New builds a classifier over the caller-supplied candidate list. The list
// order is significant: the first candidate wins score ties.
func New(categories []string, threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = false
	return &Classifier{
		categories: append([]string(nil), categories...),
		threshold:  threshold,
		lev:        lev,
	}
}

// Classify returns the best-matching category for a mark, CategoryOther if
// no score reaches the threshold, or CategoryUnknown for an absent mark.
func (c *Classifier) Classify(mark string) string {
	if strings.TrimSpace(mark) == "" || len(c.categories) == 0 {
		return CategoryUnknown
	}

	best := ""
	bestScore := -1.0
	for _, category := range c.categories {
		score := c.tokenSetRatio(mark, category)
		if score > bestScore {
			best = category
			bestScore = score
		}
	}
	if bestScore >= c.threshold {
		return best
	}
	return CategoryOther
}

// Categories returns the candidate list in its significant order.
func (c *Classifier) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Threshold returns the minimum accepted score.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// TokenSetRatio scores two strings on a 0-100 scale, insensitive to case,
// token order, and token repetition. Symmetric: TokenSetRatio(a, b) ==
// TokenSetRatio(b, a).
func TokenSetRatio(a, b string) float64 {
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = false
	return ratio(a, b, lev)
}

func (c *Classifier) tokenSetRatio(a, b string) float64 {
	return ratio(a, b, c.lev)
}

func ratio(a, b string, lev *metrics.Levenshtein) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	var inter, diffA, diffB []string
	for _, tok := range tokensA {
		if contains(tokensB, tok) {
			inter = append(inter, tok)
		} else {
			diffA = append(diffA, tok)
		}
	}
	for _, tok := range tokensB {
		if !contains(tokensA, tok) {
			diffB = append(diffB, tok)
		}
	}

	base := strings.Join(inter, " ")
	combinedA := strings.TrimSpace(base + " " + strings.Join(diffA, " "))
	combinedB := strings.TrimSpace(base + " " + strings.Join(diffB, " "))

	score := strutil.Similarity(combinedA, combinedB, lev)
	if base != "" {
		if s := strutil.Similarity(base, combinedA, lev); s > score {
			score = s
		}
		if s := strutil.Similarity(base, combinedB, lev); s > score {
			score = s
		}
	}
	return score * 100
}

// tokenSet lowercases, splits on whitespace, deduplicates and sorts.
func tokenSet(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

func contains(sorted []string, target string) bool {
	i := sort.SearchStrings(sorted, target)
	return i < len(sorted) && sorted[i] == target
}
