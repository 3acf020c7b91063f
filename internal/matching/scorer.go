// Package matching resolves free-text exercise names against catalogs.
package matching

import (
	"strings"
)

// Normalize lowercases, folds hyphens and underscores into spaces, trims
// and collapses runs of whitespace.
func Normalize(name string) string {
	return strings.Join(strings.Fields(separators.Replace(strings.ToLower(name))), " ")
}

var separators = strings.NewReplacer("-", " ", "_", " ")

// Tier orders the kinds of match from weakest to strongest.
type Tier int

const (
	TierNone Tier = iota
	TierTokens
	TierContains
	TierPrefix
	TierExact
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierPrefix:
		return "prefix"
	case TierContains:
		return "contains"
	case TierTokens:
		return "tokens"
	}
	return "none"
}

// Scorer rates how well candidate matches query. Within a tier, a higher
// closeness in (0, 1] wins.
type Scorer interface {
	Score(query, candidate string) (Tier, float64)
}

// RankedScorer is exact > prefix > containment > token-set overlap.
// Within prefix and containment the closer lengths win, within token
// overlap the higher Jaccard index wins.
type RankedScorer struct{}

func (RankedScorer) Score(query, candidate string) (Tier, float64) {
	q, c := Normalize(query), Normalize(candidate)
	if q == "" || c == "" {
		return TierNone, 0
	}
	if q == c {
		return TierExact, 1
	}
	ratio := lengthRatio(q, c)
	if strings.HasPrefix(c, q) || strings.HasPrefix(q, c) {
		return TierPrefix, ratio
	}
	if strings.Contains(c, q) || strings.Contains(q, c) {
		return TierContains, ratio
	}
	if j := jaccard(tokens(q), tokens(c)); j > 0 {
		return TierTokens, j
	}
	return TierNone, 0
}

func lengthRatio(a, b string) float64 {
	la, lb := len(a), len(b)
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb)
}

func tokens(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, t := range strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '-' || r == '_' || r == '/' }) {
		out[t] = struct{}{}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Match is the outcome of Best. Index is -1 when nothing matched.
type Match struct {
	Index     int
	Tier      Tier
	Closeness float64
}

// Found reports whether any candidate matched at all.
func (m Match) Found() bool { return m.Index >= 0 }

// Confident reports whether the match is strong enough to act on without
// asking: substring or better, or at least half of the tokens shared.
func (m Match) Confident() bool {
	return m.Tier >= TierContains || (m.Tier == TierTokens && m.Closeness >= 0.5)
}

func (m Match) better(o Match) bool {
	if m.Tier != o.Tier {
		return m.Tier > o.Tier
	}
	return m.Closeness > o.Closeness
}

// Best returns the highest-scoring candidate. Ties keep the earlier candidate.
func Best(s Scorer, query string, candidates []string) Match {
	best := Match{Index: -1}
	for i, c := range candidates {
		tier, closeness := s.Score(query, c)
		if tier == TierNone {
			continue
		}
		m := Match{Index: i, Tier: tier, Closeness: closeness}
		if !best.Found() || m.better(best) {
			best = m
		}
	}
	return best
}
