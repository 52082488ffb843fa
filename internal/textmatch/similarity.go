package textmatch

import "strings"

// ScorerConfig holds the weights and filters for the blended similarity
// score. Passing it in (instead of package-level constants) lets tests run
// with alternate tunings.
type ScorerConfig struct {
	DiceWeight       float64
	TokenWeight      float64
	MeaningfulWeight float64
	SubstringBonus   float64

	// DiceGuard is the minimum bigram Dice coefficient required to accept a
	// candidate that shares no meaningful tokens with the query.
	DiceGuard float64

	// StopWords are generic neighborhood qualifiers ignored when deciding
	// whether two strings share meaningful tokens.
	StopWords []string
}

// DefaultScorerConfig returns the tuning used in production. The stop-word
// list targets short Brazilian neighborhood labels, not general text.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		DiceWeight:       0.35,
		TokenWeight:      0.25,
		MeaningfulWeight: 0.30,
		SubstringBonus:   0.10,
		DiceGuard:        0.6,
		StopWords: []string{
			"bairro", "jardim", "jd", "vila", "vl", "parque", "pq",
			"residencial", "res", "conjunto", "conj", "setor",
			"loteamento", "chacara", "sitio", "distrito", "zona",
			"de", "do", "da", "dos", "das",
		},
	}
}

// Scorer computes a blended similarity between two short strings using
// character-bigram overlap and token-set overlap.
type Scorer struct {
	cfg       ScorerConfig
	stopWords map[string]bool
}

func NewScorer(cfg ScorerConfig) *Scorer {
	s := &Scorer{
		cfg:       cfg,
		stopWords: make(map[string]bool, len(cfg.StopWords)),
	}
	for _, w := range cfg.StopWords {
		s.stopWords[Normalize(w)] = true
	}
	return s
}

// Similarity returns a score in [0,1]. It is symmetric, 1 for equal
// normalized inputs, and 0 for empty or single-character inputs that are
// not identical.
func (s *Scorer) Similarity(query, candidate string) float64 {
	q := Normalize(query)
	c := Normalize(candidate)

	if q == c {
		if q == "" {
			return 0
		}
		return 1
	}
	if len([]rune(q)) <= 1 || len([]rune(c)) <= 1 {
		return 0
	}

	qTokens := strings.Fields(q)
	cTokens := strings.Fields(c)
	qMeaningful := s.filterTokens(qTokens)
	cMeaningful := s.filterTokens(cTokens)

	dice := diceCoefficient(q, c)
	tokenOverlap := setOverlap(qTokens, cTokens)
	meaningfulOverlap := setOverlap(qMeaningful, cMeaningful)

	// A pair whose only shared tokens are generic qualifiers ("jardim X" vs
	// "jardim Y") must not match on those qualifiers alone.
	if (len(qMeaningful) > 0 || len(cMeaningful) > 0) &&
		meaningfulOverlap == 0 && dice < s.cfg.DiceGuard {
		return 0
	}

	score := s.cfg.DiceWeight*dice +
		s.cfg.TokenWeight*tokenOverlap +
		s.cfg.MeaningfulWeight*meaningfulOverlap
	if strings.Contains(q, c) || strings.Contains(c, q) {
		score += s.cfg.SubstringBonus
	}
	if score > 1 {
		score = 1
	}
	return score
}

// filterTokens drops stop words and single-character tokens.
func (s *Scorer) filterTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len([]rune(tok)) <= 1 || s.stopWords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// diceCoefficient computes the Dice coefficient over character-bigram
// multisets: each bigram instance on one side can satisfy at most one
// instance on the other.
func diceCoefficient(a, b string) float64 {
	aBigrams, aTotal := bigrams(a)
	bBigrams, bTotal := bigrams(b)
	if aTotal+bTotal == 0 {
		return 0
	}

	shared := 0
	for g, n := range aBigrams {
		m := bBigrams[g]
		if m < n {
			shared += m
		} else {
			shared += n
		}
	}
	return 2 * float64(shared) / float64(aTotal+bTotal)
}

func bigrams(s string) (map[string]int, int) {
	runes := []rune(s)
	counts := make(map[string]int)
	total := 0
	for i := 0; i+1 < len(runes); i++ {
		counts[string(runes[i:i+2])]++
		total++
	}
	return counts, total
}

// setOverlap is |A ∩ B| / max(|A|, |B|) over the deduplicated token sets.
func setOverlap(a, b []string) float64 {
	aSet := toSet(a)
	bSet := toSet(b)
	if len(aSet) == 0 || len(bSet) == 0 {
		return 0
	}

	shared := 0
	for tok := range aSet {
		if bSet[tok] {
			shared++
		}
	}
	max := len(aSet)
	if len(bSet) > max {
		max = len(bSet)
	}
	return float64(shared) / float64(max)
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[tok] = true
	}
	return set
}
