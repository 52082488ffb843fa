// Package payment matches free-text payment descriptions against the
// restaurant's configured payment methods.
package payment

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sabordacasa/pos-api/internal/textmatch"
)

// Method is a configured payment method.
type Method struct {
	ID     uuid.UUID
	Name   string
	Active bool
}

// ResolverConfig holds the tier scores. Exact matches must outrank prefixes,
// prefixes must outrank substrings.
type ResolverConfig struct {
	ExactScore     int
	PrefixScore    int
	SubstringScore int
}

func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		ExactScore:     3,
		PrefixScore:    2,
		SubstringScore: 1,
	}
}

type Resolver struct {
	cfg ResolverConfig
}

func NewResolver(cfg ResolverConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// PickBest returns the active method best matching the free-text query, or
// nil when nothing matches. Scoring is tiered: exact normalized equality,
// then prefix in either direction, then substring in either direction. Ties
// break on the smaller length difference, then alphabetically by name.
func (r *Resolver) PickBest(query string, methods []Method) *Method {
	q := textmatch.Normalize(query)
	if q == "" {
		return nil
	}

	var best *Method
	bestScore := 0
	bestLenDiff := 0

	for i := range methods {
		m := &methods[i]
		if !m.Active {
			continue
		}
		name := textmatch.Normalize(m.Name)
		score := r.score(q, name)
		if score == 0 {
			continue
		}

		lenDiff := len(name) - len(q)
		if lenDiff < 0 {
			lenDiff = -lenDiff
		}
		if best == nil || score > bestScore ||
			(score == bestScore && lenDiff < bestLenDiff) ||
			(score == bestScore && lenDiff == bestLenDiff && m.Name < best.Name) {
			best = m
			bestScore = score
			bestLenDiff = lenDiff
		}
	}
	return best
}

func (r *Resolver) score(query, name string) int {
	switch {
	case name == query:
		return r.cfg.ExactScore
	case strings.HasPrefix(name, query) || strings.HasPrefix(query, name):
		return r.cfg.PrefixScore
	case strings.Contains(name, query) || strings.Contains(query, name):
		return r.cfg.SubstringScore
	default:
		return 0
	}
}

// Names lists the method names sorted alphabetically, for error messages
// that tell the operator what the valid options are.
func Names(methods []Method) []string {
	names := make([]string, 0, len(methods))
	for _, m := range methods {
		if m.Active {
			names = append(names, m.Name)
		}
	}
	sort.Strings(names)
	return names
}
