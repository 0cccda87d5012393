package matching

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Confidence classifies the outcome of a resolution attempt.
type Confidence int

const (
	// NoMatch - no alias matched the normalized name
	NoMatch Confidence = iota
	// Exact - the normalized name is an alias key
	Exact
	// Fuzzy - an alias key matched above the similarity cutoff
	Fuzzy
	// Rejected - the best fuzzy candidate failed validation
	Rejected
	// Blacklisted - the name belongs to an excluded category
	Blacklisted
)

// String returns the string representation of the confidence level
func (c Confidence) String() string {
	switch c {
	case Exact:
		return "exact"
	case Fuzzy:
		return "fuzzy"
	case Rejected:
		return "rejected"
	case Blacklisted:
		return "blacklisted"
	default:
		return "no_match"
	}
}

// MarshalJSON implements json.Marshaler
func (c Confidence) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// MatchResult is the outcome of resolving one company name.
// Ticker and MatchedAlias are empty unless Confidence is Exact or Fuzzy.
type MatchResult struct {
	Name           string     `json:"name"`
	NormalizedName string     `json:"normalized_name"`
	Ticker         string     `json:"ticker,omitempty"`
	MatchedAlias   string     `json:"matched_alias,omitempty"`
	Score          int        `json:"score"`
	Confidence     Confidence `json:"confidence"`
}

const (
	// Minimum token-sort-ratio score for a fuzzy candidate.
	fuzzyScoreCutoff = 85
	// Names of one or two tokens need near-perfect similarity.
	shortNameScoreBar = 95
)

// Resolver maps company names to tickers using an alias table.
type Resolver struct {
	aliases *AliasTable
	logger  zerolog.Logger
}

// NewResolver creates a resolver over an immutable alias table.
func NewResolver(aliases *AliasTable) *Resolver {
	return &Resolver{
		aliases: aliases,
		logger:  log.With().Str("component", "resolver").Logger(),
	}
}

// Resolve maps a raw company name to a ticker. Deterministic: equal inputs
// always produce equal results, and fuzzy ties go to the lexicographically
// smallest alias key.
func (r *Resolver) Resolve(name string) MatchResult {
	normalized := Normalize(name)
	result := MatchResult{Name: name, NormalizedName: normalized}

	if normalized == "" {
		result.Confidence = NoMatch
		return result
	}

	if IsBlacklisted(name) {
		result.Confidence = Blacklisted
		return result
	}

	if ticker, ok := r.aliases.Lookup(normalized); ok {
		result.Ticker = ticker
		result.MatchedAlias = normalized
		result.Score = 100
		result.Confidence = Exact
		return result
	}

	bestKey, bestScore := r.bestFuzzyCandidate(normalized)
	if bestKey == "" {
		result.Confidence = NoMatch
		return result
	}

	result.MatchedAlias = bestKey
	result.Score = bestScore

	if len(strings.Fields(normalized)) <= 2 && bestScore < shortNameScoreBar {
		r.logger.Debug().
			Str("name", normalized).
			Str("candidate", bestKey).
			Int("score", bestScore).
			Msg("Rejecting short-name match below high-confidence bar")
		result.Confidence = Rejected
		return result
	}

	if bestScore < shortNameScoreBar && !hasSignificantOverlap(normalized, bestKey) {
		r.logger.Debug().
			Str("name", normalized).
			Str("candidate", bestKey).
			Int("score", bestScore).
			Msg("Rejecting match without significant word overlap")
		result.Confidence = Rejected
		return result
	}

	ticker, _ := r.aliases.Lookup(bestKey)
	result.Ticker = ticker
	result.Confidence = Fuzzy
	return result
}

// bestFuzzyCandidate scans alias keys in sorted order and keeps the first
// key with the strictly highest score at or above the cutoff.
func (r *Resolver) bestFuzzyCandidate(normalized string) (string, int) {
	bestKey := ""
	bestScore := 0
	for _, key := range r.aliases.Keys() {
		score := fuzzy.TokenSortRatio(normalized, key)
		if score >= fuzzyScoreCutoff && score > bestScore {
			bestKey = key
			bestScore = score
		}
	}
	return bestKey, bestScore
}

// hasSignificantOverlap reports whether the two normalized names share at
// least one token longer than two characters.
func hasSignificantOverlap(name, candidate string) bool {
	candidateWords := make(map[string]bool)
	for _, word := range strings.Fields(candidate) {
		candidateWords[word] = true
	}
	for _, word := range strings.Fields(name) {
		if len(word) > 2 && candidateWords[word] {
			return true
		}
	}
	return false
}
