// Package matching resolves free-form company names to stock tickers.
//
// Resolution runs in stages: normalization, blacklist classification,
// exact alias lookup, then fuzzy scoring against the alias table.
package matching

import (
	"regexp"
	"strings"
)

var (
	articlePrefixes = []string{"the ", "a ", "an "}

	// Corporate designators dropped as whole tokens after punctuation cleanup.
	suffixTokens = map[string]bool{
		"inc": true, "incorporated": true, "corp": true, "corporation": true,
		"company": true, "co": true, "ltd": true, "limited": true, "llc": true,
		"technologies": true, "technology": true, "tech": true, "systems": true,
		"solutions": true, "enterprises": true, "holdings": true, "group": true,
		"international": true, "worldwide": true, "global": true,
		"services": true, "industries": true,
	}

	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize reduces a raw company name to its canonical matching key:
// lowercase, leading article removed, punctuation collapsed to spaces,
// corporate suffix tokens dropped. Returns "" for empty input or input
// consisting entirely of punctuation and suffix tokens. Idempotent.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}

	// At most one leading article is stripped.
	for _, prefix := range articlePrefixes {
		if strings.HasPrefix(name, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	name = nonWordRe.ReplaceAllString(name, " ")
	name = strings.TrimSpace(whitespaceRe.ReplaceAllString(name, " "))

	words := strings.Fields(name)
	kept := words[:0]
	for _, word := range words {
		if !suffixTokens[word] {
			kept = append(kept, word)
		}
	}

	return strings.Join(kept, " ")
}
