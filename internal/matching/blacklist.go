package matching

import "strings"

// Entertainment and media companies that are publicly traded and must not
// be caught by the blacklist terms below. Checked first, as substrings of
// the normalized name.
var allowlistTerms = []string{
	"world wrestling entertainment", "wwe", "light & wonder", "light and wonder",
	"igt", "mob entertainment", "playn go", "play n go", "euro games technology",
	"push gaming", "disney", "netflix", "spotify", "sony", "warner", "universal",
}

// Terms indicating small private entities (labels, studios, law firms,
// shell LLCs) that fuzzy matching tends to pair with unrelated tickers.
var blacklistTerms = []string{
	"fireheart music", "fireheart music inc", "music inc", "entertainment llc",
	"holdings llc", "management llc", "ventures llc", "capital llc",
	"music publishing", "records", "label", "studio", "films",
	"production company", "media group", "creative", "design",
	"consulting", "law firm", "legal services", "attorneys",
	"private limited", "ltd", "limited company", "partnership",
	"independent", "freelance", "consultant", "agency",
}

// Broad category keywords applied after the explicit blacklist.
var blacklistKeywords = []string{"music", "entertainment", "wrestling", "films", "records"}

// IsBlacklisted reports whether a company name belongs to a category that
// must never be matched to a ticker. The allowlist wins over every
// blacklist rule; all checks are substring checks on the normalized name.
func IsBlacklisted(name string) bool {
	normalized := Normalize(name)

	for _, term := range allowlistTerms {
		if strings.Contains(normalized, term) {
			return false
		}
	}

	for _, term := range blacklistTerms {
		if strings.Contains(normalized, term) {
			return true
		}
	}

	for _, keyword := range blacklistKeywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}

	return false
}
