package enrichment

import "strings"

// industryKeywords expands a declared industry into the related terms the
// matcher compares against program eligibility lists. Keys are normalized
// industry names; unknown industries fall back to the industry itself.
var industryKeywords = map[string][]string{
	"software":      {"software", "saas", "ict", "technology", "digital"},
	"technology":    {"technology", "ict", "digital", "software"},
	"biotech":       {"biotech", "life science", "pharma", "health"},
	"health":        {"health", "wellbeing", "medical", "life science"},
	"cleantech":     {"cleantech", "energy", "circular economy", "sustainability"},
	"manufacturing": {"manufacturing", "industrial", "machinery", "production"},
	"food":          {"food", "agrifood", "agriculture"},
	"retail":        {"retail", "commerce", "consumer"},
	"logistics":     {"logistics", "transport", "supply chain"},
	"construction":  {"construction", "real estate", "infrastructure"},
	"energy":        {"energy", "renewable", "cleantech"},
	"tourism":       {"tourism", "travel", "hospitality"},
	"gaming":        {"gaming", "games", "entertainment", "software"},
	"fintech":       {"fintech", "finance", "software", "technology"},
}

// deriveKeywords returns the keyword expansion for an industry. The declared
// industry is always included.
func deriveKeywords(industry string) []string {
	normalized := strings.ToLower(strings.TrimSpace(industry))
	if normalized == "" {
		return nil
	}

	expanded, ok := industryKeywords[normalized]
	if !ok {
		return []string{normalized}
	}

	out := make([]string, 0, len(expanded)+1)
	seen := map[string]bool{}
	for _, kw := range append([]string{normalized}, expanded...) {
		if !seen[kw] {
			seen[kw] = true
			out = append(out, kw)
		}
	}
	return out
}
