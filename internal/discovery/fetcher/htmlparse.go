package fetcher

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// candidate is one potential program extracted from the listing markup.
type candidate struct {
	name        string
	description string
}

const (
	minNameLen        = 5
	maxNameLen        = 200
	minDescriptionLen = 20
)

// sectionClass matches container classes the Finnish funding sites use for
// program listings. The sites do not expose a stable API, so extraction is
// heuristic and tolerant of layout drift.
var sectionClass = regexp.MustCompile(`(?i)(program|funding|grant|service|product|card|teaser|listing|item|lift)`)

// skipTerms marks navigation chrome that matches the section heuristic but
// is never a program.
var skipTerms = []string{
	"cookie", "navigation", "footer", "login", "search",
	"newsletter", "contact us", "accessibility", "privacy",
}

// extractCandidates scans the document for program-like sections and returns
// deduplicated (name, description) pairs in document order.
func extractCandidates(doc *goquery.Document) []candidate {
	seen := make(map[string]bool)
	var out []candidate

	doc.Find("div, section, article, li").Each(func(_ int, sel *goquery.Selection) {
		class, _ := sel.Attr("class")
		if !sectionClass.MatchString(class) {
			return
		}

		name := strings.TrimSpace(sel.Find("h1, h2, h3, h4, .title, .heading").First().Text())
		if !validProgramName(name) {
			return
		}

		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true

		out = append(out, candidate{
			name:        name,
			description: firstParagraph(sel),
		})
	})

	return out
}

func validProgramName(name string) bool {
	if len(name) < minNameLen || len(name) > maxNameLen {
		return false
	}
	return !containsAny(strings.ToLower(name), skipTerms...)
}

// firstParagraph returns the first substantial paragraph in the section, or
// empty when the section only holds the heading.
func firstParagraph(sel *goquery.Selection) string {
	var desc string
	sel.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		if len(text) >= minDescriptionLen {
			desc = text
			return false
		}
		return true
	})
	return desc
}
