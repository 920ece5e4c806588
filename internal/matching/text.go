package matching

import "strings"

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// termsMatch reports whether two normalized terms refer to the same thing:
// equal, or one contains the other as a whole word prefix. "software"
// matches "software development" but not "hardware".
func termsMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	return containsWord(a, b) || containsWord(b, a)
}

func containsWord(haystack, needle string) bool {
	idx := strings.Index(haystack, needle)
	if idx < 0 {
		return false
	}
	// Word boundaries on both sides.
	if idx > 0 && haystack[idx-1] != ' ' && haystack[idx-1] != '-' {
		return false
	}
	end := idx + len(needle)
	if end < len(haystack) && haystack[end] != ' ' && haystack[end] != '-' {
		return false
	}
	return true
}
