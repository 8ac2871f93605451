package tasks

import "strings"

var bullets = []string{"-", "*", "•"}

const quotes = "\"'`"

// ParseList splits a comma-separated model reply into trimmed items.
//
// Surrounding whitespace, a matching pair of enclosing quotes, a leading list bullet and a trailing period are removed
// from each item; items left empty are dropped. An empty reply yields an empty, non-nil slice.
func ParseList(reply string) []string {
	items := []string{}
	for part := range strings.SplitSeq(reply, ",") {
		if item := cleanItem(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func cleanItem(s string) string {
	s = strings.TrimSpace(s)
	for _, b := range bullets {
		if rest, ok := strings.CutPrefix(s, b); ok {
			s = strings.TrimSpace(rest)
			break
		}
	}
	s = unquote(s)
	s = strings.TrimSuffix(s, ".")
	s = unquote(s)
	return strings.TrimSpace(s)
}

// unquote removes one pair of enclosing quotes. Apostrophes inside a title are kept.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	if q := s[0]; strings.IndexByte(quotes, q) >= 0 && s[len(s)-1] == q {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
