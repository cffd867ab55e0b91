package book

import (
	"regexp"
	"strings"
)

// Title/author normalization used by the fuzzy fallback and by the
// enrichment merger. The external catalog assigns different identifiers to
// different editions and translations of the same work, so exact matching
// alone produces duplicate local records.

var (
	authorSuffixRe  = regexp.MustCompile(`(?i)\s+(jr\.?|sr\.?|ii|iii|iv)$`)
	titleSeparators = strings.NewReplacer(":", " ", "-", " ", "|", " ", "–", " ", "—", " ")
	whitespaceRe    = regexp.MustCompile(`\s+`)
	leadingArticle  = regexp.MustCompile(`(?i)^(the|a|an)\s+`)
)

// normalizeAuthor lowercases, strips generational suffixes and collapses
// whitespace so "Frank Herbert Jr." and "frank  herbert" compare equal.
func normalizeAuthor(name string) string {
	s := strings.ToLower(name)
	s = authorSuffixRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// normalizeTitle strips a leading article, folds separators to spaces and
// collapses whitespace.
func normalizeTitle(title string) string {
	s := strings.ToLower(title)
	s = leadingArticle.ReplaceAllString(s, "")
	s = titleSeparators.Replace(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// authorsMatch compares two normalized names, tolerating substring
// containment ("J. R. R. Tolkien" vs "Tolkien").
func authorsMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// hasCommonAuthors reports whether at least one author appears in both
// lists under normalized, substring-tolerant comparison.
func hasCommonAuthors(authors1, authors2 []string) bool {
	if len(authors1) == 0 || len(authors2) == 0 {
		return false
	}
	for _, a1 := range authors1 {
		n1 := normalizeAuthor(a1)
		for _, a2 := range authors2 {
			if authorsMatch(n1, normalizeAuthor(a2)) {
				return true
			}
		}
	}
	return false
}

// containsAuthor reports whether author is already represented in list.
func containsAuthor(list []string, author string) bool {
	n := normalizeAuthor(author)
	for _, existing := range list {
		if authorsMatch(normalizeAuthor(existing), n) {
			return true
		}
	}
	return false
}

// titlesMatch reports whether the normalized titles match by substring in
// either direction (handles bundled and subtitled editions).
func titlesMatch(title1, title2 string) bool {
	n1, n2 := normalizeTitle(title1), normalizeTitle(title2)
	if n1 == "" || n2 == "" {
		return false
	}
	return strings.Contains(n1, n2) || strings.Contains(n2, n1)
}

// mergeAuthors appends authors from extra that are not already represented
// in existing. Never removes or reorders existing entries.
func mergeAuthors(existing, extra []string) []string {
	merged := existing
	for _, a := range extra {
		if !containsAuthor(merged, a) {
			merged = append(merged, a)
		}
	}
	return merged
}

// mergeGenres unions genre tags by case/whitespace-normalized equality.
func mergeGenres(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, g := range existing {
		seen[strings.ToLower(strings.TrimSpace(g))] = true
	}
	merged := existing
	for _, g := range extra {
		key := strings.ToLower(strings.TrimSpace(g))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, g)
	}
	return merged
}
