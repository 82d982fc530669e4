package match

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// similarityThreshold is tuned for full names with middle names: "Sanna
// Benemar" vs "Sanna Juni Benemar" lands around 0.72.
const similarityThreshold = 0.7

// foldMarks decomposes characters and removes combining marks, so
// "Benémar" compares equal to "Benemar".
var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NameMatches fuzzy-compares a counterparty name against a tenant name.
// Three strategies, any of which suffices:
//
//  1. Levenshtein similarity above the threshold on the folded, letters-only
//     forms of both names.
//  2. Token subset: every word of the shorter name appears as a substring of
//     some word of the longer name ("Adam McCarthy" vs "Adam J. McCarthy").
//  3. Initials: a single-letter token matches any word starting with that
//     letter ("S. Benemar" vs "Sanna Benemar").
func NameMatches(counterparty, tenantName string) bool {
	if counterparty == "" || tenantName == "" {
		return false
	}

	a := foldLetters(counterparty)
	b := foldLetters(tenantName)
	if a == "" || b == "" {
		return false
	}

	if similarity(a, b) > similarityThreshold {
		return true
	}
	return tokensMatch(counterparty, tenantName)
}

// similarity maps edit distance to [0,1], 1 meaning identical.
func similarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}

func tokensMatch(nameA, nameB string) bool {
	tokensA := strings.Fields(strings.ToLower(nameA))
	tokensB := strings.Fields(strings.ToLower(nameB))
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return false
	}

	shorter, longer := tokensA, tokensB
	if len(tokensB) < len(tokensA) {
		shorter, longer = tokensB, tokensA
	}

	for _, token := range shorter {
		token = foldLetters(token)
		if token == "" {
			continue
		}
		if !tokenInAny(token, longer) {
			return false
		}
	}
	return true
}

func tokenInAny(token string, candidates []string) bool {
	for _, candidate := range candidates {
		candidate = foldLetters(candidate)
		if len(token) == 1 {
			// Initial: match on first letter only.
			if strings.HasPrefix(candidate, token) {
				return true
			}
			continue
		}
		if strings.Contains(candidate, token) {
			return true
		}
	}
	return false
}

// foldLetters lowercases, strips diacritics and drops everything that is not
// a letter.
func foldLetters(s string) string {
	folded, _, err := transform.String(foldMarks, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
