package session

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// guessTolerance is the maximum edit distance relative to the longer of
// the two normalized strings for a guess to still count.
const guessTolerance = 0.2

var apostropheReplacer = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"´", "'",
	"`", "'",
)

// Normalize prepares a string for fuzzy comparison: lowercase, "&"
// expanded to "and", apostrophe variants unified, punctuation stripped,
// whitespace collapsed.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "&", "and")
	s = apostropheReplacer.Replace(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// GuessMatches compares a free-text guess against the true value. Exact
// match after normalization or substring containment in either direction
// short-circuits to true; otherwise the edit distance must stay within
// guessTolerance of the longer string.
func GuessMatches(guess, actual string) bool {
	g := Normalize(guess)
	a := Normalize(actual)

	if g == "" || a == "" {
		return false
	}
	if g == a {
		return true
	}
	if strings.Contains(a, g) || strings.Contains(g, a) {
		return true
	}

	distance := levenshtein.ComputeDistance(g, a)
	longest := len([]rune(g))
	if l := len([]rune(a)); l > longest {
		longest = l
	}

	return float64(distance)/float64(longest) <= guessTolerance
}
