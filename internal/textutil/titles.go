package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize reduces a title to a comparable form: lowercase, symbols mapped to
// words, punctuation and whitespace removed.
func Normalize(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	normalized := strings.ToLower(input)
	normalized = strings.ReplaceAll(normalized, "&", "and")
	normalized = strings.ReplaceAll(normalized, "+", "and")

	var builder strings.Builder
	for _, r := range normalized {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// EqualFold reports whether two titles are equal after normalization.
func EqualFold(a, b string) bool {
	na := Normalize(a)
	if na == "" {
		return false
	}
	return na == Normalize(b)
}

// Tokenize splits a title into lowercase word tokens. Single-character tokens
// survive so sequel numbers ("2") keep their weight.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	raw := tokenSplitPattern.Split(lowered, -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// Overlap counts tokens the two titles share. It is used to guard year-only
// matches: a candidate that shares no title tokens with the request must not
// be returned just because the year lines up.
func Overlap(a, b string) int {
	tokensA := Tokenize(a)
	if len(tokensA) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(tokensA))
	for _, token := range tokensA {
		seen[token] = struct{}{}
	}
	shared := 0
	for _, token := range Tokenize(b) {
		if _, ok := seen[token]; ok {
			shared++
			delete(seen, token)
		}
	}
	return shared
}
