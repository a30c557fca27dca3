package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// keywordFixes is a fixed substitution table for recognition confusions in
// keywords the field patterns anchor on. Applied once per document, before
// any field extraction.
var keywordFixes = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)0rigin`), "origin"},
	{regexp.MustCompile(`(?i)or1gin`), "origin"},
	{regexp.MustCompile(`(?i)destinat[1i]0n`), "destination"},
	{regexp.MustCompile(`(?i)destinati0n`), "destination"},
	{regexp.MustCompile(`(?i)c0nfirmat[1i]0n`), "confirmation"},
	{regexp.MustCompile(`(?i)p1ckup`), "pickup"},
	{regexp.MustCompile(`(?i)del1very`), "delivery"},
	{regexp.MustCompile(`(?i)de1ivery`), "delivery"},
	{regexp.MustCompile(`(?i)t0tal`), "total"},
	{regexp.MustCompile(`(?i)we1ght`), "weight"},
	{regexp.MustCompile(`(?i)c0mm0d[1i]ty`), "commodity"},
	{regexp.MustCompile(`(?i)exp1res`), "expires"},
	{regexp.MustCompile(`(?i)expirat[1i]0n`), "expiration"},
	{regexp.MustCompile(`(?i)l1cense`), "license"},
	{regexp.MustCompile(`(?i)p0licy`), "policy"},
	{regexp.MustCompile(`(?i)1nsurance`), "insurance"},
	{regexp.MustCompile(`(?i)s1gnature`), "signature"},
	{regexp.MustCompile(`(?i)rece1pt`), "receipt"},
	{regexp.MustCompile(`(?i)1nv0ice`), "invoice"},
	{regexp.MustCompile(`(?i)inv0ice`), "invoice"},
}

// NormalizeArtifacts corrects common recognition confusions before pattern
// matching: digit/letter look-alikes (0 for o, 1 for l) inside otherwise
// alphabetic tokens, plus a fixed table of keyword fixes. Runs once per
// document; substitutions preserve the case of the surrounding token.
func NormalizeArtifacts(text string) string {
	for _, fix := range keywordFixes {
		text = fix.pattern.ReplaceAllStringFunc(text, func(match string) string {
			return matchCase(fix.replacement, match)
		})
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, token := range splitPreservingDelims(text) {
		b.WriteString(fixLookAlikes(token))
	}
	return b.String()
}

// splitPreservingDelims splits text into alternating word and non-word runs.
func splitPreservingDelims(text string) []string {
	var parts []string
	start := 0
	inWord := false
	for i, r := range text {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r)
		if i == 0 {
			inWord = isWord
			continue
		}
		if isWord != inWord {
			parts = append(parts, text[start:i])
			start = i
			inWord = isWord
		}
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

// fixLookAlikes rewrites 0→o and 1→l inside tokens that are otherwise
// alphabetic. Tokens that are mostly digits (license numbers, amounts,
// dates) are left untouched.
func fixLookAlikes(token string) string {
	letters, digits, others := 0, 0, 0
	for _, r := range token {
		switch {
		case unicode.IsLetter(r):
			letters++
		case r == '0' || r == '1':
			digits++
		default:
			others++
		}
	}
	// Only rewrite when look-alike digits are embedded in a word: at least
	// two letters, no other digits, and fewer look-alikes than letters.
	if others > 0 || letters < 2 || digits == 0 || digits >= letters {
		return token
	}

	upper := strings.ToUpper(token) == token
	out := make([]rune, 0, len(token))
	for _, r := range token {
		switch r {
		case '0':
			if upper {
				out = append(out, 'O')
			} else {
				out = append(out, 'o')
			}
		case '1':
			if upper {
				out = append(out, 'L')
			} else {
				out = append(out, 'l')
			}
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// matchCase applies the casing of the matched text to the replacement.
func matchCase(replacement, original string) string {
	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if len(original) > 0 && unicode.IsUpper([]rune(original)[0]) && len(replacement) > 0 {
		return strings.ToUpper(replacement[:1]) + replacement[1:]
	}
	return replacement
}
