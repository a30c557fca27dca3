package extract

import (
	"regexp"
	"strings"
)

// firstMatch runs an ordered pattern cascade over text and returns the first
// captured value whose trimmed capture passes validate (nil accepts any
// non-empty capture). The winning pattern index and raw matched text are
// recorded under details[field].
func firstMatch(text string, patterns []*regexp.Regexp, validate func(string) bool, details map[string]interface{}, field string) (string, bool) {
	for i, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if candidate == "" {
			continue
		}
		if validate != nil && !validate(candidate) {
			continue
		}
		details[field] = map[string]interface{}{"pattern": i, "raw": m[0]}
		return candidate, true
	}
	details[field] = nil
	return "", false
}

// allCaptures collects every first-group capture across the whole cascade,
// in pattern order. Used where the best candidate is chosen by value rather
// than by cascade position, e.g. the highest dollar amount on a rate page.
func allCaptures(text string, patterns []*regexp.Regexp) []string {
	var out []string
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			out = append(out, m[1])
		}
	}
	return out
}

// compileAll panics on a malformed pattern; cascades are fixed tables built
// once at strategy construction.
func compileAll(exprs []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		res[i] = regexp.MustCompile(e)
	}
	return res
}
