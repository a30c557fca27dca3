package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	millionSuffixRe  = regexp.MustCompile(`(?i)(m\b|million)`)
	thousandSuffixRe = regexp.MustCompile(`(?i)(k\b|thousand)`)
)

// parseCurrencyCents converts a captured numeric amount to integer cents.
// fullMatch is the wider matched text and is consulted for magnitude
// suffixes like "1.5M" or "500K" that the capture group may have dropped.
func parseCurrencyCents(amount, fullMatch string) (int64, bool) {
	cleaned := strings.NewReplacer(",", "", "$", "", " ", "").Replace(amount)
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	switch {
	case millionSuffixRe.MatchString(fullMatch):
		value *= 1_000_000
	case thousandSuffixRe.MatchString(fullMatch):
		value *= 1_000
	}
	if value < 0 {
		return 0, false
	}
	return int64(value*100 + 0.5), true
}
