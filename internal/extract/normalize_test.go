package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeArtifacts_KeywordFixes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"origin with zero", "0rigin: Houston, TX", "origin: Houston, TX"},
		{"uppercase kept", "0RIGIN: HOUSTON", "ORIGIN: HOUSTON"},
		{"destination", "destinat10n: Dallas", "destination: Dallas"},
		{"pickup", "P1ckup date", "Pickup date"},
		{"policy", "P0licy Number: 12345678", "Policy Number: 12345678"},
		{"clean text untouched", "Rate Confirmation", "Rate Confirmation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeArtifacts(tt.in))
		})
	}
}

func TestNormalizeArtifacts_LookAlikesInsideWords(t *testing.T) {
	assert.Equal(t, "Total weight", NormalizeArtifacts("T0tal we1ght"))
	// numeric tokens are never rewritten
	assert.Equal(t, "$2,500.00 on 12/25/2025", NormalizeArtifacts("$2,500.00 on 12/25/2025"))
	// license-number style tokens keep their digits
	assert.Equal(t, "D12345678", NormalizeArtifacts("D12345678"))
}

func TestParseDate_FormatCascade(t *testing.T) {
	tests := []struct {
		in        string
		wantYear  int
		wantMonth int
		wantDay   int
	}{
		{"12/25/2025", 2025, 12, 25},
		{"12-25-2025", 2025, 12, 25},
		{"12/25/25", 2025, 12, 25},
		{"01-05-49", 2049, 1, 5},
		{"2025-12-25", 2025, 12, 25},
		{"2025/12/25", 2025, 12, 25},
		{"January 2, 2026", 2026, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseDate(tt.in)
			assert.True(t, ok)
			assert.Equal(t, tt.wantYear, got.Year())
			assert.Equal(t, tt.wantMonth, int(got.Month()))
			assert.Equal(t, tt.wantDay, got.Day())
		})
	}
}

func TestParseDate_TwoDigitYearsLandInThe2000s(t *testing.T) {
	// Go's own two-digit windowing would put 99 in 1999; the rule here is
	// always 2000+YY.
	got, ok := parseDate("12/25/99")
	assert.True(t, ok)
	assert.Equal(t, 2099, got.Year())
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "not a date", "13/45/2025", "12/25"} {
		_, ok := parseDate(in)
		assert.False(t, ok, in)
	}
}

func TestParseCurrencyCents(t *testing.T) {
	tests := []struct {
		amount string
		full   string
		want   int64
		ok     bool
	}{
		{"2,500", "$2,500", 250000, true},
		{"2,500.00", "Total: $2,500.00", 250000, true},
		{"1", "$1M", 100000000, true},
		{"1.5", "Coverage: $1.5M", 150000000, true},
		{"500", "500K", 50000000, true},
		{"750", "750 Thousand", 75000000, true},
		{"abc", "abc", 0, false},
		{"", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.full, func(t *testing.T) {
			got, ok := parseCurrencyCents(tt.amount, tt.full)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
