package currency

import (
	"strings"
	"testing"
)

func TestForCountry(t *testing.T) {
	if got := ForCountry("BR"); got != "BRL" {
		t.Fatalf("expected BRL for BR, got %s", got)
	}
	if got := ForCountry("br"); got != "BRL" {
		t.Fatalf("expected lookup to be case-insensitive, got %s", got)
	}
	if got := ForCountry("PT"); got != "EUR" {
		t.Fatalf("expected EUR for PT, got %s", got)
	}
	if got := ForCountry("XX"); got != "USD" {
		t.Fatalf("expected USD default for unknown country, got %s", got)
	}
	if got := ForCountry(""); got != "USD" {
		t.Fatalf("expected USD default for empty country, got %s", got)
	}
}

func TestConvert(t *testing.T) {
	if got := Convert(5000, "USD"); got != 1000 {
		t.Fatalf("expected 5000 BRL -> 1000 USD, got %v", got)
	}
	if got := Convert(5000, "BRL"); got != 5000 {
		t.Fatalf("expected reference conversion to be identity, got %v", got)
	}
}

// Convert deliberately multiplies by the reference currency's own rate when
// the target has no entry, so the "converted" amount equals the BRL amount.
// This mirrors the original behavior and is not a true conversion.
func TestConvert_UnknownCurrencyFallsBackToReferenceRate(t *testing.T) {
	if got := Convert(5000, "XYZ"); got != 5000 {
		t.Fatalf("expected unknown currency to use the reference rate, got %v", got)
	}
}

func TestFormat_USDollarsEnglish(t *testing.T) {
	got := Format(1000, "USD", "en-US")
	if !strings.HasPrefix(got, "$") {
		t.Fatalf("expected $ prefix, got %q", got)
	}
	if strings.ContainsAny(got, ".") {
		t.Fatalf("expected no decimal places, got %q", got)
	}
	if !strings.Contains(got, "1,000") {
		t.Fatalf("expected grouped digits, got %q", got)
	}
}

func TestFormat_NeverEmpty(t *testing.T) {
	cases := []struct {
		amount float64
		code   string
		locale string
	}{
		{900, "BRL", "pt-BR"},
		{900, "EUR", "es"},
		{900, "EUR", "pt-PT"},
		{900, "ZZZ", "en-US"},
		{900, "USD", "not-a-locale!"},
		{0, "", ""},
	}
	for _, tc := range cases {
		if got := Format(tc.amount, tc.code, tc.locale); strings.TrimSpace(got) == "" {
			t.Fatalf("Format(%v, %q, %q) returned empty output", tc.amount, tc.code, tc.locale)
		}
	}
}

func TestFormat_FallbackSymbolAndGrouping(t *testing.T) {
	got := fallbackFormat(1234567, "USD")
	if got != "$1,234,567" {
		t.Fatalf("expected $1,234,567, got %q", got)
	}
	got = fallbackFormat(999, "ZZZ")
	if got != "ZZZ 999" {
		t.Fatalf("expected code-prefixed fallback, got %q", got)
	}
}
