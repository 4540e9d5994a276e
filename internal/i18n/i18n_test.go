package i18n

import (
	"errors"
	"strings"
	"testing"

	"moneytracker/internal/core"
)

func TestMatch(t *testing.T) {
	cases := []struct {
		prefs []string
		want  string
	}{
		{nil, "en"},
		{[]string{""}, "en"},
		{[]string{"fr"}, "fr"},
		{[]string{"fr-CA"}, "fr"},
		{[]string{"de-DE,fr;q=0.8,en;q=0.5"}, "fr"},
		{[]string{"ja"}, "en"},
		{[]string{"", "fr-FR,fr;q=0.9"}, "fr"},
		{[]string{"en", "fr"}, "en"},
	}
	for _, tc := range cases {
		if got := New(tc.prefs...).Lang(); got != tc.want {
			t.Errorf("New(%q).Lang() = %q, want %q", tc.prefs, got, tc.want)
		}
	}
}

func TestTranslate(t *testing.T) {
	en := New("en")
	fr := New("fr")

	if got := en.T("other", nil); got != "Other" {
		t.Fatalf("en other = %q", got)
	}
	if got := fr.T("other", nil); got != "Autre" {
		t.Fatalf("fr other = %q", got)
	}
	if got := en.T("no_such_key", Params{"x": 1}); got != "no_such_key" {
		t.Fatalf("unknown key = %q", got)
	}
	if got := en.T("tx_count_other", nil); got != "{count} transactions" {
		t.Fatalf("nil params should leave template, got %q", got)
	}
	if got := en.T("tx_count_other", Params{}); got != " transactions" {
		t.Fatalf("missing param should become empty, got %q", got)
	}
}

func TestDictionariesHaveSameKeys(t *testing.T) {
	for k := range english {
		if _, ok := french[k]; !ok {
			t.Errorf("french missing %q", k)
		}
	}
	for k := range french {
		if _, ok := english[k]; !ok {
			t.Errorf("english missing %q", k)
		}
	}
}

func TestCountLabel(t *testing.T) {
	en := New("en")
	cases := map[int]string{0: "0 transactions", 1: "1 transaction", 25: "25 transactions"}
	for n, want := range cases {
		if got := en.CountLabel(n); got != want {
			t.Errorf("CountLabel(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestParseCurrency(t *testing.T) {
	valid := map[string]string{"usd": "USD", " EUR ": "EUR", "inr": "INR"}
	for in, want := range valid {
		got, err := ParseCurrency(in)
		if err != nil || got != want {
			t.Errorf("ParseCurrency(%q) = %q, %v", in, got, err)
		}
	}
	for _, in := range []string{"", "US", "DOLLARS", "ZZZ"} {
		if _, err := ParseCurrency(in); !errors.Is(err, core.ErrInvalidCurrency) {
			t.Errorf("ParseCurrency(%q) err = %v, want ErrInvalidCurrency", in, err)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	amount, err := core.ParseAmount("1234.5")
	if err != nil {
		t.Fatal(err)
	}
	en := New("en")

	usd := en.FormatMoney(amount, "USD")
	if !strings.Contains(usd, "1,234.50") {
		t.Fatalf("USD = %q", usd)
	}
	if fallback := en.FormatMoney(amount, "nope"); fallback != usd {
		t.Fatalf("unknown currency should render as USD: %q vs %q", fallback, usd)
	}
	if jpy := en.FormatMoney(amount, "JPY"); strings.Contains(jpy, ".") {
		t.Fatalf("JPY has no minor unit, got %q", jpy)
	}
}
