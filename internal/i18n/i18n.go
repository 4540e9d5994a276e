// Package i18n looks up user-facing labels and formats amounts for the
// negotiated language.
package i18n

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"moneytracker/internal/core"
)

// Supported languages, in matcher preference order. The first entry is the
// fallback.
var supported = []language.Tag{language.English, language.French}

var dictionaries = map[language.Tag]Dictionary{
	language.English: english,
	language.French:  french,
}

var (
	matcher     = language.NewMatcher(supported)
	placeholder = regexp.MustCompile(`\{(\w+)\}`)
)

// Params fills {name} placeholders.
type Params map[string]any

// Translator resolves keys against one dictionary.
type Translator struct {
	tag     language.Tag
	dict    Dictionary
	printer *message.Printer
}

// Languages lists the supported language codes.
func Languages() []string {
	out := make([]string, len(supported))
	for i, tag := range supported {
		out[i] = tag.String()
	}
	return out
}

// Match negotiates the best supported language for the given preferences,
// each either a BCP 47 tag or an Accept-Language header value. Empty or
// unparseable preferences are skipped; with no match English is used.
func Match(preferences ...string) language.Tag {
	var tags []language.Tag
	for _, p := range preferences {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return supported[0]
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return supported[0]
	}
	return supported[index]
}

// New returns a translator for the best match of preferences.
func New(preferences ...string) *Translator {
	tag := Match(preferences...)
	return &Translator{
		tag:     tag,
		dict:    dictionaries[tag],
		printer: message.NewPrinter(tag),
	}
}

// Lang returns the language code in use.
func (t *Translator) Lang() string {
	return t.tag.String()
}

// T returns the template for key with placeholders replaced. Unknown keys
// come back unchanged; placeholders without a parameter become empty.
func (t *Translator) T(key string, params Params) string {
	tmpl, ok := t.dict[key]
	if !ok {
		return key
	}
	return Format(tmpl, params)
}

// Format replaces {name} placeholders in tmpl.
func Format(tmpl string, params Params) string {
	if params == nil {
		return tmpl
	}
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		v, ok := params[m[1:len(m)-1]]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
}

// CountLabel renders the transaction count line.
func (t *Translator) CountLabel(n int) string {
	if n == 1 {
		return t.T("tx_count_one", nil)
	}
	return t.T("tx_count_other", Params{"count": n})
}

// ParseCurrency trims and upper-cases code and checks it against ISO 4217.
func ParseCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidCurrency, code)
	}
	return unit.String(), nil
}

// FormatMoney renders m with the symbol of code, grouped and rounded for
// the translator's language. Unknown codes fall back to USD.
func (t *Translator) FormatMoney(m core.Money, code string) string {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		unit = currency.USD
	}
	scale, _ := currency.Standard.Rounding(unit)
	value := m.Decimal().Round(int32(scale)).InexactFloat64()
	symbol := t.printer.Sprint(currency.Symbol(unit))
	return symbol + " " + t.printer.Sprintf("%.*f", scale, value)
}
