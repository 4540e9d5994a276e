package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DateLayout is the persisted form of a Date.
const DateLayout = "2006-01-02"

// MonthLayout is the key format used by the monthly series.
const MonthLayout = "2006-01"

// OtherCategory labels expenses recorded without a category.
const OtherCategory = "Other"

// DefaultCurrency is used when no currency has been chosen yet.
const DefaultCurrency = "USD"

type (
	TransactionType string

	Theme string

	// Date is a calendar date without a time component, held at UTC midnight.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID       string          `json:"id"`
		Type     TransactionType `json:"type"`
		Amount   Money           `json:"amount"`
		Category string          `json:"category"`
		Note     string          `json:"note"`
		Date     Date            `json:"date"`
	}

	Settings struct {
		Currency string `json:"currency"`
		Theme    Theme  `json:"theme"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrEmptyID         = errors.New("empty transaction id")
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrInvalidTheme    = errors.New("invalid theme")
)

// ParseTransactionType maps anything other than exactly "income" to Expense.
func ParseTransactionType(s string) TransactionType {
	if s == string(Income) {
		return Income
	}
	return Expense
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (t TransactionType) String() string {
	return string(t)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: parsed}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM bucket the date falls in.
func (d Date) MonthKey() string {
	return d.Format(MonthLayout)
}

// EndOfDay is the last instant that still belongs to the date.
func (d Date) EndOfDay() time.Time {
	return d.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(data))
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t Transaction) IsIncome() bool {
	return t.Type == Income
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return t.Date.Validate()
}

// ParseTheme accepts exactly "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
	}
}

// Toggle flips between light and dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// DefaultSettings returns USD with the given theme.
func DefaultSettings(theme Theme) Settings {
	if theme != ThemeDark {
		theme = ThemeLight
	}
	return Settings{Currency: DefaultCurrency, Theme: theme}
}
