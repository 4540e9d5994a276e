// Package query selects and orders transactions for the table view.
package query

import (
	"fmt"
	"strings"

	"moneytracker/internal/core"
)

// TypeFilter restricts transactions by type.
type TypeFilter string

const (
	TypeAll     TypeFilter = "all"
	TypeIncome  TypeFilter = "income"
	TypeExpense TypeFilter = "expense"
)

// ParseTypeFilter maps unknown or empty values to TypeAll.
func ParseTypeFilter(s string) TypeFilter {
	switch TypeFilter(strings.ToLower(strings.TrimSpace(s))) {
	case TypeIncome:
		return TypeIncome
	case TypeExpense:
		return TypeExpense
	default:
		return TypeAll
	}
}

// Criteria is the active set of filter predicates. Zero values impose no
// constraint.
type Criteria struct {
	Type     TypeFilter
	Category string
	DateFrom *core.Date
	DateTo   *core.Date
	Search   string
}

// NewCriteria builds normalized criteria from raw form values. Dates that do
// not parse are treated as absent.
func NewCriteria(typ, category, from, to, search string) Criteria {
	c := Criteria{
		Type:     ParseTypeFilter(typ),
		Category: category,
		Search:   search,
	}
	if d, err := core.ParseDate(from); err == nil {
		c.DateFrom = &d
	}
	if d, err := core.ParseDate(to); err == nil {
		c.DateTo = &d
	}
	return c.Normalize()
}

// Normalize trims and lower-cases the text predicates.
func (c Criteria) Normalize() Criteria {
	if c.Type == "" {
		c.Type = TypeAll
	}
	c.Category = strings.ToLower(strings.TrimSpace(c.Category))
	c.Search = strings.ToLower(strings.TrimSpace(c.Search))
	return c
}

// IsEmpty reports whether no predicate is active.
func (c Criteria) IsEmpty() bool {
	c = c.Normalize()
	return c.Type == TypeAll && c.Category == "" && c.DateFrom == nil && c.DateTo == nil && c.Search == ""
}

// Equal compares normalized criteria by value.
func (c Criteria) Equal(o Criteria) bool {
	return c.Key() == o.Key()
}

// Key is a stable textual form, used for memoizing derived views.
func (c Criteria) Key() string {
	c = c.Normalize()
	return fmt.Sprintf("type=%s|cat=%s|from=%s|to=%s|q=%s",
		c.Type, c.Category, dateKey(c.DateFrom), dateKey(c.DateTo), c.Search)
}

func dateKey(d *core.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
