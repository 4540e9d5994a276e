package query

import (
	"sort"

	"moneytracker/internal/core"
)

// PageSize is the fixed number of rows per table page.
const PageSize = 10

// Page is one slice of an ordered list.
type Page struct {
	Items      []core.Transaction `json:"items"`
	Number     int                `json:"page"`
	TotalCount int                `json:"total"`
	PageCount  int                `json:"pages"`
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Number < p.PageCount }

// SortByDateDesc returns a copy ordered newest first. Transactions sharing a
// date keep their original relative order.
func SortByDateDesc(transactions []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(transactions))
	copy(out, transactions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// PageCount is max(1, ceil(total/size)).
func PageCount(total, size int) int {
	if size <= 0 {
		size = PageSize
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate slices list into the requested page, clamping the page number
// into [1, PageCount].
func Paginate(list []core.Transaction, size, number int) Page {
	if size <= 0 {
		size = PageSize
	}
	total := len(list)
	pages := PageCount(total, size)
	if number > pages {
		number = pages
	}
	if number < 1 {
		number = 1
	}
	start := (number - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	items := make([]core.Transaction, 0, end-start)
	items = append(items, list[start:end]...)
	return Page{
		Items:      items,
		Number:     number,
		TotalCount: total,
		PageCount:  pages,
	}
}

// Pager holds the current page across renders. A page number beyond the last
// page is corrected down to the last page and the correction is kept.
type Pager struct {
	size    int
	current int
}

// NewPager returns a pager on page 1.
func NewPager(size int) *Pager {
	if size <= 0 {
		size = PageSize
	}
	return &Pager{size: size, current: 1}
}

func (p *Pager) Current() int { return p.current }

func (p *Pager) Size() int { return p.size }

// Reset goes back to page 1.
func (p *Pager) Reset() { p.current = 1 }

// Next advances unconditionally; the next Paginate call clamps.
func (p *Pager) Next() { p.current++ }

// Prev steps back unless already on page 1.
func (p *Pager) Prev() {
	if p.current > 1 {
		p.current--
	}
}

// GoTo jumps to n; values below 1 select page 1.
func (p *Pager) GoTo(n int) {
	if n < 1 {
		n = 1
	}
	p.current = n
}

// Paginate renders the current page of list and persists any clamping.
func (p *Pager) Paginate(list []core.Transaction) Page {
	page := Paginate(list, p.size, p.current)
	p.current = page.Number
	return page
}
