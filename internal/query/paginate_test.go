package query

import (
	"fmt"
	"testing"

	"moneytracker/internal/core"
)

func numbered(n int) []core.Transaction {
	out := make([]core.Transaction, n)
	for i := range out {
		out[i] = tx(fmt.Sprintf("%02d", i+1), core.Expense, 1, "", "", core.NewDate(2025, 1, 1))
	}
	return out
}

func TestSortByDateDesc(t *testing.T) {
	list := []core.Transaction{
		tx("a", core.Expense, 1, "", "", core.NewDate(2025, 1, 1)),
		tx("b", core.Expense, 1, "", "", core.NewDate(2025, 3, 1)),
		tx("c", core.Expense, 1, "", "", core.NewDate(2025, 1, 1)),
		tx("d", core.Expense, 1, "", "", core.NewDate(2025, 2, 1)),
	}
	got := SortByDateDesc(list)
	if ids(got) != "bdac" {
		t.Fatalf("got %q, want %q (ties keep insertion order)", ids(got), "bdac")
	}
	if ids(list) != "abcd" {
		t.Fatalf("input reordered: %q", ids(list))
	}
}

func TestPageCount(t *testing.T) {
	cases := []struct{ total, size, want int }{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{25, 0, 3},
	}
	for _, tc := range cases {
		if got := PageCount(tc.total, tc.size); got != tc.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tc.total, tc.size, got, tc.want)
		}
	}
}

func TestPaginateClampsToLastPage(t *testing.T) {
	page := Paginate(numbered(25), 10, 5)
	if page.PageCount != 3 || page.Number != 3 || page.TotalCount != 25 {
		t.Fatalf("unexpected page meta %+v", page)
	}
	if len(page.Items) != 5 || page.Items[0].ID != "21" || page.Items[4].ID != "25" {
		t.Fatalf("unexpected items %q", ids(page.Items))
	}
	if !page.HasPrev() || page.HasNext() {
		t.Fatalf("unexpected navigation flags")
	}
}

func TestPaginateEmptyList(t *testing.T) {
	page := Paginate(nil, 10, 3)
	if page.PageCount != 1 || page.Number != 1 || page.TotalCount != 0 || len(page.Items) != 0 {
		t.Fatalf("unexpected empty page %+v", page)
	}
	if page.Items == nil {
		t.Fatalf("items should be an empty slice, not nil")
	}
}

func TestPaginateCoversEveryItemOnce(t *testing.T) {
	for total := 0; total <= 35; total++ {
		for _, size := range []int{1, 3, 10} {
			list := numbered(total)
			pages := PageCount(total, size)
			seen := 0
			for n := 1; n <= pages; n++ {
				p := Paginate(list, size, n)
				if n == pages {
					if total == 0 && len(p.Items) != 0 {
						t.Fatalf("total=0 should give one empty page")
					}
					if total > 0 && (len(p.Items) < 1 || len(p.Items) > size) {
						t.Fatalf("total=%d size=%d last page has %d items", total, size, len(p.Items))
					}
				}
				seen += len(p.Items)
			}
			if seen != total {
				t.Fatalf("total=%d size=%d: pages hold %d items", total, size, seen)
			}
		}
	}
}

func TestPagerKeepsClampedPage(t *testing.T) {
	p := NewPager(PageSize)
	p.GoTo(5)
	page := p.Paginate(numbered(25))
	if page.Number != 3 || p.Current() != 3 {
		t.Fatalf("expected clamp to 3, got page=%d current=%d", page.Number, p.Current())
	}

	p.Prev()
	if p.Current() != 2 {
		t.Fatalf("prev from clamped page should give 2, got %d", p.Current())
	}

	p.Next()
	p.Next()
	p.Next()
	if got := p.Paginate(numbered(25)).Number; got != 3 {
		t.Fatalf("next past the end should clamp to 3, got %d", got)
	}

	p.Reset()
	p.Prev()
	if p.Current() != 1 {
		t.Fatalf("prev on page 1 should stay on 1")
	}

	p.GoTo(-4)
	if p.Current() != 1 {
		t.Fatalf("GoTo below 1 should select page 1")
	}
}
