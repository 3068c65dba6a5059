// Package pagination splits ordered listings into fixed-size pages.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

// PerPage is the number of items shown on a listing page.
const PerPage = 10

// Page describes one page of a listing.
type Page struct {
	Number   int // 1-based
	NumPages int
	Total    int
	PerPage  int
}

// Window resolves the raw page query value against a listing of total items.
// Absent or non-numeric values select the first page; numbers outside
// [1, NumPages], including ones too large for an int, select the last page. An empty listing still has one page.
func Window(total int, raw string) Page {
	if total < 0 {
		total = 0
	}
	numPages := (total + PerPage - 1) / PerPage
	if numPages == 0 {
		numPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case errors.Is(err, strconv.ErrRange):
		number = numPages
	case err != nil:
		number = 1
	case number < 1 || number > numPages:
		number = numPages
	}

	return Page{Number: number, NumPages: numPages, Total: total, PerPage: PerPage}
}

// Slice returns the items of the requested page of an in-memory listing.
func Slice[T any](items []T, raw string) ([]T, Page) {
	p := Window(len(items), raw)
	return items[p.Offset():p.End()], p
}

// Offset is the index of the first item on the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Limit is the maximum number of items on the page.
func (p Page) Limit() int {
	return p.PerPage
}

// End is the index one past the last item on the page.
func (p Page) End() int {
	end := p.Offset() + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return end
}

func (p Page) HasNext() bool     { return p.Number < p.NumPages }
func (p Page) HasPrevious() bool { return p.Number > 1 }
func (p Page) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p Page) NextNumber() int     { return p.Number + 1 }
func (p Page) PreviousNumber() int { return p.Number - 1 }

// StartIndex is the 1-based position of the first item on the page, 0 if empty.
func (p Page) StartIndex() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndIndex is the 1-based position of the last item on the page.
func (p Page) EndIndex() int {
	return p.End()
}

// Numbers lists every page number, for rendering the page links.
func (p Page) Numbers() []int {
	nums := make([]int, p.NumPages)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}
