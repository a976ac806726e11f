package services

import (
	"encoding/json"
	"strconv"
)

const (
	// Up to this many pages are always listed in full.
	maxListedPages = 7
	pageWindow     = 2

	DefaultPageSize = 10
)

// PageLink is a page number, or an ellipsis when Number is zero.
type PageLink struct {
	Number int
}

var ellipsis = PageLink{}

func (p PageLink) Ellipsis() bool { return p.Number == 0 }

func (p PageLink) String() string {
	if p.Ellipsis() {
		return "..."
	}
	return strconv.Itoa(p.Number)
}

func (p PageLink) MarshalJSON() ([]byte, error) {
	if p.Ellipsis() {
		return json.Marshal("...")
	}
	return json.Marshal(p.Number)
}

// Pages lists the page links to display. Beyond seven pages it keeps the
// first, the last and two pages either side of current, with one ellipsis
// for each gap.
func Pages(current, total int) []PageLink {
	if total <= 0 {
		return nil
	}
	current = min(max(current, 1), total)

	if total <= maxListedPages {
		links := make([]PageLink, 0, total)
		for n := 1; n <= total; n++ {
			links = append(links, PageLink{n})
		}
		return links
	}

	lo := max(2, current-pageWindow)
	hi := min(total-1, current+pageWindow)

	links := []PageLink{{1}}
	if lo > 2 {
		links = append(links, ellipsis)
	}
	for n := lo; n <= hi; n++ {
		links = append(links, PageLink{n})
	}
	if hi < total-1 {
		links = append(links, ellipsis)
	}
	return append(links, PageLink{total})
}

type Page struct {
	Number     int        `json:"page"`
	Size       int        `json:"per_page"`
	TotalRows  int        `json:"total_rows"`
	TotalPages int        `json:"total_pages"`
	Links      []PageLink `json:"links"`
}

// paginate returns one page of rows. Out-of-range page numbers are clamped.
func paginate[T any](rows []T, number, size int) ([]T, Page) {
	if size <= 0 {
		size = DefaultPageSize
	}
	totalPages := 0
	if len(rows) > 0 {
		totalPages = (len(rows)-1)/size + 1
	}
	number = max(number, 1)
	if totalPages > 0 {
		number = min(number, totalPages)
	}

	lo := min((number-1)*size, len(rows))
	hi := lo + min(size, len(rows)-lo)

	return rows[lo:hi], Page{
		Number:     number,
		Size:       size,
		TotalRows:  len(rows),
		TotalPages: totalPages,
		Links:      Pages(number, totalPages),
	}
}
