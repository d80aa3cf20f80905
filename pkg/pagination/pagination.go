package pagination

import (
	"errors"
	"math"
	"net/url"
	"strconv"
)

const (
	// DefaultPageSize is the standard page size when page_size is not provided.
	DefaultPageSize = 12
	// MaxPageSize caps how many rows any page can request.
	MaxPageSize = 100

	pageParam     = "page"
	pageSizeParam = "page_size"
)

// ErrPageOutOfRange is returned when the requested page is past the last one.
var ErrPageOutOfRange = errors.New("invalid page")

// Params holds offset pagination inputs.
type Params struct {
	Page     int
	PageSize int
}

// NormalizePageSize enforces the default and maximum page sizes.
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// Normalize fills defaults.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	p.PageSize = NormalizePageSize(p.PageSize)
	return p
}

// Offset is the number of rows to skip. It saturates at math.MaxInt instead of wrapping.
func (p Params) Offset() int {
	n := p.Normalize()
	if n.Page-1 > math.MaxInt/n.PageSize {
		return math.MaxInt
	}
	return (n.Page - 1) * n.PageSize
}

// lastPage is the highest valid page for total rows; an empty result still has page 1.
func (p Params) lastPage(total int64) int64 {
	n := p.Normalize()
	if total <= 0 {
		return 1
	}
	return (total-1)/int64(n.PageSize) + 1
}

// Validate rejects pages beyond the last one. Page 1 is always valid, even when empty.
func (p Params) Validate(total int64) error {
	n := p.Normalize()
	if int64(n.Page) > n.lastPage(total) {
		return ErrPageOutOfRange
	}
	return nil
}

// HasNext reports whether rows exist past the current page.
func (p Params) HasNext(total int64) bool {
	n := p.Normalize()
	return total > 0 && int64(n.Page) < n.lastPage(total)
}

// Links builds absolute next/previous URLs from the request URL, keeping other query params.
func (p Params) Links(base *url.URL, total int64) (next, previous *string) {
	n := p.Normalize()
	if base == nil {
		return nil, nil
	}
	if n.HasNext(total) {
		next = pageURL(base, n.Page+1)
	}
	if n.Page > 1 && int64(n.Page) <= n.lastPage(total) {
		previous = pageURL(base, n.Page-1)
	}
	return next, previous
}

func pageURL(base *url.URL, page int) *string {
	u := *base
	q := u.Query()
	if page == 1 {
		q.Del(pageParam)
	} else {
		q.Set(pageParam, strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
