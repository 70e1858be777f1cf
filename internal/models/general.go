package models

import (
	"math"

	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

const (
	// DefaultPageSize applies when page_size is missing or below one.
	DefaultPageSize = 10
	// MaxPageSize caps page_size.
	MaxPageSize = 100
)

// Pagination selects one page of a list.
type Pagination struct {
	PageNumber int `form:"page_number"`
	PageSize   int `form:"page_size"`
}

// Normalize clamps page_number to at least 1 and page_size into [1, MaxPageSize],
// substituting DefaultPageSize for a missing size.
func (p Pagination) Normalize() Pagination {
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Pagination) Limit() uint64 {
	return uint64(p.Normalize().PageSize)
}

func (p Pagination) Offset() uint64 {
	n := p.Normalize()
	return uint64((n.PageNumber - 1) * n.PageSize)
}

// Prev and Next are used by the pagination partial.
func (p Pagination) Prev() int { return p.Normalize().PageNumber - 1 }
func (p Pagination) Next() int { return p.Normalize().PageNumber + 1 }

// Sort names an allow-listed sort key and a direction.
type Sort struct {
	SortBy        string        `form:"sort_by"`
	SortDirection SortDirection `form:"sort_direction"`
}

// QueryInfo summarises a list query.
type QueryInfo struct {
	NumPages int
	NumItems int
}

// NewQueryInfo derives the page count; zero items means zero pages.
func NewQueryInfo(numItems int, p Pagination) QueryInfo {
	size := p.Normalize().PageSize
	return QueryInfo{
		NumItems: numItems,
		NumPages: int(math.Ceil(float64(numItems) / float64(size))),
	}
}

// ListResult is one rendered page of rows.
type ListResult[T any] struct {
	Items      []T
	Pagination Pagination
	Sort       Sort
	Info       QueryInfo
}

// NewListResult normalises pagination and derives QueryInfo.
func NewListResult[T any](items []T, total int, p Pagination, s Sort) ListResult[T] {
	p = p.Normalize()
	if items == nil {
		items = []T{}
	}
	return ListResult[T]{
		Items:      items,
		Pagination: p,
		Sort:       s,
		Info:       NewQueryInfo(total, p),
	}
}

// HasPrev reports whether a previous page exists.
func (r ListResult[T]) HasPrev() bool { return r.Pagination.PageNumber > 1 }

// HasNext reports whether a following page exists.
func (r ListResult[T]) HasNext() bool { return r.Pagination.PageNumber < r.Info.NumPages }

// ListParams is the query-string part shared by every list endpoint.
type ListParams struct {
	Pagination
	Sort
}

// SelectorFilter narrows dropdown options. Fields that do not apply to a
// selector are ignored.
type SelectorFilter struct {
	Name         optional.Value[string] `form:"name"`
	DepartmentID optional.Value[int64]  `form:"department_id"`
	AreaID       optional.Value[int64]  `form:"area_id"`
	SiteID       optional.Value[int64]  `form:"site_id"`
	Unassigned   optional.Value[bool]   `form:"unassigned"`
}

// SelectorOption is one entry of a dropdown.
type SelectorOption struct {
	ID    int64  `db:"id"`
	Label string `db:"label"`
	Hint  string `db:"hint"`
}
