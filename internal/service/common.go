package service

import (
	"time"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

// Page is a cached list result.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Pagination builds response paging metadata for filter and total.
func Pagination(filter models.ListFilter, total int) *models.Pagination {
	filter.Normalize()
	size := filter.PageSize
	if size > 100 {
		size = 20
	}
	return &models.Pagination{Page: filter.Page, PageSize: size, TotalCount: total}
}

// actorRef turns an authenticated user id into a created_by reference.
func actorRef(actor string) *string {
	if actor == "" {
		return nil
	}
	return &actor
}

// Clock returns the current time; tests replace it.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// in reads the clock on the institution's wall calendar, so date defaults
// follow the local day rather than the server's zone.
func (c Clock) in(loc *time.Location) time.Time {
	if loc == nil {
		return c.now()
	}
	return c.now().In(loc)
}
