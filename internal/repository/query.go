package repository

import (
	"fmt"
	"strings"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

const maxPageSize = 100

// conditions accumulates WHERE clauses with positional arguments.
type conditions struct {
	clauses []string
	args    []interface{}
}

// add appends expr, replacing every "$?" with the placeholder of arg.
func (c *conditions) add(expr string, arg interface{}) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, strings.ReplaceAll(expr, "$?", fmt.Sprintf("$%d", len(c.args))))
}

// addSearch matches term case-insensitively against any of columns.
func (c *conditions) addSearch(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return
	}
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = "LOWER(" + col + ") LIKE $?"
	}
	c.add("("+strings.Join(parts, " OR ")+")", "%"+strings.ToLower(term)+"%")
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// orderBy resolves a caller supplied sort against a whitelist.
func orderBy(f models.ListFilter, allowed map[string]string, fallback string) string {
	column, ok := allowed[f.SortBy]
	if !ok {
		column = allowed[fallback]
	}
	order := strings.ToUpper(f.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", column, order)
}

// limit renders the paging clause; unpaged listings pass paged=false.
func limit(f models.ListFilter, paged bool) string {
	if !paged {
		return ""
	}
	size := f.PageSize
	if size <= 0 || size > maxPageSize {
		size = 20
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", size, (page-1)*size)
}
