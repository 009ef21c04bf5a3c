package aggregate

import (
	"sort"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Category   string       `json:"category"`
	Total      models.Money `json:"total"`
	Count      int          `json:"count"`
	Percentage float64      `json:"percentage"`
}

// CategoryBreakdown is a sorted list of category totals.
// Empty is set when there were no records, so callers can render "no data" rather than 0%.
type CategoryBreakdown struct {
	Categories []CategoryTotal `json:"categories"`
	GrandTotal models.Money    `json:"grand_total"`
	Empty      bool            `json:"empty"`
}

// CategoryTotals groups items by category and sums their amounts. Groups are
// sorted by total descending; equal totals keep first-encounter order.
func CategoryTotals[T any](items []T, categoryOf func(T) string, amountOf func(T) models.Money) CategoryBreakdown {
	index := make(map[string]int)
	groups := make([]CategoryTotal, 0)
	var grand models.Money
	for _, item := range items {
		cat := categoryOf(item)
		amount := amountOf(item)
		grand += amount
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, CategoryTotal{Category: cat})
		}
		groups[i].Total += amount
		groups[i].Count++
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total > groups[j].Total
	})
	for i := range groups {
		groups[i].Percentage = Percentage(groups[i].Total, grand)
	}

	return CategoryBreakdown{Categories: groups, GrandTotal: grand, Empty: len(items) == 0}
}

// Percentage returns part/whole×100, or 0 when whole is zero.
func Percentage(part, whole models.Money) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// Sum adds up the amounts of items.
func Sum[T any](items []T, amountOf func(T) models.Money) models.Money {
	var total models.Money
	for _, item := range items {
		total += amountOf(item)
	}
	return total
}
