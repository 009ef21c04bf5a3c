package aggregate

import (
	"sort"
	"time"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

// ExpenseGroup is either a shopping-trip batch or a single unbatched expense.
type ExpenseGroup struct {
	BatchID   *string          `json:"batch_id"`
	BatchName *string          `json:"batch_name"`
	Date      time.Time        `json:"date"`
	Total     models.Money     `json:"total"`
	ItemCount int              `json:"item_count"`
	Items     []models.Expense `json:"items"`
}

// IsBatch reports whether the group came from a batch submission.
func (g ExpenseGroup) IsBatch() bool {
	return g.BatchID != nil
}

// GroupExpenseBatches collapses rows sharing a batch id into one group and
// keeps every unbatched row as its own group. Groups are ordered by date,
// newest first, with batches and singles interleaved. A group's date is its
// latest item date.
func GroupExpenseBatches(expenses []models.Expense) []ExpenseGroup {
	index := make(map[string]int)
	groups := make([]ExpenseGroup, 0, len(expenses))
	for _, e := range expenses {
		if e.BatchID == nil || *e.BatchID == "" {
			groups = append(groups, ExpenseGroup{
				Date:      e.Date,
				Total:     e.Amount,
				ItemCount: 1,
				Items:     []models.Expense{e},
			})
			continue
		}
		i, ok := index[*e.BatchID]
		if !ok {
			i = len(groups)
			index[*e.BatchID] = i
			id := *e.BatchID
			groups = append(groups, ExpenseGroup{BatchID: &id, BatchName: e.BatchName, Date: e.Date})
		}
		g := &groups[i]
		g.Total += e.Amount
		g.ItemCount++
		g.Items = append(g.Items, e)
		if e.Date.After(g.Date) {
			g.Date = e.Date
		}
		if g.BatchName == nil && e.BatchName != nil {
			g.BatchName = e.BatchName
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Date.After(groups[j].Date)
	})
	return groups
}
