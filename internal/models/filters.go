package models

import (
	"net/url"

	"gorm.io/gorm"
)

// OrderFilter narrows an order list from request query parameters.
// Only the status predicate exists today; unknown values are treated
// as "no filter" so the page stays total over arbitrary input.
type OrderFilter struct {
	Status string
}

func FilterFromQuery(values url.Values) OrderFilter {
	f := OrderFilter{Status: values.Get("status")}
	if !ValidOrderStatus(f.Status) {
		f.Status = ""
	}
	return f
}

// Apply adds the filter's predicates to q.
func (f OrderFilter) Apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

// Selected reports the active status choice for the template.
func (f OrderFilter) Selected(status string) bool {
	return f.Status == status
}
