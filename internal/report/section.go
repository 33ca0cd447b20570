package report

import "github.com/chmouel/p4status/internal/models"

// SectionWithLimit keeps the first limit items and records the full count.
// A negative limit behaves as zero.
func SectionWithLimit[T any](items []T, limit int) models.Section[T] {
	if limit < 0 {
		limit = 0
	}
	visible := items
	if len(visible) > limit {
		visible = visible[:limit]
	}
	return models.Section[T]{
		Total:   len(items),
		Items:   append(make([]T, 0, len(visible)), visible...),
		HasMore: len(items) > limit,
	}
}

// CappedSection wraps results of a query the server already capped at limit.
//
// The true total is unknown, so Total is the number of results returned and
// HasMore only says the cap was reached: a pathspec with exactly limit
// matching changes reports HasMore as well.
func CappedSection[T any](items []T, limit int) models.Section[T] {
	return models.Section[T]{
		Total:   len(items),
		Items:   append(make([]T, 0, len(items)), items...),
		HasMore: len(items) == limit,
	}
}
