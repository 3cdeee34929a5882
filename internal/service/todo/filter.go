package todo

import (
	"cmp"
	"slices"
	"strings"
)

// StatusFilter selects tasks by completion.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusPending   StatusFilter = "pending"
	StatusCompleted StatusFilter = "completed"
)

// SortField names the primary sort key of a task list.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByPriority  SortField = "priority"
	SortByDueDate   SortField = "due_date"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListFilter selects and orders a user's tasks. Zero values mean: no search,
// any status, any priority, any tags, newest first.
type ListFilter struct {
	Search    string
	Status    StatusFilter
	Priority  Priority // empty matches every priority
	TagIDs    []string // a task matches when it has any of them
	SortBy    SortField
	SortOrder SortOrder
}

func (f ListFilter) withDefaults() ListFilter {
	if f.Status == "" {
		f.Status = StatusAll
	}
	if f.SortBy == "" {
		f.SortBy = SortByCreatedAt
	}
	if f.SortOrder == "" {
		f.SortOrder = SortDesc
	}
	f.Search = strings.ToLower(strings.TrimSpace(f.Search))
	f.TagIDs = dedupeIDs(f.TagIDs)
	return f
}

func (f ListFilter) validate() error {
	switch f.Status {
	case StatusAll, StatusPending, StatusCompleted:
	default:
		return invalid("status", "must be one of all, pending, completed", string(f.Status))
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return invalid("priority", "must be one of all, low, medium, high", string(f.Priority))
	}
	switch f.SortBy {
	case SortByCreatedAt, SortByPriority, SortByDueDate:
	default:
		return invalid("sort_by", "must be one of created_at, priority, due_date", string(f.SortBy))
	}
	switch f.SortOrder {
	case SortAsc, SortDesc:
	default:
		return invalid("sort_order", "must be asc or desc", string(f.SortOrder))
	}
	return nil
}

// Match reports whether t passes the filter. f must have defaults applied.
func (f ListFilter) Match(t Task) bool {
	switch f.Status {
	case StatusPending:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Search != "" {
		inTitle := strings.Contains(strings.ToLower(t.Title), f.Search)
		inDesc := t.Description != nil && strings.Contains(strings.ToLower(*t.Description), f.Search)
		if !inTitle && !inDesc {
			return false
		}
	}
	if len(f.TagIDs) > 0 && !slices.ContainsFunc(f.TagIDs, t.HasTag) {
		return false
	}
	return true
}

// Apply returns the matching tasks in filter order. The input is not modified.
func (f ListFilter) Apply(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, f.compare)
	return out
}

// compare orders by the sort field in the requested direction, then by
// created_at in the same direction, then by ID ascending. Tasks without a due
// date sort last in both directions.
func (f ListFilter) compare(a, b Task) int {
	dir := 1
	if f.SortOrder == SortDesc {
		dir = -1
	}

	var c int
	switch f.SortBy {
	case SortByPriority:
		c = dir * cmp.Compare(a.Priority.rank(), b.Priority.rank())
	case SortByDueDate:
		switch {
		case a.DueDate == nil && b.DueDate == nil:
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		default:
			c = dir * a.DueDate.Compare(*b.DueDate)
		}
	}
	if c != 0 {
		return c
	}
	if c = dir * a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
