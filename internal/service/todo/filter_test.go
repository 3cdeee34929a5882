package todo

import (
	"strings"
	"testing"
	"time"
)

func at(day int) *time.Time {
	t := time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func sampleTasks() []Task {
	created := func(m int) time.Time { return time.Date(2024, 1, 1, 0, m, 0, 0, time.UTC) }
	return []Task{
		{ID: "a", Title: "Buy groceries", Description: ptr("milk and EGGS"), Priority: PriorityLow, DueDate: at(10), TagIDs: []string{"home"}, CreatedAt: created(1)},
		{ID: "b", Title: "Write report", Priority: PriorityHigh, Completed: true, TagIDs: []string{"work"}, CreatedAt: created(2)},
		{ID: "c", Title: "Call plumber", Priority: PriorityMedium, DueDate: at(5), TagIDs: []string{"home", "urgent"}, CreatedAt: created(3)},
		{ID: "d", Title: "Plan sprint", Priority: PriorityHigh, DueDate: at(5), TagIDs: []string{}, CreatedAt: created(4)},
	}
}

func ids(tasks []Task) string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return strings.Join(out, "")
}

func TestListFilterApply(t *testing.T) {
	tests := []struct {
		name   string
		filter ListFilter
		want   string
	}{
		{name: "defaults newest first", filter: ListFilter{}, want: "dcba"},
		{name: "created asc", filter: ListFilter{SortOrder: SortAsc}, want: "abcd"},
		{name: "pending", filter: ListFilter{Status: StatusPending}, want: "dca"},
		{name: "completed", filter: ListFilter{Status: StatusCompleted}, want: "b"},
		{name: "priority high", filter: ListFilter{Priority: PriorityHigh}, want: "db"},
		{name: "search title case-insensitive", filter: ListFilter{Search: "  PLAN "}, want: "d"},
		{name: "search description", filter: ListFilter{Search: "eggs"}, want: "a"},
		{name: "search no match", filter: ListFilter{Search: "zzz"}, want: ""},
		{name: "any tag", filter: ListFilter{TagIDs: []string{"work", "urgent"}}, want: "cb"},
		{name: "combined", filter: ListFilter{Status: StatusPending, TagIDs: []string{"home"}, SortOrder: SortAsc}, want: "ac"},
		{name: "priority desc ties by created desc", filter: ListFilter{SortBy: SortByPriority}, want: "dbca"},
		{name: "priority asc", filter: ListFilter{SortBy: SortByPriority, SortOrder: SortAsc}, want: "acbd"},
		{name: "due asc, missing last", filter: ListFilter{SortBy: SortByDueDate, SortOrder: SortAsc}, want: "cdab"},
		{name: "due desc, missing last", filter: ListFilter{SortBy: SortByDueDate}, want: "adcb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.filter.withDefaults()
			if err := f.validate(); err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
			if got := ids(f.Apply(sampleTasks())); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestListFilterStableOnEqualKeys(t *testing.T) {
	same := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: "z", Priority: PriorityLow, CreatedAt: same},
		{ID: "m", Priority: PriorityLow, CreatedAt: same},
		{ID: "a", Priority: PriorityLow, CreatedAt: same},
	}
	f := ListFilter{SortBy: SortByPriority}.withDefaults()
	if got := ids(f.Apply(tasks)); got != "amz" {
		t.Fatalf("expected ID tiebreak, got %q", got)
	}
}

func TestListFilterValidate(t *testing.T) {
	tests := []struct {
		filter ListFilter
		field  string
	}{
		{filter: ListFilter{Status: "done"}, field: "status"},
		{filter: ListFilter{Priority: "urgent"}, field: "priority"},
		{filter: ListFilter{SortBy: "title"}, field: "sort_by"},
		{filter: ListFilter{SortOrder: "up"}, field: "sort_order"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assertInvalid(t, tt.filter.withDefaults().validate(), tt.field)
		})
	}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	tasks := sampleTasks()
	_ = ListFilter{SortOrder: SortAsc}.withDefaults().Apply(tasks)
	if ids(tasks) != "abcd" {
		t.Fatalf("input reordered: %s", ids(tasks))
	}
}
