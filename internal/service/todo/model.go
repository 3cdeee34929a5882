package todo

import (
	"slices"
	"time"
)

// Priority ranks a task. The zero value is invalid; new tasks default to
// PriorityMedium.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// rank orders priorities low < medium < high.
func (p Priority) rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	}
	return -1
}

// Recurrence is the repeat interval of a task.
type Recurrence string

const (
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// Tag labels tasks. Names are unique per user, ignoring case.
type Tag struct {
	ID        string
	Name      string
	Color     *string
	UserID    string
	CreatedAt time.Time
}

// Task is a todo item. TagIDs is what stores persist; Tags is resolved by
// the service for responses and follows the order of TagIDs.
type Task struct {
	ID          string
	Title       string
	Description *string
	Completed   bool
	Priority    Priority
	DueDate     *time.Time
	Recurrence  *Recurrence
	ReminderAt  *time.Time
	TagIDs      []string
	Tags        []Tag
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a deep copy so callers never share pointers with a store.
func (t Task) Clone() Task {
	t.Description = clonePtr(t.Description)
	t.DueDate = clonePtr(t.DueDate)
	t.Recurrence = clonePtr(t.Recurrence)
	t.ReminderAt = clonePtr(t.ReminderAt)
	t.TagIDs = slices.Clone(t.TagIDs)
	t.Tags = slices.Clone(t.Tags)
	return t
}

func (t Tag) Clone() Tag {
	t.Color = clonePtr(t.Color)
	return t
}

// HasTag reports whether the task carries tagID.
func (t Task) HasTag(tagID string) bool {
	return slices.Contains(t.TagIDs, tagID)
}

// Optional is a field of a partial update that can be left alone, set to a
// value, or cleared. Set is false when the field was absent; Set with a nil
// Value means an explicit null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns an Optional that clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o Optional[T]) apply(dst **T) {
	if o.Set {
		*dst = clonePtr(o.Value)
	}
}

// CreateTagParams for creating a tag.
type CreateTagParams struct {
	Name  string
	Color *string
}

// UpdateTagParams for a partial tag update.
type UpdateTagParams struct {
	Name  *string
	Color Optional[string]
}

func (p UpdateTagParams) empty() bool {
	return p.Name == nil && !p.Color.Set
}

// CreateTaskParams for creating a task. A zero Priority means medium.
type CreateTaskParams struct {
	Title       string
	Description *string
	Priority    Priority
	DueDate     *time.Time
	Recurrence  *Recurrence
	ReminderAt  *time.Time
	TagIDs      []string
}

// UpdateTaskParams for a partial task update. A nil TagIDs leaves the tags
// unchanged; an empty non-nil slice removes all of them.
type UpdateTaskParams struct {
	Title       *string
	Description Optional[string]
	Completed   *bool
	Priority    *Priority
	DueDate     Optional[time.Time]
	Recurrence  Optional[Recurrence]
	ReminderAt  Optional[time.Time]
	TagIDs      []string
}

func (p UpdateTaskParams) empty() bool {
	return p.Title == nil && !p.Description.Set && p.Completed == nil && p.Priority == nil &&
		!p.DueDate.Set && !p.Recurrence.Set && !p.ReminderAt.Set && p.TagIDs == nil
}

// TaskList is a filtered, sorted view of one user's tasks.
type TaskList struct {
	Tasks    []Task
	Total    int // all tasks of the user
	Filtered int // tasks matching the filter
}

// TaskUpdate is the result of UpdateTask. NextOccurrence is set when
// completing a recurring task spawned its successor.
type TaskUpdate struct {
	Task           *Task
	NextOccurrence *Task
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
