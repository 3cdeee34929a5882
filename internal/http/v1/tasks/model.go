package tasks

import (
	"github.com/janisto/todo-backend/internal/http/v1/tags"
	"github.com/janisto/todo-backend/internal/platform/timeutil"
	"github.com/janisto/todo-backend/internal/service/todo"
)

// Task is the wire form of a task.
type Task struct {
	ID          string         `json:"id"          doc:"Unique identifier"                 example:"9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d"`
	Title       string         `json:"title"       doc:"Task title"                        example:"Buy milk"`
	Description *string        `json:"description" doc:"Optional longer description"       example:"Two liters, lactose free"`
	Completed   bool           `json:"completed"   doc:"Whether the task is done"          example:"false"`
	Priority    string         `json:"priority"    doc:"Task priority"                     example:"medium" enum:"low,medium,high"`
	DueDate     *timeutil.Time `json:"due_date"    doc:"Due date or null"                  example:"2024-01-20T09:00:00.000Z"`
	Recurrence  *string        `json:"recurrence"  doc:"Repeat interval or null"           example:"weekly" enum:"daily,weekly,monthly"`
	ReminderAt  *timeutil.Time `json:"reminder_at" doc:"Reminder time or null"             example:"2024-01-20T08:00:00.000Z"`
	Tags        []tags.Tag     `json:"tags"        doc:"Tags attached to the task"`
	UserID      string         `json:"user_id"     doc:"Owner of the task"                 example:"user-123"`
	CreatedAt   timeutil.Time  `json:"created_at"  doc:"Creation timestamp"                example:"2024-01-15T10:30:00.000Z"`
	UpdatedAt   timeutil.Time  `json:"updated_at"  doc:"Last update timestamp"             example:"2024-01-15T10:30:00.000Z"`
}

// FromService converts a service task to its wire form.
func FromService(t todo.Task) Task {
	out := Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		DueDate:     timeutil.Ptr(t.DueDate),
		ReminderAt:  timeutil.Ptr(t.ReminderAt),
		Tags:        tags.FromServiceList(t.Tags),
		UserID:      t.UserID,
		CreatedAt:   timeutil.Time{Time: t.CreatedAt},
		UpdatedAt:   timeutil.Time{Time: t.UpdatedAt},
	}
	if t.Recurrence != nil {
		r := string(*t.Recurrence)
		out.Recurrence = &r
	}
	return out
}

func fromServicePtr(t *todo.Task) *Task {
	if t == nil {
		return nil
	}
	out := FromService(*t)
	return &out
}
