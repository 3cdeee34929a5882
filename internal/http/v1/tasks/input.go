package tasks

import (
	"github.com/janisto/todo-backend/internal/platform/optional"
	"github.com/janisto/todo-backend/internal/platform/pagination"
	"github.com/janisto/todo-backend/internal/platform/timeutil"
)

// TaskListInput defines the filter, sort and pagination query of GET /tasks.
type TaskListInput struct {
	pagination.Params
	Search    string `query:"search"     doc:"Case-insensitive text in title or description" example:"milk"`
	Status    string `query:"status"     doc:"Completion filter"                             default:"all"        enum:"all,pending,completed"`
	Priority  string `query:"priority"   doc:"Priority filter"                               default:"all"        enum:"all,low,medium,high"`
	Tags      string `query:"tags"       doc:"Comma-separated tag IDs; matches any of them"`
	SortBy    string `query:"sort_by"    doc:"Sort field"                                    default:"created_at" enum:"created_at,priority,due_date"`
	SortOrder string `query:"sort_order" doc:"Sort direction"                                default:"desc"       enum:"asc,desc"`
}

// TaskGetInput for GET /tasks/{id}.
type TaskGetInput struct {
	ID string `path:"id" doc:"Task ID"`
}

// TaskCreateInput for POST /tasks.
type TaskCreateInput struct {
	Body struct {
		Title       string                        `json:"title"                 minLength:"1" maxLength:"200" required:"true" doc:"Task title"                       example:"Buy milk"`
		Description optional.Value[string]        `json:"description,omitempty"                                              doc:"Longer description"`
		Priority    *string                       `json:"priority,omitempty"    enum:"low,medium,high"                       doc:"Task priority, medium by default" example:"high"`
		DueDate     optional.Value[timeutil.Time] `json:"due_date,omitempty"                                                 doc:"Due date; required for recurring tasks"`
		Recurrence  optional.Value[string]        `json:"recurrence,omitempty"                                               doc:"daily, weekly or monthly"`
		ReminderAt  optional.Value[timeutil.Time] `json:"reminder_at,omitempty"                                              doc:"Reminder time"`
		TagIDs      []string                      `json:"tag_ids,omitempty"                                                  doc:"IDs of tags to attach"`
	}
}

// TaskUpdateInput for PUT /tasks/{id}. Only provided fields change; null
// clears description, due_date, recurrence and reminder_at, and an empty
// tag_ids removes every tag.
type TaskUpdateInput struct {
	ID   string `path:"id" doc:"Task ID"`
	Body struct {
		Title       *string                       `json:"title,omitempty"       minLength:"1" maxLength:"200" doc:"Task title"           example:"Buy milk"`
		Description optional.Value[string]        `json:"description,omitempty"                               doc:"Longer description"`
		Completed   *bool                         `json:"completed,omitempty"                                 doc:"Completion state"     example:"true"`
		Priority    *string                       `json:"priority,omitempty"    enum:"low,medium,high"        doc:"Task priority"        example:"high"`
		DueDate     optional.Value[timeutil.Time] `json:"due_date,omitempty"                                  doc:"Due date"`
		Recurrence  optional.Value[string]        `json:"recurrence,omitempty"                                doc:"daily, weekly or monthly"`
		ReminderAt  optional.Value[timeutil.Time] `json:"reminder_at,omitempty"                               doc:"Reminder time"`
		TagIDs      []string                      `json:"tag_ids,omitempty"                                   doc:"Replaces the attached tags"`
	}
}

// TaskDeleteInput for DELETE /tasks/{id}.
type TaskDeleteInput struct {
	ID string `path:"id" doc:"Task ID"`
}
