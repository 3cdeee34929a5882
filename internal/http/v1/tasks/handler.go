package tasks

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/todo-backend/internal/platform/middleware"
	"github.com/janisto/todo-backend/internal/platform/optional"
	"github.com/janisto/todo-backend/internal/platform/pagination"
	"github.com/janisto/todo-backend/internal/platform/timeutil"
	"github.com/janisto/todo-backend/internal/service/todo"
)

const cursorType = "task"

// Register wires task routes into api. prefix is the path the API is mounted
// under and is used for Location and Link headers.
func Register(api huma.API, svc todo.Service, prefix string) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
		Description: "Returns the user's tasks filtered and sorted as requested. Use the cursor from the Link header to page.",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *TaskListInput) (*TaskListOutput, error) {
		cursor, err := pagination.DecodeCursor(input.Cursor, cursorType)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid cursor format")
		}

		list, err := svc.ListTasks(ctx, middleware.OwnerFromContext(ctx), listFilter(input))
		if err != nil {
			return nil, mapServiceError(err, "query")
		}

		page, err := pagination.Paginate(
			list.Tasks,
			cursor,
			input.EffectiveLimit(),
			cursorType,
			func(t todo.Task) string { return t.ID },
			prefix+"/tasks",
			listQuery(input),
		)
		if err != nil {
			return nil, huma.Error400BadRequest("cursor references unknown task")
		}

		out := make([]Task, 0, len(page.Items))
		for _, t := range page.Items {
			out = append(out, FromService(t))
		}
		return &TaskListOutput{
			Link: page.LinkHeader,
			Body: TaskListData{Tasks: out, Total: list.Total, Filtered: list.Filtered},
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get task",
		Description: "Returns a single task with its tags.",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *TaskGetInput) (*TaskGetOutput, error) {
		task, err := svc.GetTask(ctx, middleware.OwnerFromContext(ctx), input.ID)
		if err != nil {
			return nil, mapServiceError(err, "body")
		}
		return &TaskGetOutput{Body: TaskData{Task: FromService(*task)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		Description:   "Creates a pending task. Recurring tasks need a due date.",
		Tags:          []string{"Tasks"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *TaskCreateInput) (*TaskCreateOutput, error) {
		b := input.Body
		params := todo.CreateTaskParams{
			Title:       b.Title,
			Description: b.Description.Ptr(),
			DueDate:     timePtr(b.DueDate),
			Recurrence:  recurrencePtr(b.Recurrence),
			ReminderAt:  timePtr(b.ReminderAt),
			TagIDs:      b.TagIDs,
		}
		if b.Priority != nil {
			params.Priority = todo.Priority(*b.Priority)
		}
		task, err := svc.CreateTask(ctx, middleware.OwnerFromContext(ctx), params)
		if err != nil {
			return nil, mapServiceError(err, "body")
		}
		return &TaskCreateOutput{
			Location: prefix + "/tasks/" + task.ID,
			Body:     TaskData{Task: FromService(*task)},
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Update task",
		Description: "Updates the provided fields. Completing a recurring task creates its next occurrence.",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *TaskUpdateInput) (*TaskUpdateOutput, error) {
		b := input.Body
		params := todo.UpdateTaskParams{
			Title:       b.Title,
			Description: optionalOf(b.Description),
			Completed:   b.Completed,
			DueDate:     optionalTime(b.DueDate),
			ReminderAt:  optionalTime(b.ReminderAt),
			TagIDs:      b.TagIDs,
		}
		if b.Priority != nil {
			p := todo.Priority(*b.Priority)
			params.Priority = &p
		}
		if b.Recurrence.Sent {
			params.Recurrence = todo.Optional[todo.Recurrence]{Set: true, Value: recurrencePtr(b.Recurrence)}
		}
		res, err := svc.UpdateTask(ctx, middleware.OwnerFromContext(ctx), input.ID, params)
		if err != nil {
			return nil, mapServiceError(err, "body")
		}
		return &TaskUpdateOutput{Body: TaskUpdateData{
			Task:           FromService(*res.Task),
			NextOccurrence: fromServicePtr(res.NextOccurrence),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-task",
		Method:        http.MethodDelete,
		Path:          "/tasks/{id}",
		Summary:       "Delete task",
		Tags:          []string{"Tasks"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *TaskDeleteInput) (*struct{}, error) {
		if err := svc.DeleteTask(ctx, middleware.OwnerFromContext(ctx), input.ID); err != nil {
			return nil, mapServiceError(err, "body")
		}
		return nil, nil
	})
}

func listFilter(input *TaskListInput) todo.ListFilter {
	f := todo.ListFilter{
		Search:    input.Search,
		Status:    todo.StatusFilter(input.Status),
		TagIDs:    splitIDs(input.Tags),
		SortBy:    todo.SortField(input.SortBy),
		SortOrder: todo.SortOrder(input.SortOrder),
	}
	if input.Priority != "all" {
		f.Priority = todo.Priority(input.Priority)
	}
	return f
}

// listQuery keeps the filter parameters that differ from their defaults so
// Link URLs reproduce the same result set.
func listQuery(input *TaskListInput) url.Values {
	q := url.Values{}
	set := func(key, value, def string) {
		if value != "" && value != def {
			q.Set(key, value)
		}
	}
	set("search", input.Search, "")
	set("status", input.Status, "all")
	set("priority", input.Priority, "all")
	set("tags", strings.Join(splitIDs(input.Tags), ","), "")
	set("sort_by", input.SortBy, "created_at")
	set("sort_order", input.SortOrder, "desc")
	return q
}

func splitIDs(s string) []string {
	var ids []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

func timePtr(v optional.Value[timeutil.Time]) *time.Time {
	if p := v.Ptr(); p != nil {
		return &p.Time
	}
	return nil
}

func optionalTime(v optional.Value[timeutil.Time]) todo.Optional[time.Time] {
	if !v.Sent {
		return todo.Optional[time.Time]{}
	}
	return todo.Optional[time.Time]{Set: true, Value: timePtr(v)}
}

func optionalOf[T any](v optional.Value[T]) todo.Optional[T] {
	return todo.Optional[T]{Set: v.Sent, Value: v.Ptr()}
}

func recurrencePtr(v optional.Value[string]) *todo.Recurrence {
	p := v.Ptr()
	if p == nil {
		return nil
	}
	r := todo.Recurrence(*p)
	return &r
}

func mapServiceError(err error, in string) error {
	var verr *todo.ValidationError
	switch {
	case errors.As(err, &verr):
		return validationProblem(verr, in)
	case errors.Is(err, todo.ErrNotFound):
		return huma.Error404NotFound("task not found")
	default:
		return huma.Error500InternalServerError("internal error")
	}
}

// validationProblem renders a service validation error as a 422 pointing at
// the offending field under in ("body" or "query").
func validationProblem(verr *todo.ValidationError, in string) error {
	location := in
	if verr.Field != "" && verr.Field != in {
		location += "." + verr.Field
	}
	return huma.Error422UnprocessableEntity("validation failed", &huma.ErrorDetail{
		Location: location,
		Message:  verr.Message,
		Value:    verr.Value,
	})
}
