package tasks

// TaskListData is the task list response body.
type TaskListData struct {
	Tasks    []Task `json:"tasks"    doc:"Tasks on this page"`
	Total    int    `json:"total"    doc:"Number of tasks the user has"             example:"42"`
	Filtered int    `json:"filtered" doc:"Number of tasks matching the filter"      example:"7"`
}

// TaskListOutput carries the RFC 8288 Link header for pagination.
type TaskListOutput struct {
	Link string `header:"Link" doc:"RFC 8288 pagination links"`
	Body TaskListData
}

// TaskData wraps a single task.
type TaskData struct {
	Task Task `json:"task"`
}

// TaskGetOutput for GET /tasks/{id}.
type TaskGetOutput struct {
	Body TaskData
}

// TaskCreateOutput for POST /tasks (201 Created).
type TaskCreateOutput struct {
	Location string `header:"Location" doc:"URL of the created task"`
	Body     TaskData
}

// TaskUpdateData is returned by PUT /tasks/{id}. NextOccurrence is present
// when completing a recurring task created its successor.
type TaskUpdateData struct {
	Task           Task  `json:"task"`
	NextOccurrence *Task `json:"next_occurrence,omitempty"`
}

// TaskUpdateOutput for PUT /tasks/{id}.
type TaskUpdateOutput struct {
	Body TaskUpdateData
}
